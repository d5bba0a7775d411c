package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the dealer server"`
	History HistoryCmd       `cmd:"" help:"Inspect recorded hand history"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("dealerd"),
		kong.Description("Texas hold'em dealer: hand progression, betting and pots over WebSockets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
