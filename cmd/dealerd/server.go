package main

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/dealerd/cmd/dealerd/shared"
	"github.com/lox/dealerd/internal/server"
	"github.com/lox/dealerd/internal/server/history"
)

// ServerCmd runs the dealer server
type ServerCmd struct {
	Config   string `short:"c" default:"dealerd.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)
	clock := quartz.NewReal()

	store, err := history.Open(cfg.Server.HistoryPath, clock, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close history store", "error", err)
		}
	}()

	wsServer := server.NewServer(addr, logger)
	service := server.NewService(logger, clock, wsServer, store)
	wsServer.SetService(service)

	for _, tableCfg := range cfg.Tables {
		service.CreateTable(tableCfg)
	}

	logger.Info("Starting dealer server",
		"addr", addr,
		"tables", len(cfg.Tables),
		"history", cfg.Server.HistoryPath)

	ctx := shared.SetupSignalHandler(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsServer.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return wsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
