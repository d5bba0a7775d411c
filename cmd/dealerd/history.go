package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/dealerd/cmd/dealerd/shared"
	"github.com/lox/dealerd/internal/server/history"
)

// HistoryCmd inspects the hand history database
type HistoryCmd struct {
	Database string `short:"d" default:"dealerd.db" help:"Path to the hand history database"`
	Table    string `arg:"" optional:"" help:"Table to list hands for"`
	Limit    int    `default:"20" help:"Maximum hands to list"`
	HandID   string `help:"Print the full event log for one hand"`
}

func (c *HistoryCmd) Run() error {
	if c.HandID == "" && c.Table == "" {
		return fmt.Errorf("specify a table name or --hand-id")
	}
	if _, err := os.Stat(c.Database); err != nil {
		return fmt.Errorf("hand history database %s: %w", c.Database, err)
	}

	logger := shared.SetupLogger("warn")
	store, err := history.Open(c.Database, quartz.NewReal(), logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if c.HandID != "" {
		return c.printHand(store)
	}
	return c.listHands(store)
}

func (c *HistoryCmd) printHand(store *history.Store) error {
	rec, err := store.Get(c.HandID)
	if err != nil {
		return err
	}

	fmt.Printf("Hand %s (table %s, hand #%d)\n", rec.HandID, rec.TableID, rec.HandNumber)
	fmt.Printf("Started %s, ended %s\n\n",
		rec.StartedAt.Format("2006-01-02 15:04:05"),
		rec.EndedAt.Format("2006-01-02 15:04:05"))

	var pretty []json.RawMessage
	if err := json.Unmarshal(rec.Events, &pretty); err != nil {
		return fmt.Errorf("decoding event log: %w", err)
	}
	for _, ev := range pretty {
		out, err := json.MarshalIndent(ev, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}

func (c *HistoryCmd) listHands(store *history.Store) error {
	records, err := store.List(c.Table, c.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No hands recorded for table %s\n", c.Table)
		return nil
	}

	fmt.Printf("%-28s %6s %-20s %s\n", "HAND ID", "NUM", "STARTED", "DURATION")
	for _, rec := range records {
		fmt.Printf("%-28s %6d %-20s %s\n",
			rec.HandID,
			rec.HandNumber,
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.EndedAt.Sub(rec.StartedAt).Round(time.Millisecond))
	}
	return nil
}
