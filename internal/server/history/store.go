// Package history persists completed hands to SQLite. The log is
// append-only: hands are inserted once when they finish and never
// updated or deleted.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Pending records are written out when the buffer reaches this size
	// or on the next flush tick, whichever comes first.
	flushThreshold = 16
	flushInterval  = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS hands (
	hand_id TEXT PRIMARY KEY,
	table_id TEXT NOT NULL,
	hand_number INTEGER NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at TIMESTAMP NOT NULL,
	events TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hands_table ON hands(table_id, hand_number);
`

// Record is one completed hand: identity, timing and the full ordered
// event log as JSON.
type Record struct {
	HandID     string          `json:"handId"`
	TableID    string          `json:"tableId"`
	HandNumber int             `json:"handNumber"`
	StartedAt  time.Time       `json:"startedAt"`
	EndedAt    time.Time       `json:"endedAt"`
	Events     json.RawMessage `json:"events"`
}

// Store is a buffered, append-only hand log backed by SQLite
type Store struct {
	db     *sql.DB
	logger *log.Logger

	mu      sync.Mutex
	pending []Record

	cancel context.CancelFunc
	waiter quartz.Waiter
}

// Open opens (or creates) the store at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string, clock quartz.Clock, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:     db,
		logger: logger.WithPrefix("history"),
		cancel: cancel,
	}
	s.waiter = clock.TickerFunc(ctx, flushInterval, func() error {
		if err := s.Flush(); err != nil {
			s.logger.Error("Failed to flush hand history", "error", err)
		}
		return nil
	}, "history-flush")

	return s, nil
}

// Append queues a completed hand for persistence
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	s.pending = append(s.pending, rec)
	full := len(s.pending) >= flushThreshold
	s.mu.Unlock()

	if full {
		return s.Flush()
	}
	return nil
}

// Flush writes all pending records in a single transaction
func (s *Store) Flush() error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO hands (hand_id, table_id, hand_number, started_at, ended_at, events)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range batch {
		if _, err := stmt.Exec(rec.HandID, rec.TableID, rec.HandNumber,
			rec.StartedAt, rec.EndedAt, string(rec.Events)); err != nil {
			return fmt.Errorf("inserting hand %s: %w", rec.HandID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history batch: %w", err)
	}

	s.logger.Debug("Flushed hand history", "count", len(batch))
	return nil
}

// List returns the most recent hands for a table, newest first
func (s *Store) List(tableID string, limit int) ([]Record, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT hand_id, table_id, hand_number, started_at, ended_at, events
		FROM hands WHERE table_id = ?
		ORDER BY hand_number DESC LIMIT ?`, tableID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying hand history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		var events string
		if err := rows.Scan(&rec.HandID, &rec.TableID, &rec.HandNumber,
			&rec.StartedAt, &rec.EndedAt, &events); err != nil {
			return nil, fmt.Errorf("scanning hand record: %w", err)
		}
		rec.Events = json.RawMessage(events)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns a single hand by ID
func (s *Store) Get(handID string) (*Record, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	var rec Record
	var events string
	err := s.db.QueryRow(`
		SELECT hand_id, table_id, hand_number, started_at, ended_at, events
		FROM hands WHERE hand_id = ?`, handID).
		Scan(&rec.HandID, &rec.TableID, &rec.HandNumber, &rec.StartedAt, &rec.EndedAt, &events)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("hand %s not found", handID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying hand %s: %w", handID, err)
	}
	rec.Events = json.RawMessage(events)
	return &rec, nil
}

// Close flushes pending records and closes the database
func (s *Store) Close() error {
	s.cancel()
	_ = s.waiter.Wait()

	if err := s.Flush(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}
