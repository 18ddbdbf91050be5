// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink appends event records to a local SQLite database so a run can
// be replayed or inspected after the fact. Insert failures are counted but
// never surfaced to callers.
type SQLiteSink struct {
	mu      sync.Mutex
	db      *sql.DB
	insert  *sql.Stmt
	dropped int
}

// NewSQLiteSink opens or creates the event database at dbPath, creating
// parent directories and the schema as needed.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening event database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		data TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating event schema: %w", err)
	}

	insert, err := db.Prepare(
		"INSERT INTO events (created_at, type, message, data) VALUES (?, ?, ?, ?)")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing event insert: %w", err)
	}

	return &SQLiteSink{db: db, insert: insert}, nil
}

// Emit stores the record. Data is JSON-encoded; records whose data cannot
// be encoded are stored without it.
func (s *SQLiteSink) Emit(rec Record) {
	var data sql.NullString
	if rec.Data != nil {
		if encoded, err := json.Marshal(rec.Data); err == nil {
			data = sql.NullString{String: string(encoded), Valid: true}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.insert.Exec(rec.Time.Format(time.RFC3339Nano), string(rec.Type), rec.Message, data); err != nil {
		s.dropped++
	}
}

// Dropped reports how many records failed to insert.
func (s *SQLiteSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close finalizes the prepared statement and closes the database.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insert.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
