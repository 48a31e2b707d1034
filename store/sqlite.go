package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite keeps one JSON document per (collection, id) row.
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
)`

func OpenSQLite(path string) (*SQLite, error) {

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)

	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, collection Collection, id string) (Record, error) {

	var raw string

	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM entities WHERE collection = ? AND id = ?`,
		string(collection), id,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", collection, id, err)
	}

	var record Record

	err = json.Unmarshal([]byte(raw), &record)

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", collection, id, err)
	}

	return record, nil
}

func (s *SQLite) Save(ctx context.Context, collection Collection, record Record) error {

	id := record.ID()

	if id == "" {
		return fmt.Errorf("cannot save to %s without an id", collection)
	}

	raw, err := json.Marshal(record)

	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", collection, id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(collection), id, string(raw), time.Now().UTC().UnixMilli(),
	)

	if err != nil {
		return fmt.Errorf("save %s %s: %w", collection, id, err)
	}

	return nil
}
