package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bigboss/internal/game"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS saves (
	slot       TEXT PRIMARY KEY,
	doc        BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite keeps save documents in a local database, one row per slot.
type SQLite struct {
	db   *sql.DB
	slot string
}

func OpenSQLite(path, slot string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if slot == "" {
		slot = DefaultSlot
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o700); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", clean+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &SQLite{db: db, slot: slot}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM saves WHERE slot = ?`, s.slot).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("load save: %w", err)
	}
	return doc, nil
}

func (s *SQLite) Save(ctx context.Context, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (slot, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`, s.slot, doc, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, s.slot); err != nil {
		return fmt.Errorf("clear save: %w", err)
	}
	return nil
}
