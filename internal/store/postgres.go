package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bigboss/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE SCHEMA IF NOT EXISTS boss;
CREATE TABLE IF NOT EXISTS boss.saves (
	slot       TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Connect opens a pgx pool and checks it answers.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Postgres keeps save documents in boss.saves, one row per slot.
type Postgres struct {
	db   *pgxpool.Pool
	slot string
}

func NewPostgres(ctx context.Context, db *pgxpool.Pool, slot string) (*Postgres, error) {
	if slot == "" {
		slot = DefaultSlot
	}
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &Postgres{db: db, slot: slot}, nil
}

func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var doc []byte
	err := p.db.QueryRow(ctx, `SELECT doc::text FROM boss.saves WHERE slot = $1`, p.slot).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("load save: %w", err)
	}
	return doc, nil
}

func (p *Postgres) Save(ctx context.Context, doc []byte) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO boss.saves (slot, doc, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (slot) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`, p.slot, string(doc))
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM boss.saves WHERE slot = $1`, p.slot); err != nil {
		return fmt.Errorf("clear save: %w", err)
	}
	return nil
}
