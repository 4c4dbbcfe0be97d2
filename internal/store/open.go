package store

import (
	"context"
	"fmt"

	"bigboss/internal/game"
)

// Options picks a backend. Kind is one of file, sqlite, postgres or memory.
type Options struct {
	Kind        string
	FilePath    string
	SQLitePath  string
	DatabaseURL string
	Slot        string
}

// Open builds the configured backend. The returned close func is never nil.
func Open(ctx context.Context, opts Options) (game.SaveStore, func(), error) {
	noop := func() {}
	slot := opts.Slot
	if slot == "" {
		slot = DefaultSlot
	}
	switch opts.Kind {
	case "", "file":
		f, err := NewFile(opts.FilePath)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case "memory":
		return NewMemory(), noop, nil
	case "sqlite":
		s, err := OpenSQLite(opts.SQLitePath, slot)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		pool, err := Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		p, err := NewPostgres(ctx, pool, slot)
		if err != nil {
			pool.Close()
			return nil, noop, err
		}
		return p, pool.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store kind %q", opts.Kind)
}
