// Package app wires configuration into a ready game service.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"bigboss/internal/config"
	"bigboss/internal/game"
	"bigboss/internal/store"
)

// Open builds the configured store and catalog, then loads the save. The
// close func releases the store and is safe to call on error.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*game.Service, func(), error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, func() {}, err
	}
	st, closeFn, err := store.Open(ctx, store.Options{
		Kind:        cfg.Store,
		FilePath:    cfg.SavePath,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		Slot:        cfg.SaveSlot,
	})
	if err != nil {
		return nil, closeFn, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	svc := game.NewService(st, cat, cfg.Rand(), logger)
	if _, err := svc.Open(ctx); err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return svc, closeFn, nil
}

// Logger returns a slog logger at the configured level. json selects the
// JSON handler used by the server and simulator.
func Logger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
