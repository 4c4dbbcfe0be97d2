package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bigboss/internal/app"
	"bigboss/internal/config"
	"bigboss/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	// The simulator plays in memory unless a store was asked for explicitly.
	if strings.TrimSpace(os.Getenv("BOSS_STORE")) == "" {
		cfg.Store = config.StoreMemory
	}

	logger := app.Logger(os.Stdout, cfg.SlogLevel(), true)
	svc, closeStore, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open game failed", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	if _, err := svc.NewGame(ctx, cfg.StudioName); err != nil {
		logger.Error("new game failed", "err", err)
		os.Exit(1)
	}

	logger.Info("simulation started", "turns", cfg.SimTurns, "seed", cfg.Seed, "store", cfg.Store)
	sum, err := sim.New(svc, logger).Run(ctx, cfg.SimTurns)
	if err != nil {
		logger.Error("simulation stopped", "err", err, "turns", sum.Turns)
		os.Exit(1)
	}
	logger.Info("simulation complete",
		"turns", sum.Turns,
		"launched", sum.Launched,
		"released", sum.Released,
		"cash", sum.Cash,
		"total_profit", sum.TotalProfit,
		"market_share", sum.MarketShare,
		"franchises", sum.Franchises,
		"game_over", sum.GameOver,
	)
}
