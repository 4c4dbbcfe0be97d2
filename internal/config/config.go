package config

import (
	"errors"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"bigboss/internal/game"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Store       string `env:"BOSS_STORE" envDefault:"file"`
	SavePath    string `env:"BOSS_SAVE_PATH"`
	SQLitePath  string `env:"BOSS_SQLITE_PATH"`
	DatabaseURL string `env:"DATABASE_URL"`
	SaveSlot    string `env:"BOSS_SAVE_SLOT" envDefault:"default"`
	StudioName  string `env:"BOSS_STUDIO_NAME" envDefault:"Nordic Pictures"`
	CatalogPath string `env:"BOSS_CATALOG"`
	Seed        int64  `env:"BOSS_SEED" envDefault:"0"`
	LogLevel    string `env:"BOSS_LOG_LEVEL" envDefault:"info"`
	Addr        string `env:"BOSS_API_ADDR" envDefault:":8080"`
	Port        string `env:"PORT"`
	SimTurns    int    `env:"BOSS_SIM_TURNS" envDefault:"60"`
}

// Load reads the environment and fills in path defaults under ~/.boss.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)

	if port := strings.TrimSpace(cfg.Port); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Addr = port
	}

	if cfg.SavePath == "" || cfg.SQLitePath == "" {
		dir, err := baseDir()
		if err != nil {
			return cfg, err
		}
		if cfg.SavePath == "" {
			cfg.SavePath = filepath.Join(dir, "save.json")
		}
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = filepath.Join(dir, "boss.db")
		}
	}
	return cfg, cfg.validate()
}

func baseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home dir: %w", err)
	}
	return filepath.Join(home, ".boss"), nil
}

func (c Config) validate() error {
	var errs []error
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("BOSS_STORE must be file, sqlite, postgres or memory, got %q", c.Store))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.SimTurns <= 0 {
		errs = append(errs, fmt.Errorf("BOSS_SIM_TURNS must be positive, got %d", c.SimTurns))
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown BOSS_LOG_LEVEL %q", s)
}

func (c Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

// Catalog returns the override catalog when BOSS_CATALOG is set, else the
// embedded one.
func (c Config) Catalog() (*game.Catalog, error) {
	if c.CatalogPath == "" {
		return game.DefaultCatalog(), nil
	}
	return game.LoadCatalogFile(c.CatalogPath)
}

// Rand is seeded from BOSS_SEED, or from the clock when it is 0.
func (c Config) Rand() *mathrand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return mathrand.New(mathrand.NewSource(seed))
}
