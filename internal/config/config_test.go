package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreFile || cfg.SaveSlot != "default" || cfg.StudioName != "Nordic Pictures" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !strings.HasSuffix(cfg.SavePath, ".boss/save.json") || !strings.HasSuffix(cfg.SQLitePath, ".boss/boss.db") {
		t.Fatalf("paths=%q %q", cfg.SavePath, cfg.SQLitePath)
	}
	if cfg.Addr != ":8080" || cfg.SimTurns != 60 || cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("addr=%q turns=%d", cfg.Addr, cfg.SimTurns)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOSS_STORE", "SQLite")
	t.Setenv("BOSS_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("PORT", "9090")
	t.Setenv("BOSS_SEED", "42")
	t.Setenv("BOSS_LOG_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.SQLitePath != "/tmp/x.db" || cfg.Addr != ":9090" || cfg.Seed != 42 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("level=%v", cfg.SlogLevel())
	}
	a, b := cfg.Rand(), cfg.Rand()
	if a.Int63() != b.Int63() {
		t.Fatalf("seeded rand should repeat")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "postgres without url", env: map[string]string{"BOSS_STORE": "postgres"}, want: "DATABASE_URL"},
		{name: "unknown store", env: map[string]string{"BOSS_STORE": "floppy"}, want: "BOSS_STORE"},
		{name: "bad level", env: map[string]string{"BOSS_LOG_LEVEL": "loud"}, want: "BOSS_LOG_LEVEL"},
		{name: "bad turns", env: map[string]string{"BOSS_SIM_TURNS": "0"}, want: "BOSS_SIM_TURNS"},
		{name: "bad seed", env: map[string]string{"BOSS_SEED": "x"}, want: "Seed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v want error mentioning %s", err, tc.want)
			}
		})
	}
}

func TestCatalogDefault(t *testing.T) {
	cat, err := Config{}.Catalog()
	if err != nil || len(cat.Genres) == 0 {
		t.Fatalf("default catalog: %v", err)
	}
	if _, err := (Config{CatalogPath: "/does/not/exist.yaml"}).Catalog(); err == nil {
		t.Fatalf("missing catalog should fail")
	}
}
