package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	mathrand "math/rand"
	"testing"

	"bigboss/internal/game"
	"bigboss/internal/store"
)

func newRunner(t *testing.T, mem *store.Memory, seed int64) (*Runner, *game.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(mem, nil, mathrand.New(mathrand.NewSource(seed)), logger)
	if _, err := svc.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	return New(svc, logger), svc
}

func TestRunPlaysAndReleases(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		mem := store.NewMemory()
		r, svc := newRunner(t, mem, seed)
		sum, err := r.Run(context.Background(), 30)
		if err != nil {
			t.Fatalf("seed %d: run: %v", seed, err)
		}
		if sum.Turns != 30 || sum.FinalTurn != 31 {
			t.Fatalf("seed %d: turns=%d final=%d", seed, sum.Turns, sum.FinalTurn)
		}
		if sum.Launched == 0 || sum.Released == 0 {
			t.Fatalf("seed %d: launched=%d released=%d", seed, sum.Launched, sum.Released)
		}
		st := svc.State()
		if len(st.ReleaseHistory) != sum.Released {
			t.Fatalf("seed %d: history=%d released=%d", seed, len(st.ReleaseHistory), sum.Released)
		}
		if _, ok := svc.Draft(); ok {
			t.Fatalf("seed %d: runner left a draft open", seed)
		}
		if _, err := mem.Load(context.Background()); err != nil {
			t.Fatalf("seed %d: nothing saved: %v", seed, err)
		}
	}
}

func TestRunStopsAtGameOver(t *testing.T) {
	mem := store.NewMemory()
	if err := mem.Save(context.Background(), []byte(`{"studioName":"Broke","cash":-20000000,"gameOver":true,"turnNumber":9}`)); err != nil {
		t.Fatalf("seed save: %v", err)
	}
	r, _ := newRunner(t, mem, 1)
	sum, err := r.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Turns != 0 || !sum.GameOver || sum.FinalTurn != 9 {
		t.Fatalf("summary=%+v", sum)
	}
}

func TestRunHonorsContext(t *testing.T) {
	r, _ := newRunner(t, store.NewMemory(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := r.Run(ctx, 5)
	if !errors.Is(err, context.Canceled) || sum.Turns != 0 {
		t.Fatalf("got %+v, %v", sum, err)
	}
}

func TestBestScript(t *testing.T) {
	scripts := []game.Script{
		{ID: "a", QualityBonus: 10, Cost: 2_000_000},
		{ID: "b", QualityBonus: 20, Cost: 9_000_000},
		{ID: "c", QualityBonus: 10, Cost: 1_000_000},
	}
	tests := []struct {
		cash  int64
		want  string
		found bool
	}{
		{cash: 10_000_000, want: "b", found: true},
		{cash: 5_000_000, want: "c", found: true},
		{cash: 500_000, found: false},
	}
	for _, tc := range tests {
		got, ok := bestScript(scripts, tc.cash)
		if ok != tc.found || (ok && got.ID != tc.want) {
			t.Fatalf("cash %d: got %q,%v want %q,%v", tc.cash, got.ID, ok, tc.want, tc.found)
		}
	}
}
