package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	mathrand "math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bigboss/internal/game"
	"bigboss/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(mem, nil, mathrand.New(mathrand.NewSource(7)), logger)
	if _, err := svc.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	return New(logger, svc), mem
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}
}

func TestStudioAndNewGame(t *testing.T) {
	srv, mem := newTestServer(t)

	st := decode[game.StudioState](t, do(t, srv, http.MethodGet, "/v1/studio", ""))
	if st.Cash != game.StarterCash || st.TurnNumber != 1 {
		t.Fatalf("fresh studio: cash=%d turn=%d", st.Cash, st.TurnNumber)
	}

	rec := do(t, srv, http.MethodPost, "/v1/game/new", `{"name":"Nordic Pictures"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("new game: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[game.StudioState](t, rec).StudioName; got != "Nordic Pictures" {
		t.Fatalf("studio name=%q", got)
	}
	if _, err := mem.Load(context.Background()); err != nil {
		t.Fatalf("new game should be saved: %v", err)
	}

	if rec := do(t, srv, http.MethodPost, "/v1/game/new", `{"bogus":1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/v1/game/new", ""); rec.Code != http.StatusCreated {
		t.Fatalf("empty body: %d %s", rec.Code, rec.Body.String())
	}
}

func TestDraftLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "no draft", method: http.MethodGet, path: "/v1/draft", want: http.StatusNotFound},
		{name: "no pool", method: http.MethodGet, path: "/v1/draft/pool", want: http.StatusNotFound},
		{name: "start", method: http.MethodPost, path: "/v1/draft", want: http.StatusCreated},
		{name: "start twice", method: http.MethodPost, path: "/v1/draft", body: `{}`, want: http.StatusConflict},
		{name: "title", method: http.MethodPost, path: "/v1/draft/title", body: `{"title":"  Night Run "}`, want: http.StatusOK},
		{name: "bad genre", method: http.MethodPost, path: "/v1/draft/genre", body: `{"genre":"opera"}`, want: http.StatusBadRequest},
		{name: "casting without genre", method: http.MethodPost, path: "/v1/draft/casting", want: http.StatusBadRequest},
		{name: "budget too early", method: http.MethodPost, path: "/v1/draft/budget", body: `{"line":"production","amount":1}`, want: http.StatusConflict},
		{name: "unknown script", method: http.MethodPost, path: "/v1/draft/script", body: `{"id":"nope"}`, want: http.StatusNotFound},
		{name: "no bid", method: http.MethodPost, path: "/v1/draft/bid", body: `{"accept":true}`, want: http.StatusConflict},
		{name: "scripts", method: http.MethodGet, path: "/v1/draft/scripts", want: http.StatusOK},
		{name: "pool", method: http.MethodGet, path: "/v1/draft/pool", want: http.StatusOK},
		{name: "draft", method: http.MethodGet, path: "/v1/draft", want: http.StatusOK},
		{name: "cancel", method: http.MethodDelete, path: "/v1/draft", want: http.StatusNoContent},
		{name: "cancel twice", method: http.MethodDelete, path: "/v1/draft", want: http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := do(t, srv, tc.method, tc.path, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: status=%d want %d body=%s", tc.name, rec.Code, tc.want, rec.Body.String())
		}
		if tc.name == "title" {
			d := decode[game.Draft](t, rec)
			if d.Project.Title != "Night Run" || d.Project.Stage != game.StageDevelopment {
				t.Fatalf("title draft: %+v", d.Project)
			}
		}
		if tc.name == "scripts" {
			out := decode[map[string][]game.Script](t, rec)
			if len(out["scripts"]) != game.ScriptsForSale {
				t.Fatalf("scripts=%d", len(out["scripts"]))
			}
		}
	}
}

func TestStudioCommands(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		want     int
		wantCash int64
	}{
		{name: "repay without loan", path: "/v1/loans/repay", want: http.StatusConflict},
		{name: "take loan", path: "/v1/loans/take", want: http.StatusOK, wantCash: game.StarterCash + game.LoanStep},
		{name: "repay", path: "/v1/loans/repay", want: http.StatusOK, wantCash: game.StarterCash},
		{name: "unknown upgrade", path: "/v1/upgrades/nope/buy", want: http.StatusNotFound},
		{name: "buy pr", path: "/v1/upgrades/pr/buy", want: http.StatusOK, wantCash: game.StarterCash - 5_000_000},
		{name: "rights too expensive", path: "/v1/rights/sw/buy", want: http.StatusPaymentRequired},
		{name: "release missing", path: "/v1/projects/missing/release", want: http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := do(t, srv, http.MethodPost, tc.path, "")
		if rec.Code != tc.want {
			t.Fatalf("%s: status=%d want %d body=%s", tc.name, rec.Code, tc.want, rec.Body.String())
		}
		if tc.wantCash != 0 {
			if got := decode[game.StudioState](t, rec).Cash; got != tc.wantCash {
				t.Fatalf("%s: cash=%d want %d", tc.name, got, tc.wantCash)
			}
		}
	}

	ups := decode[map[string][]game.UpgradeView](t, do(t, srv, http.MethodGet, "/v1/upgrades", ""))
	var pr game.UpgradeView
	for _, u := range ups["upgrades"] {
		if u.ID == "pr" {
			pr = u
		}
	}
	if pr.Level != 1 || pr.NextPrice != 7_500_000 {
		t.Fatalf("pr view: %+v", pr)
	}
	rights := decode[map[string][]game.RightsView](t, do(t, srv, http.MethodGet, "/v1/rights", ""))
	if len(rights["rights"]) == 0 {
		t.Fatalf("no rights listed")
	}
}

func TestTurnAndReport(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/v1/turn", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("turn: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[game.Report](t, rec).Turn; got != 2 {
		t.Fatalf("turn=%d", got)
	}
	if got := decode[game.Report](t, do(t, srv, http.MethodGet, "/v1/report", "")).Turn; got != 2 {
		t.Fatalf("report turn=%d", got)
	}
	if got := decode[game.StudioState](t, do(t, srv, http.MethodGet, "/v1/studio", "")).TurnNumber; got != 2 {
		t.Fatalf("studio turn=%d", got)
	}
}
