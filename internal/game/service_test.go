package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	mathrand "math/rand"
	"testing"
)

type memStore struct {
	doc     []byte
	saves   int
	cleared bool
	saveErr error
}

func (m *memStore) Load(context.Context) ([]byte, error) {
	if m.doc == nil {
		return nil, ErrNoSave
	}
	return m.doc, nil
}

func (m *memStore) Save(_ context.Context, doc []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.doc = append([]byte(nil), doc...)
	m.saves++
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.doc = nil
	m.cleared = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, store *memStore, rng Rand) *Service {
	t.Helper()
	svc := NewService(store, nil, rng, quietLogger())
	if _, err := svc.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	return svc
}

func seedStore(t *testing.T, st StudioState) *memStore {
	t.Helper()
	raw, err := EncodeSave(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &memStore{doc: raw}
}

func TestServiceOpen(t *testing.T) {
	ctx := context.Background()

	empty := &memStore{}
	svc := NewService(empty, nil, fixed(0.5), quietLogger())
	resumed, err := svc.Open(ctx)
	if err != nil || resumed {
		t.Fatalf("empty store: resumed=%v err=%v", resumed, err)
	}
	if svc.State().Cash != StarterCash {
		t.Fatalf("fresh cash=%d", svc.State().Cash)
	}

	corrupt := &memStore{doc: []byte("{oops")}
	svc = NewService(corrupt, nil, fixed(0.5), quietLogger())
	resumed, err = svc.Open(ctx)
	if err != nil || resumed {
		t.Fatalf("corrupt store: resumed=%v err=%v", resumed, err)
	}
	if !corrupt.cleared || corrupt.doc != nil {
		t.Fatalf("corrupt save was not cleared")
	}

	st := testStudio()
	st.Cash = 777
	st.TurnNumber = 9
	saved := seedStore(t, st)
	svc = NewService(saved, nil, fixed(0.5), quietLogger())
	resumed, err = svc.Open(ctx)
	if err != nil || !resumed {
		t.Fatalf("saved store: resumed=%v err=%v", resumed, err)
	}
	if got := svc.State(); got.Cash != 777 || got.TurnNumber != 9 {
		t.Fatalf("state not resumed: %+v", got)
	}
}

func TestServiceProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := newTestService(t, store, fixed(0.99))
	if _, err := svc.NewGame(ctx, "Nordic Pictures"); err != nil {
		t.Fatalf("new game: %v", err)
	}

	d, err := svc.StartProject(ProjectContext{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.StartProject(ProjectContext{}); !errors.Is(err, ErrDraftInProgress) {
		t.Fatalf("second start: %v", err)
	}
	if _, err := svc.BuyScript(d.Scripts[0].ID); err != nil {
		t.Fatalf("buy script: %v", err)
	}
	if _, err := svc.AdvanceToCasting(); err != nil {
		t.Fatalf("casting: %v", err)
	}
	pool, err := svc.TalentPool()
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	for _, id := range []string{pool.Directors[0].ID, pool.Actors[0].ID, pool.Actors[1].ID} {
		res, err := svc.HireTalent(id)
		if err != nil || !res.Hired {
			t.Fatalf("hire %s: %+v %v", id, res, err)
		}
	}
	if _, err := svc.AdvanceToBudgeting(); err != nil {
		t.Fatalf("budgeting: %v", err)
	}
	if _, err := svc.SetBudget(BudgetProduction, 8_000_000); err != nil {
		t.Fatalf("budget: %v", err)
	}
	if _, err := svc.SetBudget(BudgetMerchandise, 1_000_000); !errors.Is(err, ErrMerchLocked) {
		t.Fatalf("merch without upgrade: %v", err)
	}

	draft, _ := svc.Draft()
	cost := LaunchCost(draft.Project)
	before := svc.State().Cash
	p, err := svc.LaunchProduction(ctx)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if got := svc.State().Cash; got != before-cost {
		t.Fatalf("cash=%d want %d", got, before-cost)
	}
	if _, ok := svc.Draft(); ok {
		t.Fatalf("draft should be cleared after launch")
	}
	if p.Quality < MinQuality || p.Quality > MaxQuality || p.Hype < MinHype || p.Hype > MaxHype {
		t.Fatalf("launch scores out of range: %d/%d", p.Quality, p.Hype)
	}

	if _, err := svc.ReleaseFinishedProject(ctx, p.ID); !errors.Is(err, ErrProjectNotFinished) {
		t.Fatalf("early release: %v", err)
	}
	for i := 0; i < 9; i++ {
		if _, err := svc.AdvanceTurn(ctx); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}
	st := svc.State()
	if st.ActiveProjects[0].Stage != StageFinished || st.TurnNumber != 10 {
		t.Fatalf("stage=%s turn=%d", st.ActiveProjects[0].Stage, st.TurnNumber)
	}

	first := svc.LastReport()
	second := svc.LastReport()
	if len(first.Lines) != len(second.Lines) || svc.State().TurnNumber != 10 || svc.State().Cash != st.Cash {
		t.Fatalf("reading the report changed state")
	}

	res, err := svc.ReleaseFinishedProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	after := svc.State()
	if len(after.ActiveProjects) != 0 || len(after.ReleaseHistory) != 1 {
		t.Fatalf("release not recorded: %+v", after)
	}
	if after.Cash != st.Cash+res.Record.Revenue {
		t.Fatalf("cash=%d want %d", after.Cash, st.Cash+res.Record.Revenue)
	}
	if res.Record.Profit != res.Record.Revenue-p.TotalCost || res.Record.Year != 2024 {
		t.Fatalf("record=%+v", res.Record)
	}
	if after.MarketSharePercent < MinMarketShare || after.MarketSharePercent > MaxMarketShare {
		t.Fatalf("share=%v", after.MarketSharePercent)
	}

	reloaded, err := DecodeSave(store.doc, fixed(0.5), DefaultCatalog())
	if err != nil {
		t.Fatalf("saved document unreadable: %v", err)
	}
	if reloaded.Cash != after.Cash || len(reloaded.ReleaseHistory) != 1 {
		t.Fatalf("save out of date: cash=%d", reloaded.Cash)
	}
}

func TestServiceCancelChargesNothing(t *testing.T) {
	svc := newTestService(t, &memStore{}, fixed(0.99))
	cash := svc.State().Cash
	d, _ := svc.StartProject(ProjectContext{})
	if _, err := svc.BuyScript(d.Scripts[0].ID); err != nil {
		t.Fatalf("buy script: %v", err)
	}
	if err := svc.CancelProject(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if svc.State().Cash != cash {
		t.Fatalf("cancel charged the studio")
	}
	if _, ok := svc.Draft(); ok {
		t.Fatalf("draft survived cancel")
	}
	if err := svc.CancelProject(); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("got %v", err)
	}
	if _, err := svc.SetTitle("x"); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("got %v", err)
	}
}

func finishedProject(id string, quality, hype int, totalCost int64) Project {
	p := readyProject()
	p.ID = id
	p.Title = "Hero"
	p.Genre = Genre{ID: "scifi", Name: "Sci-Fi", AudienceMultiplier: 1.3}
	p.Quality = quality
	p.Hype = hype
	p.TotalCost = totalCost
	p.Stage = StageFinished
	return p
}

func TestServiceReleaseFoundsFranchise(t *testing.T) {
	ctx := context.Background()
	st := testStudio()
	st.ActiveProjects = []Project{finishedProject("hit", 90, 100, 1_000_000)}
	svc := newTestService(t, seedStore(t, st), fixed(0.99))

	res, err := svc.ReleaseFinishedProject(ctx, "hit")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if res.Franchise != "Hero Universe" || res.ShareDelta != 2.5 {
		t.Fatalf("result=%+v", res)
	}
	after := svc.State()
	if len(after.Franchises) != 1 || len(after.Franchises[0].Movies) != 1 || after.Franchises[0].Value != FranchiseSeedValue {
		t.Fatalf("franchises=%+v", after.Franchises)
	}
	if after.MarketSharePercent != StarterMarketShare+2.5 {
		t.Fatalf("share=%v", after.MarketSharePercent)
	}

	d, err := svc.StartProject(ProjectContext{FranchiseID: after.Franchises[0].ID})
	if err != nil {
		t.Fatalf("franchise sequel: %v", err)
	}
	if d.Project.Title != "Hero Universe 2" || d.Project.FranchiseID != after.Franchises[0].ID {
		t.Fatalf("sequel=%+v", d.Project)
	}
}

func TestServiceReleaseGrowsFranchise(t *testing.T) {
	ctx := context.Background()
	founder := ReleaseRecord{Project: finishedProject("hit", 90, 100, 1_000_000), Profit: 20_000_000, Revenue: 21_000_000}
	founder.FranchiseID = "f1"

	st := testStudio()
	st.ReleaseHistory = []ReleaseRecord{founder}
	st.Franchises = []Franchise{{ID: "f1", Name: "Hero Universe", Movies: []ReleaseRecord{founder}, Value: FranchiseSeedValue}}

	franchiseSequel := finishedProject("hero2", 90, 100, 1_000_000)
	franchiseSequel.Title, franchiseSequel.FranchiseID = "Hero Universe 2", "f1"
	franchiseSequel.IsSequel, franchiseSequel.SequelNumber = true, 2
	standalone := finishedProject("solo2", 90, 100, 1_000_000)
	standalone.Title, standalone.IsSequel, standalone.SequelNumber = "Solo 2", true, 2
	st.ActiveProjects = []Project{franchiseSequel, standalone}

	svc := newTestService(t, seedStore(t, st), fixed(0.99))

	tests := []struct {
		id            string
		wantFranchise string
	}{
		{id: "hero2", wantFranchise: "Hero Universe"},
		{id: "solo2", wantFranchise: ""},
	}
	for _, tc := range tests {
		res, err := svc.ReleaseFinishedProject(ctx, tc.id)
		if err != nil {
			t.Fatalf("release %s: %v", tc.id, err)
		}
		if res.Record.Profit <= FranchiseProfitThreshold || res.Record.Quality <= FranchiseQualityThreshold {
			t.Fatalf("release %s should clear the franchise thresholds: %+v", tc.id, res.Record)
		}
		if res.Franchise != tc.wantFranchise {
			t.Fatalf("release %s franchise=%q want %q", tc.id, res.Franchise, tc.wantFranchise)
		}
	}

	after := svc.State()
	if len(after.Franchises) != 1 {
		t.Fatalf("a sequel founded a franchise: %+v", after.Franchises)
	}
	movies := after.Franchises[0].Movies
	if len(movies) != 2 || movies[1].ID != "hero2" {
		t.Fatalf("franchise movies=%+v", movies)
	}
	if len(after.ReleaseHistory) != 3 {
		t.Fatalf("history=%d", len(after.ReleaseHistory))
	}

	d, err := svc.StartProject(ProjectContext{SequelOf: "hit"})
	if err != nil {
		t.Fatalf("sequel of founder: %v", err)
	}
	if d.Project.FranchiseID != "f1" || !d.Project.IsSequel || d.Project.SequelNumber != 2 {
		t.Fatalf("sequel draft=%+v", d.Project)
	}
}

func TestServiceBankruptcy(t *testing.T) {
	ctx := context.Background()
	st := testStudio()
	st.Cash = -40_000_000
	st.ActiveProjects = []Project{finishedProject("flop", 10, 5, 30_000_000)}
	svc := newTestService(t, seedStore(t, st), fixed(0.99))

	res, err := svc.ReleaseFinishedProject(ctx, "flop")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !res.GameOver || !svc.State().GameOver {
		t.Fatalf("expected game over, cash=%d", svc.State().Cash)
	}
	if _, err := svc.AdvanceTurn(ctx); !errors.Is(err, ErrGameOver) {
		t.Fatalf("turn after game over: %v", err)
	}
	if _, err := svc.StartProject(ProjectContext{}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("start after game over: %v", err)
	}
	if _, err := svc.TakeLoan(ctx); !errors.Is(err, ErrGameOver) {
		t.Fatalf("loan after game over: %v", err)
	}
	if _, err := svc.NewGame(ctx, "Second Try"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := svc.State(); got.GameOver || got.Cash != StarterCash || got.StudioName != "Second Try" {
		t.Fatalf("restart state=%+v", got)
	}
}

func TestServiceShareStaysInRange(t *testing.T) {
	ctx := context.Background()
	rng := mathrand.New(mathrand.NewSource(42))
	st := testStudio()
	for i := 0; i < 60; i++ {
		q := 10 + rng.Intn(91)
		h := 5 + rng.Intn(96)
		cost := int64(rng.Intn(80_000_000))
		st.ActiveProjects = append(st.ActiveProjects, finishedProject(string(rune('A'+i)), q, h, cost))
	}
	st.Cash = 1_000_000_000
	svc := newTestService(t, seedStore(t, st), rng)

	for i := 0; i < 60; i++ {
		if _, err := svc.ReleaseFinishedProject(ctx, string(rune('A'+i))); err != nil {
			t.Fatalf("release %d: %v", i, err)
		}
		got := svc.State()
		if got.MarketSharePercent < MinMarketShare || got.MarketSharePercent > MaxMarketShare {
			t.Fatalf("share %v out of range after release %d", got.MarketSharePercent, i)
		}
		for _, c := range got.Competitors {
			if c.Share < MinCompetitorShare {
				t.Fatalf("competitor %s share %v below floor", c.Name, c.Share)
			}
		}
	}
}

func TestServiceStudioCommands(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := newTestService(t, store, fixed(0.5))

	if _, err := svc.RepayLoan(ctx); !errors.Is(err, ErrNoLoan) {
		t.Fatalf("repay without loan: %v", err)
	}
	st, err := svc.TakeLoan(ctx)
	if err != nil || st.Cash != StarterCash+LoanStep || st.LoanBalance != LoanStep {
		t.Fatalf("take loan: %+v %v", st, err)
	}
	st, err = svc.RepayLoan(ctx)
	if err != nil || st.Cash != StarterCash || st.LoanBalance != 0 {
		t.Fatalf("repay: %+v %v", st, err)
	}

	if _, err := svc.BuyUpgradeLevel(ctx, "catering"); !errors.Is(err, ErrUnknownUpgrade) {
		t.Fatalf("got %v", err)
	}
	st, err = svc.BuyUpgradeLevel(ctx, UpgradePR)
	if err != nil || st.UpgradeLevels[UpgradePR] != 1 || st.Cash != StarterCash-5_000_000 {
		t.Fatalf("buy pr: %+v %v", st, err)
	}
	views := svc.Upgrades()
	for _, v := range views {
		if v.ID == UpgradePR && (v.Level != 1 || v.NextPrice != 7_500_000) {
			t.Fatalf("pr view=%+v", v)
		}
	}

	st, err = svc.BuyRights(ctx, "psy")
	if err != nil || len(st.OwnedRights) != 1 {
		t.Fatalf("buy rights: %+v %v", st, err)
	}
	if _, err := svc.BuyRights(ctx, "psy"); !errors.Is(err, ErrRightsOwned) {
		t.Fatalf("rebuy: %v", err)
	}
	if _, err := svc.BuyRights(ctx, "sw"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("unaffordable rights: %v", err)
	}
	if got := svc.State().Cash; got != StarterCash-5_000_000-8_000_000 {
		t.Fatalf("cash=%d", got)
	}
	d, err := svc.StartProject(ProjectContext{RightsID: "psy"})
	if err != nil || d.Project.Title != "Remake: Psycho" {
		t.Fatalf("remake: %+v %v", d.Project, err)
	}
}

func TestServiceReturnsSaveErrors(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := newTestService(t, store, fixed(0.99))
	store.saveErr = errors.New("disk full")

	if _, err := svc.AdvanceTurn(ctx); err == nil {
		t.Fatalf("expected save error")
	}
	if svc.State().TurnNumber != 2 {
		t.Fatalf("turn should still advance, got %d", svc.State().TurnNumber)
	}
}
