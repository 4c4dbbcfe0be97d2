package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"
)

// SaveStore holds the single save document. Load returns ErrNoSave when
// nothing has been saved.
type SaveStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
	Clear(ctx context.Context) error
}

// Service owns one studio and the project currently in the wizard. Every
// exported method holds the same lock.
type Service struct {
	store SaveStore
	cat   *Catalog
	log   *slog.Logger
	mu    sync.Mutex
	rand  Rand

	state StudioState
	draft *Draft
	last  Report
}

// NewService wires a service. A nil catalog means the embedded one, a nil
// rng a time-seeded source.
func NewService(store SaveStore, cat *Catalog, rng Rand, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = DefaultCatalog()
	}
	if rng == nil {
		rng = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store: store,
		cat:   cat,
		log:   logger,
		rand:  rng,
		state: NewStudio(rng, cat, ""),
	}
}

// Open loads the saved game. A missing save leaves a fresh studio; a corrupt
// one is cleared from the store first. resumed reports whether a save was
// picked up.
func (s *Service) Open(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = nil
	s.last = Report{}

	raw, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoSave) {
		s.state = NewStudio(s.rand, s.cat, "")
		s.log.Info("no saved game, starting fresh")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load save: %w", err)
	}

	st, err := DecodeSave(raw, s.rand, s.cat)
	if err != nil {
		s.log.Warn("discarding unreadable save", "err", err)
		s.state = NewStudio(s.rand, s.cat, "")
		if cerr := s.store.Clear(ctx); cerr != nil {
			return false, fmt.Errorf("clear corrupt save: %w", cerr)
		}
		return false, nil
	}
	s.state = st
	s.log.Info("save resumed", "studio", st.StudioName, "turn", st.TurnNumber, "cash", st.Cash)
	return true, nil
}

// NewGame replaces the studio with a new one and saves it.
func (s *Service) NewGame(ctx context.Context, name string) (StudioState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = NewStudio(s.rand, s.cat, name)
	s.draft = nil
	s.last = Report{}
	s.log.Info("new game", "studio", s.state.StudioName)
	return s.state.Clone(), s.persist(ctx)
}

func (s *Service) persist(ctx context.Context) error {
	raw, err := EncodeSave(s.state)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, raw); err != nil {
		s.log.Error("save failed", "err", err)
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (s *Service) playable() error {
	if s.state.GameOver {
		return ErrGameOver
	}
	return nil
}

func (s *Service) activeDraft() (*Draft, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	if s.draft == nil {
		return nil, ErrNoDraft
	}
	return s.draft, nil
}

// StartProject opens the wizard for a new project.
func (s *Service) StartProject(pc ProjectContext) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.playable(); err != nil {
		return Draft{}, err
	}
	if s.draft != nil {
		return Draft{}, ErrDraftInProgress
	}
	d, err := NewDraft(s.rand, s.cat, &s.state, pc)
	if err != nil {
		return Draft{}, err
	}
	s.draft = d
	s.log.Debug("project started", "id", d.Project.ID, "stage", d.Project.Stage, "returnees", len(d.Returnees))
	return *d.clone(), nil
}

// CancelProject drops the wizard. Nothing has been charged yet.
func (s *Service) CancelProject() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		return ErrNoDraft
	}
	s.draft = nil
	return nil
}

func (s *Service) editDraft(fn func(d *Draft) error) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.activeDraft()
	if err != nil {
		return Draft{}, err
	}
	if err := fn(d); err != nil {
		return Draft{}, err
	}
	return *d.clone(), nil
}

func (s *Service) SetTitle(title string) (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.SetTitle(title) })
}

func (s *Service) SetGenre(genreID string) (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.SetGenre(s.cat, genreID) })
}

func (s *Service) BuyScript(scriptID string) (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.BuyScript(scriptID) })
}

// HireTalent signs a pool member, or opens a bidding war.
func (s *Service) HireTalent(talentID string) (HireResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.activeDraft()
	if err != nil {
		return HireResult{}, err
	}
	return d.Hire(s.rand, s.state.Competitors, talentID)
}

func (s *Service) DismissTalent(talentID string) (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.Dismiss(talentID) })
}

func (s *Service) ResolveBiddingWar(accept bool) (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.ResolveBid(accept) })
}

func (s *Service) ToggleReturnee(talentID string) (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.ToggleReturnee(talentID) })
}

func (s *Service) ConfirmReturnees() (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.ConfirmReturnees() })
}

func (s *Service) AdvanceToCasting() (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.ToCasting() })
}

func (s *Service) AdvanceToBudgeting() (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.ToBudgeting() })
}

func (s *Service) SetBudget(line BudgetLine, amount int64) (Draft, error) {
	return s.editDraft(func(d *Draft) error {
		return d.SetBudget(line, amount, s.state.upgradeLevel(UpgradeMerch))
	})
}

func (s *Service) SetReleaseChannel(ch Channel) (Draft, error) {
	return s.editDraft(func(d *Draft) error { return d.SetChannel(ch) })
}

// LaunchProduction charges the project's cost and hands it to the turn
// scheduler.
func (s *Service) LaunchProduction(ctx context.Context) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.activeDraft()
	if err != nil {
		return Project{}, err
	}
	if err := d.pending(); err != nil {
		return Project{}, err
	}
	p := cloneProject(d.Project)
	cost, err := Launch(&p, s.state.Cash, s.state.UpgradeLevels, s.cat)
	if err != nil {
		return Project{}, err
	}
	s.state.Cash -= cost
	s.state.ActiveProjects = append(s.state.ActiveProjects, p)
	s.draft = nil
	s.log.Info("production launched", "title", p.Title, "cost", cost, "quality", p.Quality, "hype", p.Hype)
	return cloneProject(p), s.persist(ctx)
}

// AdvanceTurn runs the scheduler once and saves.
func (s *Service) AdvanceTurn(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.playable(); err != nil {
		return Report{}, err
	}
	r := AdvanceTurn(s.rand, s.cat, &s.state)
	s.last = r
	s.log.Info("turn advanced", "turn", s.state.TurnNumber, "cash", s.state.Cash, "lines", len(r.Lines))
	return cloneReport(r), s.persist(ctx)
}

// ReleaseFinishedProject releases a finished project and saves.
func (s *Service) ReleaseFinishedProject(ctx context.Context, projectID string) (ReleaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := Release(s.rand, s.cat, &s.state, projectID)
	if err != nil {
		return ReleaseResult{}, err
	}
	s.log.Info("project released",
		"title", res.Record.Title,
		"revenue", res.Record.Revenue,
		"profit", res.Record.Profit,
		"share_delta", res.ShareDelta,
	)
	if res.GameOver {
		s.log.Warn("studio bankrupt", "cash", s.state.Cash)
	}
	return res, s.persist(ctx)
}

func (s *Service) BuyUpgradeLevel(ctx context.Context, upgradeID string) (StudioState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, err := s.state.BuyUpgradeLevel(s.cat, upgradeID)
	if err != nil {
		return StudioState{}, err
	}
	s.log.Info("upgrade bought", "upgrade", upgradeID, "price", price)
	return s.state.Clone(), s.persist(ctx)
}

func (s *Service) BuyRights(ctx context.Context, rightsID string) (StudioState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.state.BuyRights(s.cat, rightsID)
	if err != nil {
		return StudioState{}, err
	}
	s.log.Info("rights bought", "title", r.Title, "cost", r.Cost)
	return s.state.Clone(), s.persist(ctx)
}

func (s *Service) TakeLoan(ctx context.Context) (StudioState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.TakeLoan(); err != nil {
		return StudioState{}, err
	}
	return s.state.Clone(), s.persist(ctx)
}

func (s *Service) RepayLoan(ctx context.Context) (StudioState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.state.RepayLoan(); err != nil {
		return StudioState{}, err
	}
	return s.state.Clone(), s.persist(ctx)
}

func (s *Service) State() StudioState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Draft returns the project in the wizard, if any.
func (s *Service) Draft() (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return Draft{}, false
	}
	return *s.draft.clone(), true
}

// LastReport returns the report of the latest turn. It never advances
// anything.
func (s *Service) LastReport() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneReport(s.last)
}

func (s *Service) TalentPool() (TalentPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return TalentPool{}, ErrNoDraft
	}
	return clonePool(s.draft.Pool), nil
}

func (s *Service) ScriptsForSale() ([]Script, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil, ErrNoDraft
	}
	return append([]Script(nil), s.draft.Scripts...), nil
}

func (s *Service) PendingBid() (BiddingWar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil || s.draft.Bid == nil {
		return BiddingWar{}, false
	}
	return *s.draft.Bid, true
}

func (s *Service) Returnees() []Returnee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return append([]Returnee(nil), s.draft.Returnees...)
}

func (s *Service) Upgrades() []UpgradeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpgradeViews(s.cat)
}

func (s *Service) Rights() []RightsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RightsViews(s.cat)
}

func (s *Service) Catalog() *Catalog {
	return s.cat
}

func cloneReport(r Report) Report {
	r.Lines = append([]string(nil), r.Lines...)
	return r
}
