package game

import (
	"math"
	"strings"
)

const (
	NewGameCompetitorJitter = 2.0
	LoadCompetitorJitter    = 1.0
	DefaultStudioName       = "Studio"
)

// NewStudio is the opening position of a new game.
func NewStudio(rng Rand, cat *Catalog, name string) StudioState {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultStudioName
	}
	return StudioState{
		StudioName:         name,
		Cash:               StarterCash,
		MarketSharePercent: StarterMarketShare,
		TurnNumber:         1,
		ReleaseHistory:     []ReleaseRecord{},
		UpgradeLevels:      map[string]int{},
		Franchises:         []Franchise{},
		Competitors:        seedCompetitors(rng, cat, NewGameCompetitorJitter),
		ActiveProjects:     []Project{},
		ActiveTrend:        NeutralTrend(),
		OwnedRights:        []string{},
	}
}

func seedCompetitors(rng Rand, cat *Catalog, jitter float64) []Competitor {
	out := make([]Competitor, 0, len(cat.Competitors))
	for _, c := range cat.Competitors {
		c.Share = math.Max(MinCompetitorShare, c.Share+uniform(rng, -jitter, jitter))
		out = append(out, c)
	}
	return out
}

// TakeLoan borrows one LoanStep.
func (s *StudioState) TakeLoan() error {
	if s.GameOver {
		return ErrGameOver
	}
	s.Cash += LoanStep
	s.LoanBalance += LoanStep
	return nil
}

// RepayLoan pays back up to one LoanStep. The studio needs a full LoanStep
// in cash even when less is owed.
func (s *StudioState) RepayLoan() (int64, error) {
	if s.GameOver {
		return 0, ErrGameOver
	}
	if s.LoanBalance <= 0 {
		return 0, ErrNoLoan
	}
	if s.Cash < LoanStep {
		return 0, ErrInsufficientFunds
	}
	amount := min(LoanStep, s.LoanBalance)
	s.Cash -= amount
	s.LoanBalance -= amount
	return amount, nil
}

// BuyUpgradeLevel buys the next level of upgrade id and returns its price.
func (s *StudioState) BuyUpgradeLevel(cat *Catalog, id string) (int64, error) {
	if s.GameOver {
		return 0, ErrGameOver
	}
	u, ok := cat.Upgrade(id)
	if !ok {
		return 0, ErrUnknownUpgrade
	}
	level := s.upgradeLevel(u.ID)
	if level >= u.MaxLevel {
		return 0, ErrUpgradeMaxed
	}
	price := UpgradePrice(u.BaseCost, level)
	if s.Cash < price {
		return 0, ErrInsufficientFunds
	}
	if s.UpgradeLevels == nil {
		s.UpgradeLevels = map[string]int{}
	}
	s.Cash -= price
	s.UpgradeLevels[u.ID] = level + 1
	return price, nil
}

// BuyRights acquires the remake rights to a classic.
func (s *StudioState) BuyRights(cat *Catalog, id string) (Rights, error) {
	if s.GameOver {
		return Rights{}, ErrGameOver
	}
	r, ok := cat.RightsByID(id)
	if !ok {
		return Rights{}, ErrUnknownRights
	}
	if s.ownsRights(r.ID) {
		return Rights{}, ErrRightsOwned
	}
	if s.Cash < r.Cost {
		return Rights{}, ErrInsufficientFunds
	}
	s.Cash -= r.Cost
	s.OwnedRights = append(s.OwnedRights, r.ID)
	return r, nil
}

// UpgradeViews lists every upgrade with the studio's level and next price.
func (s *StudioState) UpgradeViews(cat *Catalog) []UpgradeView {
	out := make([]UpgradeView, 0, len(cat.Upgrades))
	for _, u := range cat.Upgrades {
		level := s.upgradeLevel(u.ID)
		v := UpgradeView{Upgrade: u, Level: level, Maxed: level >= u.MaxLevel}
		if !v.Maxed {
			v.NextPrice = UpgradePrice(u.BaseCost, level)
		}
		out = append(out, v)
	}
	return out
}

func (s *StudioState) RightsViews(cat *Catalog) []RightsView {
	out := make([]RightsView, 0, len(cat.Rights))
	for _, r := range cat.Rights {
		out = append(out, RightsView{Rights: r, Owned: s.ownsRights(r.ID)})
	}
	return out
}

// FinishedProjects are the active projects waiting for a release.
func (s *StudioState) FinishedProjects() []Project {
	var out []Project
	for _, p := range s.ActiveProjects {
		if p.Stage == StageFinished {
			out = append(out, cloneProject(p))
		}
	}
	return out
}

func cloneTalentPtr(t *Talent) *Talent {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneProject(p Project) Project {
	p.Director = cloneTalentPtr(p.Director)
	p.Writer = cloneTalentPtr(p.Writer)
	p.Cast = append([]Talent{}, p.Cast...)
	return p
}

func cloneRecord(r ReleaseRecord) ReleaseRecord {
	r.Project = cloneProject(r.Project)
	return r
}

func cloneRecords(rs []ReleaseRecord) []ReleaseRecord {
	out := make([]ReleaseRecord, 0, len(rs))
	for _, r := range rs {
		out = append(out, cloneRecord(r))
	}
	return out
}

// Clone returns a deep copy that shares nothing with s.
func (s StudioState) Clone() StudioState {
	out := s
	out.ReleaseHistory = cloneRecords(s.ReleaseHistory)
	out.UpgradeLevels = make(map[string]int, len(s.UpgradeLevels))
	for k, v := range s.UpgradeLevels {
		out.UpgradeLevels[k] = v
	}
	out.Franchises = make([]Franchise, 0, len(s.Franchises))
	for _, f := range s.Franchises {
		f.Movies = cloneRecords(f.Movies)
		out.Franchises = append(out.Franchises, f)
	}
	out.Competitors = append([]Competitor{}, s.Competitors...)
	out.ActiveProjects = make([]Project, 0, len(s.ActiveProjects))
	for _, p := range s.ActiveProjects {
		out.ActiveProjects = append(out.ActiveProjects, cloneProject(p))
	}
	out.OwnedRights = append([]string{}, s.OwnedRights...)
	return out
}
