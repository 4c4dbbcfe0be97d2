package game

import "fmt"

type Role string

const (
	RoleDirector Role = "director"
	RoleActor    Role = "actor"
	RoleWriter   Role = "writer"
)

type Channel string

const (
	ChannelCinema    Channel = "cinema"
	ChannelStreaming Channel = "streaming"
)

type Stage string

const (
	StageDevelopment    Stage = "development"
	StageCasting        Stage = "casting"
	StageBudgeting      Stage = "budgeting"
	StagePreProduction  Stage = "pre-production"
	StageProduction     Stage = "production"
	StagePostProduction Stage = "post-production"
	StageFinished       Stage = "finished"
)

// Launched reports whether the stage belongs to the automatic sequence that
// follows LaunchProduction.
func (s Stage) Launched() bool {
	switch s {
	case StagePreProduction, StageProduction, StagePostProduction, StageFinished:
		return true
	}
	return false
}

type Polarity string

const (
	PolarityNeutral Polarity = "neutral"
	PolarityHot     Polarity = "hot"
	PolarityCold    Polarity = "cold"
)

type BudgetLine string

const (
	BudgetProduction  BudgetLine = "production"
	BudgetMarketing   BudgetLine = "marketing"
	BudgetMerchandise BudgetLine = "merchandise"
)

type Genre struct {
	ID                 string  `json:"id" yaml:"id"`
	Name               string  `json:"name" yaml:"name"`
	CostMultiplier     float64 `json:"costMultiplier" yaml:"cost_multiplier"`
	AudienceMultiplier float64 `json:"audienceMultiplier" yaml:"audience_multiplier"`
}

type Trait struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Description    string  `json:"description" yaml:"description"`
	CostMultiplier float64 `json:"costMultiplier" yaml:"cost_multiplier"`
	ConflictScore  float64 `json:"conflictScore" yaml:"conflict_score"`
}

type Talent struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Skill        int    `json:"skillScore"`
	Fame         int    `json:"fameScore"`
	BaseSalary   int64  `json:"baseSalary"`
	Salary       int64  `json:"salary"`
	Trait        Trait  `json:"trait"`
	IsMarketReal bool   `json:"isMarketReal"`
}

type Script struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Genre        Genre  `json:"genre"`
	QualityBonus int    `json:"qualityBonus"`
	Cost         int64  `json:"cost"`
}

type Project struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Genre              Genre    `json:"genre"`
	FranchiseID        string   `json:"franchiseId,omitempty"`
	IsSequel           bool     `json:"isSequel"`
	IsRemake           bool     `json:"isRemake"`
	SequelNumber       int      `json:"sequelNumber"`
	HypeBonus          int      `json:"hypeBonus"`
	Director           *Talent  `json:"director,omitempty"`
	Writer             *Talent  `json:"writer,omitempty"`
	Cast               []Talent `json:"cast"`
	ProductionBudget   int64    `json:"productionBudget"`
	MarketingBudget    int64    `json:"marketingBudget"`
	MerchandiseBudget  int64    `json:"merchandiseBudget"`
	ReleaseChannel     Channel  `json:"releaseChannel"`
	ScriptQualityBonus int      `json:"scriptQualityBonus"`
	ScriptCost         int64    `json:"scriptCost"`
	Quality            int      `json:"qualityScore"`
	Hype               int      `json:"hypeScore"`
	TotalCost          int64    `json:"totalCost"`
	Stage              Stage    `json:"stage"`
	StageProgress      int      `json:"stageProgress"`
}

// Team is the director, writer and cast, skipping unset roles.
func (p Project) Team() []Talent {
	team := make([]Talent, 0, len(p.Cast)+2)
	if p.Director != nil {
		team = append(team, *p.Director)
	}
	if p.Writer != nil {
		team = append(team, *p.Writer)
	}
	return append(team, p.Cast...)
}

type ReleaseRecord struct {
	Project
	BoxOffice    int64  `json:"boxOffice"`
	Merchandise  int64  `json:"merchandise"`
	Revenue      int64  `json:"revenue"`
	Profit       int64  `json:"profit"`
	Year         int    `json:"year"`
	ReleasedTurn int    `json:"releasedTurn"`
	Event        string `json:"event,omitempty"`
}

type Franchise struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Genre  Genre           `json:"genre"`
	Movies []ReleaseRecord `json:"movies"`
	Value  int             `json:"value"`
}

type Competitor struct {
	Name     string  `json:"name" yaml:"name"`
	Share    float64 `json:"share" yaml:"share"`
	ColorTag string  `json:"colorTag" yaml:"color_tag"`
}

type Trend struct {
	GenreID           string   `json:"genreId,omitempty"`
	Polarity          Polarity `json:"polarity"`
	RemainingDuration int      `json:"remainingDuration"`
}

// NeutralTrend is the idle trend: no genre, no duration.
func NeutralTrend() Trend {
	return Trend{Polarity: PolarityNeutral}
}

// Valid reports whether t respects the neutral-iff-unset invariant.
func (t Trend) Valid() bool {
	neutral := t.Polarity == PolarityNeutral
	unset := t.GenreID == "" && t.RemainingDuration == 0
	if neutral != unset {
		return false
	}
	switch t.Polarity {
	case PolarityNeutral:
		return true
	case PolarityHot, PolarityCold:
		return t.GenreID != "" && t.RemainingDuration > 0
	}
	return false
}

type StudioState struct {
	StudioName         string          `json:"studioName"`
	Cash               int64           `json:"cash"`
	LoanBalance        int64           `json:"loanBalance"`
	MarketSharePercent float64         `json:"marketSharePercent"`
	TurnNumber         int             `json:"turnNumber"`
	ReleaseHistory     []ReleaseRecord `json:"releaseHistory"`
	UpgradeLevels      map[string]int  `json:"upgradeLevels"`
	Franchises         []Franchise     `json:"franchises"`
	Competitors        []Competitor    `json:"competitors"`
	ActiveProjects     []Project       `json:"activeProjects"`
	ActiveTrend        Trend           `json:"activeTrend"`
	OwnedRights        []string        `json:"ownedRights"`
	GameOver           bool            `json:"gameOver"`
}

func (s *StudioState) upgradeLevel(id string) int {
	if s.UpgradeLevels == nil {
		return 0
	}
	return s.UpgradeLevels[id]
}

func (s *StudioState) ownsRights(id string) bool {
	for _, r := range s.OwnedRights {
		if r == id {
			return true
		}
	}
	return false
}

func (s *StudioState) findFranchise(id string) *Franchise {
	for i := range s.Franchises {
		if s.Franchises[i].ID == id {
			return &s.Franchises[i]
		}
	}
	return nil
}

func (s *StudioState) findRelease(id string) *ReleaseRecord {
	for i := range s.ReleaseHistory {
		if s.ReleaseHistory[i].ID == id {
			return &s.ReleaseHistory[i]
		}
	}
	return nil
}

// Report is the ordered list of notable events produced by one command.
type Report struct {
	Turn  int      `json:"turn"`
	Lines []string `json:"lines"`
}

func (r *Report) add(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

type TalentPool struct {
	Directors []Talent `json:"directors"`
	Actors    []Talent `json:"actors"`
	Writers   []Talent `json:"writers"`
}

type Returnee struct {
	Talent   Talent `json:"talent"`
	Selected bool   `json:"selected"`
}

type BiddingWar struct {
	Talent         Talent `json:"talent"`
	Role           Role   `json:"role"`
	Competitor     string `json:"competitor"`
	Bid            int64  `json:"bid"`
	OriginalSalary int64  `json:"originalSalary"`
}

// HireResult is the outcome of HireTalent: either the talent joined the
// project, or a rival made a counter-offer that needs ResolveBiddingWar.
type HireResult struct {
	Hired      bool        `json:"hired"`
	BiddingWar *BiddingWar `json:"biddingWar,omitempty"`
}

type ReleaseResult struct {
	Record     ReleaseRecord `json:"record"`
	ShareDelta float64       `json:"shareDelta"`
	Franchise  string        `json:"franchise,omitempty"`
	GameOver   bool          `json:"gameOver"`
	Report     Report        `json:"report"`
}

// ProjectContext selects what a new project is based on. At most one field
// is set; all empty starts an original production.
type ProjectContext struct {
	FranchiseID string `json:"franchiseId,omitempty"`
	SequelOf    string `json:"sequelOf,omitempty"`
	RightsID    string `json:"rightsId,omitempty"`
}

type UpgradeView struct {
	Upgrade
	Level     int   `json:"level"`
	NextPrice int64 `json:"nextPrice"`
	Maxed     bool  `json:"maxed"`
}

type RightsView struct {
	Rights
	Owned bool `json:"owned"`
}
