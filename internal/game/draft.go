package game

import (
	"math"
	"strconv"
	"strings"
)

const (
	FranchiseSequelHype = 20
	SequelHype          = 15

	BiddingWarChance    = 0.3
	BiddingWarFameLimit = 70
	BidFactorMin        = 1.3
	BidFactorSpread     = 0.5
	FallbackRival       = "Rival Studio"
)

// Draft is the project-in-progress together with the wizard's transient
// state. It is dropped on cancel and never saved.
type Draft struct {
	Project   Project     `json:"project"`
	Pool      TalentPool  `json:"pool"`
	Scripts   []Script    `json:"scripts"`
	Returnees []Returnee  `json:"returnees,omitempty"`
	Bid       *BiddingWar `json:"biddingWar,omitempty"`
}

// NewDraft starts a project for studio in the given context, rolling a fresh
// talent pool, scripts for sale and any returning talent.
func NewDraft(rng Rand, cat *Catalog, studio *StudioState, pc ProjectContext) (*Draft, error) {
	p := Project{
		ID:               newID(),
		ProductionBudget: DefaultProductionBudget,
		MarketingBudget:  DefaultMarketingBudget,
		ReleaseChannel:   ChannelCinema,
		Cast:             []Talent{},
		Stage:            StageDevelopment,
	}

	var source *ReleaseRecord
	switch {
	case pc.RightsID != "":
		r, ok := cat.RightsByID(pc.RightsID)
		if !ok {
			return nil, ErrUnknownRights
		}
		if !studio.ownsRights(r.ID) {
			return nil, ErrRightsNotOwned
		}
		g, ok := cat.Genre(r.GenreID)
		if !ok {
			return nil, ErrUnknownGenre
		}
		p.Title = "Remake: " + r.Title
		p.Genre = g
		p.HypeBonus = r.Hype
		p.IsRemake = true
	case pc.FranchiseID != "":
		f := studio.findFranchise(pc.FranchiseID)
		if f == nil {
			return nil, ErrFranchiseNotFound
		}
		n := len(f.Movies) + 1
		p.Title = f.Name + " " + strconv.Itoa(n)
		p.Genre = f.Genre
		p.FranchiseID = f.ID
		p.SequelNumber = n
		p.HypeBonus = FranchiseSequelHype
		p.IsSequel = true
		if len(f.Movies) > 0 {
			last := f.Movies[len(f.Movies)-1]
			source = &last
		}
	case pc.SequelOf != "":
		rec := studio.findRelease(pc.SequelOf)
		if rec == nil {
			return nil, ErrProjectNotFound
		}
		if rec.Profit <= 0 {
			return nil, ErrSequelNotAllowed
		}
		prev := rec.SequelNumber
		if prev < 1 {
			prev = 1
		}
		p.SequelNumber = prev + 1
		p.Title = SequelTitle(rec.Title, p.SequelNumber)
		p.Genre = rec.Genre
		p.FranchiseID = rec.FranchiseID
		p.HypeBonus = SequelHype
		p.IsSequel = true
		src := *rec
		source = &src
	}
	if p.IsSequel || p.IsRemake {
		p.Stage = StageCasting
	}

	d := &Draft{Project: p}
	d.Scripts = make([]Script, 0, ScriptsForSale)
	for i := 0; i < ScriptsForSale; i++ {
		d.Scripts = append(d.Scripts, GenerateScript(rng, cat))
	}
	experience := SafeNum(studio.MarketSharePercent) / 20
	d.Pool = GeneratePool(rng, cat, experience, ScoutSkillPerLevel*studio.upgradeLevel(UpgradeScouts))

	if source != nil {
		chance := ReturnChance(source.Profit)
		if source.Director != nil && rng.Float64() < chance {
			d.Returnees = append(d.Returnees, Returnee{Talent: ReturningTalent(*source.Director, source.Profit), Selected: true})
		}
		for _, a := range source.Cast {
			if rng.Float64() < chance {
				d.Returnees = append(d.Returnees, Returnee{Talent: ReturningTalent(a, source.Profit), Selected: true})
			}
		}
	}
	return d, nil
}

func (d *Draft) pending() error {
	if d.Bid != nil {
		return ErrBiddingWarPending
	}
	if len(d.Returnees) > 0 {
		return ErrReturneesPending
	}
	return nil
}

func (d *Draft) inDevelopment() error {
	if err := d.pending(); err != nil {
		return err
	}
	if d.Project.Stage != StageDevelopment {
		return ErrInvalidStage
	}
	return nil
}

func (d *Draft) SetTitle(title string) error {
	if err := d.inDevelopment(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	d.Project.Title = title
	return nil
}

func (d *Draft) SetGenre(cat *Catalog, id string) error {
	if err := d.inDevelopment(); err != nil {
		return err
	}
	g, ok := cat.Genre(strings.ToLower(strings.TrimSpace(id)))
	if !ok {
		return ErrUnknownGenre
	}
	d.Project.Genre = g
	return nil
}

// BuyScript attaches a script for sale, taking its title and genre. The
// script's cost is charged at launch.
func (d *Draft) BuyScript(id string) error {
	if err := d.inDevelopment(); err != nil {
		return err
	}
	for _, s := range d.Scripts {
		if s.ID != id {
			continue
		}
		d.Project.Title = s.Title
		d.Project.Genre = s.Genre
		d.Project.ScriptQualityBonus = s.QualityBonus
		d.Project.ScriptCost = s.Cost
		return nil
	}
	return ErrUnknownScript
}

func (d *Draft) findInPool(id string) (Talent, bool) {
	for _, group := range [][]Talent{d.Pool.Directors, d.Pool.Actors, d.Pool.Writers} {
		for _, t := range group {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Talent{}, false
}

func (d *Draft) isHired(id string) bool {
	p := d.Project
	if p.Director != nil && p.Director.ID == id {
		return true
	}
	if p.Writer != nil && p.Writer.ID == id {
		return true
	}
	for _, a := range p.Cast {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Hire tries to sign a talent from the pool. Writers sign in development;
// directors and actors in casting, where contested talent may draw a rival
// bid that has to be resolved with ResolveBid.
func (d *Draft) Hire(rng Rand, competitors []Competitor, id string) (HireResult, error) {
	if err := d.pending(); err != nil {
		return HireResult{}, err
	}
	t, ok := d.findInPool(id)
	if !ok {
		return HireResult{}, ErrTalentNotFound
	}
	if d.isHired(id) {
		return HireResult{}, ErrAlreadyHired
	}

	if t.Role == RoleWriter {
		if d.Project.Stage != StageDevelopment {
			return HireResult{}, ErrInvalidStage
		}
		w := t
		d.Project.Writer = &w
		return HireResult{Hired: true}, nil
	}

	if d.Project.Stage != StageCasting {
		return HireResult{}, ErrInvalidStage
	}
	if t.Role == RoleActor && len(d.Project.Cast) >= MaxCast {
		return HireResult{}, ErrRosterFull
	}

	if (t.IsMarketReal || t.Fame > BiddingWarFameLimit) && rng.Float64() < BiddingWarChance {
		rival := FallbackRival
		if len(competitors) > 0 {
			rival = pick(rng, competitors).Name
		}
		bid := int64(math.Floor(float64(t.Salary) * (BidFactorMin + rng.Float64()*BidFactorSpread)))
		d.Bid = &BiddingWar{
			Talent:         t,
			Role:           t.Role,
			Competitor:     rival,
			Bid:            bid,
			OriginalSalary: t.Salary,
		}
		war := *d.Bid
		return HireResult{BiddingWar: &war}, nil
	}

	d.sign(t, t.Salary)
	return HireResult{Hired: true}, nil
}

func (d *Draft) sign(t Talent, salary int64) {
	t.Salary = salary
	if t.Role == RoleDirector {
		d.Project.Director = &t
		return
	}
	d.Project.Cast = append(d.Project.Cast, t)
}

// ResolveBid settles a pending bidding war. Matching the bid signs the
// talent at the rival's price; declining loses them from the pool.
func (d *Draft) ResolveBid(accept bool) error {
	if d.Bid == nil {
		return ErrNoBiddingWar
	}
	war := d.Bid
	if accept {
		if war.Role == RoleActor && len(d.Project.Cast) >= MaxCast {
			return ErrRosterFull
		}
		d.sign(war.Talent, war.Bid)
	} else {
		d.dropFromPool(war.Talent.ID, war.Role)
	}
	d.Bid = nil
	return nil
}

func (d *Draft) dropFromPool(id string, role Role) {
	remove := func(ts []Talent) []Talent {
		out := ts[:0]
		for _, t := range ts {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	}
	switch role {
	case RoleDirector:
		d.Pool.Directors = remove(d.Pool.Directors)
	case RoleActor:
		d.Pool.Actors = remove(d.Pool.Actors)
	case RoleWriter:
		d.Pool.Writers = remove(d.Pool.Writers)
	}
}

// Dismiss releases a hired team member. Writers can only be dismissed in
// development, directors and actors only in casting.
func (d *Draft) Dismiss(id string) error {
	if err := d.pending(); err != nil {
		return err
	}
	p := &d.Project
	if p.Writer != nil && p.Writer.ID == id {
		if p.Stage != StageDevelopment {
			return ErrInvalidStage
		}
		p.Writer = nil
		return nil
	}
	if p.Stage != StageCasting {
		if d.isHired(id) {
			return ErrInvalidStage
		}
		return ErrTalentNotFound
	}
	if p.Director != nil && p.Director.ID == id {
		p.Director = nil
		return nil
	}
	for i, a := range p.Cast {
		if a.ID == id {
			p.Cast = append(p.Cast[:i], p.Cast[i+1:]...)
			return nil
		}
	}
	return ErrTalentNotFound
}

func (d *Draft) ToggleReturnee(id string) error {
	for i := range d.Returnees {
		if d.Returnees[i].Talent.ID == id {
			d.Returnees[i].Selected = !d.Returnees[i].Selected
			return nil
		}
	}
	return ErrTalentNotFound
}

// ConfirmReturnees signs the selected returnees. A returning director
// replaces any director already on the project; actors join while the cast
// has room.
func (d *Draft) ConfirmReturnees() error {
	if len(d.Returnees) == 0 {
		return ErrNoReturnees
	}
	for _, r := range d.Returnees {
		if !r.Selected {
			continue
		}
		t := r.Talent
		switch t.Role {
		case RoleDirector:
			d.Project.Director = &t
		case RoleActor:
			if len(d.Project.Cast) < MaxCast {
				d.Project.Cast = append(d.Project.Cast, t)
			}
		}
	}
	d.Returnees = nil
	return nil
}

func (d *Draft) ToCasting() error {
	if err := d.pending(); err != nil {
		return err
	}
	return EnterCasting(&d.Project)
}

func (d *Draft) ToBudgeting() error {
	if err := d.pending(); err != nil {
		return err
	}
	return EnterBudgeting(&d.Project)
}

// SetBudget sets one budget line. Only allowed while budgeting.
func (d *Draft) SetBudget(line BudgetLine, amount int64, merchLevel int) error {
	if d.Project.Stage != StageBudgeting {
		return ErrInvalidStage
	}
	switch line {
	case BudgetProduction:
		if amount < MinProductionBudget || amount > MaxProductionBudget {
			return ErrBudgetOutOfRange
		}
		d.Project.ProductionBudget = amount
	case BudgetMarketing:
		if amount < MinMarketingBudget || amount > MaxMarketingBudget {
			return ErrBudgetOutOfRange
		}
		d.Project.MarketingBudget = amount
	case BudgetMerchandise:
		if amount < 0 || amount > MaxMerchandiseBudget {
			return ErrBudgetOutOfRange
		}
		if amount > 0 && merchLevel <= 0 {
			return ErrMerchLocked
		}
		d.Project.MerchandiseBudget = amount
	default:
		return ErrUnknownBudget
	}
	return nil
}

func (d *Draft) SetChannel(ch Channel) error {
	if d.Project.Stage != StageBudgeting {
		return ErrInvalidStage
	}
	switch ch {
	case ChannelCinema, ChannelStreaming:
		d.Project.ReleaseChannel = ch
		return nil
	}
	return ErrUnknownChannel
}

func (d *Draft) clone() *Draft {
	if d == nil {
		return nil
	}
	out := &Draft{
		Project:   cloneProject(d.Project),
		Pool:      clonePool(d.Pool),
		Scripts:   append([]Script(nil), d.Scripts...),
		Returnees: append([]Returnee(nil), d.Returnees...),
	}
	if d.Bid != nil {
		b := *d.Bid
		out.Bid = &b
	}
	return out
}

func clonePool(p TalentPool) TalentPool {
	return TalentPool{
		Directors: append([]Talent(nil), p.Directors...),
		Actors:    append([]Talent(nil), p.Actors...),
		Writers:   append([]Talent(nil), p.Writers...),
	}
}
