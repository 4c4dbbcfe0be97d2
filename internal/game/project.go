package game

import (
	"regexp"
	"strconv"
)

const (
	PreProductionTicks  = 2
	ProductionTicks     = 4
	PostProductionTicks = 3

	ConflictCheckChance = 0.2
	ConflictRollRange   = 20
	ConflictPenalty     = 5
	HarmonyBonus        = 2
)

func (p *Project) setStage(s Stage) {
	p.Stage = s
	p.StageProgress = 0
}

// EnterCasting moves a project from development to casting.
func EnterCasting(p *Project) error {
	if p.Stage != StageDevelopment {
		return ErrInvalidStage
	}
	if p.Title == "" {
		return ErrTitleRequired
	}
	if p.Genre.ID == "" {
		return ErrGenreRequired
	}
	if p.Writer == nil && p.ScriptQualityBonus <= 0 {
		return ErrScriptRequired
	}
	p.setStage(StageCasting)
	return nil
}

// EnterBudgeting moves a project from casting to budgeting.
func EnterBudgeting(p *Project) error {
	if p.Stage != StageCasting {
		return ErrInvalidStage
	}
	if p.Director == nil {
		return ErrDirectorRequired
	}
	if len(p.Cast) == 0 {
		return ErrCastRequired
	}
	p.setStage(StageBudgeting)
	return nil
}

// Launch freezes the project's cost, scores it once and starts the automatic
// stage sequence. The caller charges the returned cost.
func Launch(p *Project, cash int64, levels map[string]int, cat *Catalog) (int64, error) {
	if p.Stage != StageBudgeting {
		return 0, ErrInvalidStage
	}
	cost := LaunchCost(*p)
	if cost > cash {
		return 0, ErrInsufficientFunds
	}
	p.Quality = ComputeQuality(*p, levels[UpgradeVFX], cat)
	p.Hype = ComputeHype(*p, levels[UpgradePR])
	p.TotalCost = cost
	p.setStage(StagePreProduction)
	return cost, nil
}

func teamConflict(p Project) float64 {
	sum := 0.0
	for _, m := range p.Team() {
		sum += m.Trait.ConflictScore
	}
	return sum
}

// Tick advances a launched project by one turn. Conflict adjustments are not
// re-clamped; quality is only clamped at launch.
func Tick(rng Rand, p *Project, r *Report) {
	if !p.Stage.Launched() || p.Stage == StageFinished {
		return
	}
	p.StageProgress++

	if rng.Float64() < ConflictCheckChance {
		if rng.Float64()*ConflictRollRange < teamConflict(*p) {
			p.Quality -= ConflictPenalty
			r.add("%s: friction on set cost the film quality.", p.Title)
		} else {
			p.Quality += HarmonyBonus
			r.add("%s: a good month of progress.", p.Title)
		}
	}

	switch {
	case p.Stage == StagePreProduction && p.StageProgress >= PreProductionTicks:
		p.setStage(StageProduction)
		r.add("%s has started shooting.", p.Title)
	case p.Stage == StageProduction && p.StageProgress >= ProductionTicks:
		p.setStage(StagePostProduction)
		r.add("%s has moved into the editing room.", p.Title)
	case p.Stage == StagePostProduction && p.StageProgress >= PostProductionTicks:
		p.setStage(StageFinished)
		r.add("%s is ready for its premiere!", p.Title)
	}
}

// StageLength is the number of ticks a launched stage lasts, 0 for stages
// without a timer.
func StageLength(s Stage) int {
	switch s {
	case StagePreProduction:
		return PreProductionTicks
	case StageProduction:
		return ProductionTicks
	case StagePostProduction:
		return PostProductionTicks
	}
	return 0
}

var trailingNumber = regexp.MustCompile(`\s\d+$`)

// SequelTitle numbers a sequel off its source's title.
func SequelTitle(source string, n int) string {
	return trailingNumber.ReplaceAllString(source, "") + " " + strconv.Itoa(n)
}
