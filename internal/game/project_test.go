package game

import (
	"errors"
	"testing"
)

func readyProject() Project {
	return Project{
		Title:            "Night Shift",
		Genre:            Genre{ID: "drama", AudienceMultiplier: 0.9},
		Stage:            StageBudgeting,
		Director:         &Talent{ID: "d", Role: RoleDirector, Skill: 60, Fame: 40, Salary: 500_000},
		Cast:             []Talent{{ID: "a", Role: RoleActor, Skill: 50, Fame: 30, Salary: 250_000}},
		ProductionBudget: DefaultProductionBudget,
		MarketingBudget:  DefaultMarketingBudget,
		ReleaseChannel:   ChannelCinema,
	}
}

func TestEnterCastingGates(t *testing.T) {
	p := Project{Stage: StageDevelopment}
	if err := EnterCasting(&p); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("got %v want ErrTitleRequired", err)
	}
	p.Title = "Night Shift"
	if err := EnterCasting(&p); !errors.Is(err, ErrGenreRequired) {
		t.Fatalf("got %v want ErrGenreRequired", err)
	}
	p.Genre = Genre{ID: "drama"}
	if err := EnterCasting(&p); !errors.Is(err, ErrScriptRequired) {
		t.Fatalf("got %v want ErrScriptRequired", err)
	}
	p.ScriptQualityBonus = 10
	p.StageProgress = 3
	if err := EnterCasting(&p); err != nil {
		t.Fatalf("enter casting: %v", err)
	}
	if p.Stage != StageCasting || p.StageProgress != 0 {
		t.Fatalf("stage=%s progress=%d", p.Stage, p.StageProgress)
	}
	if err := EnterCasting(&p); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("second transition: got %v", err)
	}
}

func TestEnterBudgetingGates(t *testing.T) {
	p := Project{Stage: StageCasting}
	if err := EnterBudgeting(&p); !errors.Is(err, ErrDirectorRequired) {
		t.Fatalf("got %v want ErrDirectorRequired", err)
	}
	p.Director = &Talent{ID: "d"}
	if err := EnterBudgeting(&p); !errors.Is(err, ErrCastRequired) {
		t.Fatalf("got %v want ErrCastRequired", err)
	}
	p.Cast = []Talent{{ID: "a"}}
	if err := EnterBudgeting(&p); err != nil || p.Stage != StageBudgeting {
		t.Fatalf("enter budgeting: %v stage=%s", err, p.Stage)
	}
}

func TestLaunch(t *testing.T) {
	cat := DefaultCatalog()
	p := readyProject()
	cost := LaunchCost(p)

	if _, err := Launch(&p, cost-1, nil, cat); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got %v want ErrInsufficientFunds", err)
	}
	if p.Stage != StageBudgeting || p.Quality != 0 {
		t.Fatalf("failed launch changed the project: %+v", p)
	}

	charged, err := Launch(&p, cost, map[string]int{UpgradePR: 1}, cat)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if charged != cost || p.TotalCost != cost {
		t.Fatalf("charged=%d total=%d want %d", charged, p.TotalCost, cost)
	}
	if p.Stage != StagePreProduction || p.StageProgress != 0 {
		t.Fatalf("stage=%s progress=%d", p.Stage, p.StageProgress)
	}
	// 50 + 6 + 10 + 2.5
	if p.Quality != 68 {
		t.Fatalf("quality=%d want 68", p.Quality)
	}
	// 10 + 4 + 4 + 3 + 5
	if p.Hype != 26 {
		t.Fatalf("hype=%d want 26", p.Hype)
	}
	if p.Quality < MinQuality || p.Quality > MaxQuality || p.Hype < MinHype || p.Hype > MaxHype {
		t.Fatalf("scores out of range")
	}
}

func TestTickStageSequence(t *testing.T) {
	p := readyProject()
	p.Stage = StagePreProduction
	rng := fixed(0.99)
	var r Report

	want := []Stage{
		StagePreProduction, StageProduction,
		StageProduction, StageProduction, StageProduction, StagePostProduction,
		StagePostProduction, StagePostProduction, StageFinished,
	}
	for i, stage := range want {
		Tick(rng, &p, &r)
		if p.Stage != stage {
			t.Fatalf("tick %d: stage=%s want %s", i+1, p.Stage, stage)
		}
	}
	if p.StageProgress != 0 {
		t.Fatalf("finished progress=%d want 0", p.StageProgress)
	}
	if len(r.Lines) != 3 {
		t.Fatalf("report lines=%v", r.Lines)
	}

	Tick(rng, &p, &r)
	if p.Stage != StageFinished || p.StageProgress != 0 || len(r.Lines) != 3 {
		t.Fatalf("finished project was advanced")
	}
}

func TestTickConflict(t *testing.T) {
	diva := Trait{ID: "diva", ConflictScore: 5}
	humble := Trait{ID: "humble", ConflictScore: -5}

	tests := []struct {
		name  string
		trait Trait
		draws []float64
		want  int
	}{
		{name: "no check", trait: diva, draws: []float64{0.5}, want: 50},
		{name: "friction", trait: diva, draws: []float64{0.1, 0.2}, want: 45},
		{name: "harmony", trait: humble, draws: []float64{0.1, 0.0}, want: 52},
	}
	for _, tc := range tests {
		p := Project{Stage: StageProduction, Quality: 50, Director: &Talent{Trait: tc.trait}}
		var r Report
		Tick(&scriptedRand{floats: tc.draws}, &p, &r)
		if p.Quality != tc.want {
			t.Fatalf("%s: quality=%d want %d", tc.name, p.Quality, tc.want)
		}
	}
}

func TestTickDoesNotReclampQuality(t *testing.T) {
	p := Project{Stage: StageProduction, Quality: MinQuality, Director: &Talent{Trait: Trait{ConflictScore: 5}}}
	var r Report
	Tick(&scriptedRand{floats: []float64{0.1, 0.0}}, &p, &r)
	if p.Quality != MinQuality-ConflictPenalty {
		t.Fatalf("quality=%d, post-launch drift should not be clamped", p.Quality)
	}
}

func TestSequelTitle(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "Jaws", n: 2, want: "Jaws 2"},
		{in: "Space Cops 2", n: 3, want: "Space Cops 3"},
		{in: "Blade Runner 2049", n: 2, want: "Blade Runner 2"},
	}
	for _, tc := range tests {
		if got := SequelTitle(tc.in, tc.n); got != tc.want {
			t.Fatalf("SequelTitle(%q,%d)=%q want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
