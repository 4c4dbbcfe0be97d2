// Package sim plays the studio with a fixed greedy policy. It drives the
// same service the CLI and API use.
package sim

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"bigboss/internal/game"
)

// ActorsPerFilm is how many actors the policy hires.
const ActorsPerFilm = 2

type Summary struct {
	Turns       int     `json:"turns"`
	FinalTurn   int     `json:"finalTurn"`
	Launched    int     `json:"launched"`
	Released    int     `json:"released"`
	Cash        int64   `json:"cash"`
	TotalProfit int64   `json:"totalProfit"`
	MarketShare float64 `json:"marketShare"`
	Franchises  int     `json:"franchises"`
	GameOver    bool    `json:"gameOver"`
}

type Runner struct {
	svc *game.Service
	log *slog.Logger
}

func New(svc *game.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{svc: svc, log: logger}
}

// Run plays up to turns turns, stopping early at game over or when ctx is
// done.
func (r *Runner) Run(ctx context.Context, turns int) (Summary, error) {
	var sum Summary
	for i := 0; i < turns; i++ {
		if err := ctx.Err(); err != nil {
			return r.finish(sum), err
		}
		if r.svc.State().GameOver {
			break
		}

		released, err := r.releaseFinished(ctx)
		sum.Released += released
		if err != nil {
			return r.finish(sum), err
		}
		if r.svc.State().GameOver {
			break
		}

		launched, err := r.produce(ctx)
		if err != nil {
			return r.finish(sum), err
		}
		if launched {
			sum.Launched++
		}

		rep, err := r.svc.AdvanceTurn(ctx)
		if err != nil {
			return r.finish(sum), err
		}
		r.logReport(rep)
		sum.Turns++
	}
	return r.finish(sum), nil
}

func (r *Runner) finish(sum Summary) Summary {
	st := r.svc.State()
	sum.Cash = st.Cash
	sum.MarketShare = st.MarketSharePercent
	sum.Franchises = len(st.Franchises)
	sum.GameOver = st.GameOver
	sum.FinalTurn = st.TurnNumber
	for _, rec := range st.ReleaseHistory {
		sum.TotalProfit += rec.Profit
	}
	return sum
}

func (r *Runner) logReport(rep game.Report) {
	for _, line := range rep.Lines {
		r.log.Info("report", "turn", rep.Turn, "line", line)
	}
}

func (r *Runner) releaseFinished(ctx context.Context) (int, error) {
	st := r.svc.State()
	n := 0
	for _, p := range st.FinishedProjects() {
		res, err := r.svc.ReleaseFinishedProject(ctx, p.ID)
		if err != nil {
			return n, err
		}
		n++
		r.logReport(res.Report)
		if res.GameOver {
			break
		}
	}
	return n, nil
}

// produce starts an original, buys the best affordable script, hires the
// cheapest director and actors, and launches at default budgets if the
// studio can pay. Anything it can't afford is shelved.
func (r *Runner) produce(ctx context.Context) (bool, error) {
	d, err := r.svc.StartProject(game.ProjectContext{})
	if err != nil {
		return false, err
	}
	ok, err := r.staff(d)
	if err != nil || !ok {
		_ = r.svc.CancelProject()
		return false, err
	}
	p, err := r.svc.LaunchProduction(ctx)
	if errors.Is(err, game.ErrInsufficientFunds) {
		_ = r.svc.CancelProject()
		r.log.Debug("project shelved", "reason", "cost")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	r.log.Info("launched", "title", p.Title, "genre", p.Genre.ID, "quality", p.Quality, "hype", p.Hype, "cost", p.TotalCost)
	return true, nil
}

// staff walks the draft to budgeting. ok is false when the pool ran dry.
func (r *Runner) staff(d game.Draft) (bool, error) {
	cash := r.svc.State().Cash
	best, found := bestScript(d.Scripts, cash)
	if !found {
		return false, nil
	}
	if _, err := r.svc.BuyScript(best.ID); err != nil {
		return false, err
	}
	if _, err := r.svc.AdvanceToCasting(); err != nil {
		return false, err
	}

	hired, err := r.hireCheapest(d.Pool.Directors, 1)
	if err != nil || hired < 1 {
		return false, err
	}
	hired, err = r.hireCheapest(d.Pool.Actors, ActorsPerFilm)
	if err != nil || hired < 1 {
		return false, err
	}
	if _, err := r.svc.AdvanceToBudgeting(); err != nil {
		return false, err
	}
	return true, nil
}

func bestScript(scripts []game.Script, cash int64) (game.Script, bool) {
	var best game.Script
	found := false
	for _, s := range scripts {
		if s.Cost > cash {
			continue
		}
		if !found || s.QualityBonus > best.QualityBonus || (s.QualityBonus == best.QualityBonus && s.Cost < best.Cost) {
			best, found = s, true
		}
	}
	return best, found
}

// hireCheapest signs up to want people from pool in salary order. Bidding
// wars are always declined.
func (r *Runner) hireCheapest(pool []game.Talent, want int) (int, error) {
	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(a, b game.Talent) int {
		switch {
		case a.Salary < b.Salary:
			return -1
		case a.Salary > b.Salary:
			return 1
		}
		return 0
	})
	hired := 0
	for _, t := range sorted {
		if hired == want {
			break
		}
		res, err := r.svc.HireTalent(t.ID)
		if errors.Is(err, game.ErrAlreadyHired) || errors.Is(err, game.ErrRosterFull) {
			continue
		}
		if err != nil {
			return hired, err
		}
		if res.BiddingWar != nil {
			if _, err := r.svc.ResolveBiddingWar(false); err != nil {
				return hired, err
			}
			r.log.Debug("bidding war lost", "talent", t.Name, "rival", res.BiddingWar.Competitor)
			continue
		}
		hired++
	}
	return hired, nil
}
