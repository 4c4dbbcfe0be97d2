package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bigboss/internal/game"
)

func newProduceCmd() *cobra.Command {
	var franchise, sequel, remake string
	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Develop, cast and launch a new film",
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, v := range []string{franchise, sequel, remake} {
				if strings.TrimSpace(v) != "" {
					set++
				}
			}
			if set > 1 {
				return errors.New("pick at most one of --franchise, --sequel and --remake")
			}
			return withSession(cmd, func(ctx context.Context, s session) error {
				pc := resolveContext(s.svc.State(), franchise, sequel, remake)
				w := &wizard{svc: s.svc, cat: s.svc.Catalog()}
				return w.run(ctx, pc)
			})
		},
	}
	cmd.Flags().StringVar(&franchise, "franchise", "", "continue a franchise (id or prefix)")
	cmd.Flags().StringVar(&sequel, "sequel", "", "make a sequel to a past release (id or prefix)")
	cmd.Flags().StringVar(&remake, "remake", "", "remake a film whose rights you own")
	return cmd
}

// resolveContext expands the short ids printed in tables. Unknown refs are
// passed through so the engine reports them.
func resolveContext(st game.StudioState, franchise, sequel, remake string) game.ProjectContext {
	franchise, sequel = strings.TrimSpace(franchise), strings.TrimSpace(sequel)
	pc := game.ProjectContext{RightsID: strings.ToLower(strings.TrimSpace(remake))}
	if franchise != "" {
		pc.FranchiseID = franchise
		for _, f := range st.Franchises {
			if strings.HasPrefix(f.ID, franchise) {
				pc.FranchiseID = f.ID
				break
			}
		}
	}
	if sequel != "" {
		pc.SequelOf = sequel
		for _, r := range st.ReleaseHistory {
			if strings.HasPrefix(r.ID, sequel) {
				pc.SequelOf = r.ID
				break
			}
		}
	}
	return pc
}

type wizard struct {
	svc *game.Service
	cat *game.Catalog
}

func (w *wizard) run(ctx context.Context, pc game.ProjectContext) error {
	d, err := w.svc.StartProject(pc)
	if err != nil {
		return err
	}
	launched := false
	defer func() {
		if !launched {
			_ = w.svc.CancelProject()
			printWarn("Project shelved.")
		}
	}()

	accent.Printf("\n== NEW PROJECT ==\n")
	if d.Project.Title != "" {
		fmt.Printf("Working title: %s (%s)\n", d.Project.Title, d.Project.Genre.Name)
	}
	if len(d.Returnees) > 0 {
		if d, err = w.returnees(d); err != nil {
			return err
		}
	}
	if d.Project.Stage == game.StageDevelopment {
		if d, err = w.develop(); err != nil {
			return err
		}
	}
	if d, err = w.cast(d); err != nil {
		return err
	}
	if d, err = w.budget(d); err != nil {
		return err
	}

	cost := game.LaunchCost(d.Project)
	st := w.svc.State()
	fmt.Printf("\nLaunch cost: %s (cash %s)\n", money(cost), money(st.Cash))
	ok, err := promptYesNo("Greenlight production?", cost <= st.Cash)
	if err != nil || !ok {
		return err
	}
	p, err := w.svc.LaunchProduction(ctx)
	if err != nil {
		return err
	}
	launched = true
	printSuccess(fmt.Sprintf("%s enters pre-production. Quality %d%%, hype %d.", p.Title, p.Quality, p.Hype))
	return nil
}

func (w *wizard) returnees(d game.Draft) (game.Draft, error) {
	accent.Println("\nReturning talent")
	for _, r := range d.Returnees {
		keep, err := promptYesNo(fmt.Sprintf("Bring back %s (%s, %s)?", r.Talent.Name, r.Talent.Role, money(r.Talent.Salary)), r.Selected)
		if err != nil {
			return d, err
		}
		if keep != r.Selected {
			if _, err := w.svc.ToggleReturnee(r.Talent.ID); err != nil {
				return d, err
			}
		}
	}
	return w.svc.ConfirmReturnees()
}

func (w *wizard) develop() (game.Draft, error) {
	scripts, err := w.svc.ScriptsForSale()
	if err != nil {
		return game.Draft{}, err
	}
	accent.Println("\nScripts for sale")
	rows := make([][]string, 0, len(scripts))
	for i, s := range scripts {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.Title, s.Genre.Name, "+" + strconv.Itoa(s.QualityBonus), money(s.Cost)})
	}
	if err := renderTable([]string{"#", "Title", "Genre", "Bonus", "Price"}, rows); err != nil {
		return game.Draft{}, err
	}
	idx, err := promptIndex("Buy a script # (blank to develop your own)", len(scripts), true)
	if err != nil {
		return game.Draft{}, err
	}
	if idx >= 0 {
		if _, err := w.svc.BuyScript(scripts[idx].ID); err != nil {
			return game.Draft{}, err
		}
	} else if err := w.originalScript(); err != nil {
		return game.Draft{}, err
	}
	return w.svc.AdvanceToCasting()
}

func (w *wizard) originalScript() error {
	for {
		title, err := promptRequired("Title")
		if err != nil {
			return err
		}
		if _, err := w.svc.SetTitle(title); err != nil {
			printWarn(err.Error())
			continue
		}
		break
	}

	names := make([]string, 0, len(w.cat.Genres))
	for i, g := range w.cat.Genres {
		names = append(names, fmt.Sprintf("%d) %s", i+1, g.Name))
	}
	fmt.Println(strings.Join(names, "  "))
	gi, err := promptIndex("Genre #", len(w.cat.Genres), false)
	if err != nil {
		return err
	}
	if _, err := w.svc.SetGenre(w.cat.Genres[gi].ID); err != nil {
		return err
	}

	pool, err := w.svc.TalentPool()
	if err != nil {
		return err
	}
	for {
		if err := renderTalent("\nWriters", pool.Writers); err != nil {
			return err
		}
		i, err := promptIndex("Hire writer #", len(pool.Writers), false)
		if err != nil {
			return err
		}
		hired, err := w.hire(pool.Writers[i])
		if err != nil {
			printWarn(err.Error())
			continue
		}
		if hired {
			return nil
		}
	}
}

// hire signs t, settling any bidding war on the spot. It reports whether
// t joined the project.
func (w *wizard) hire(t game.Talent) (bool, error) {
	res, err := w.svc.HireTalent(t.ID)
	if err != nil {
		return false, err
	}
	if res.BiddingWar == nil {
		printSuccess(fmt.Sprintf("%s signed for %s.", t.Name, money(t.Salary)))
		return true, nil
	}
	war := res.BiddingWar
	warn.Printf("Bidding war! %s offers %s %s (asking %s).\n", war.Competitor, war.Talent.Name, money(war.Bid), money(war.OriginalSalary))
	accept, err := promptYesNo("Match the offer?", false)
	if err != nil {
		return false, err
	}
	if _, err := w.svc.ResolveBiddingWar(accept); err != nil {
		return false, err
	}
	if accept {
		printSuccess(fmt.Sprintf("%s signed for %s.", war.Talent.Name, money(war.Bid)))
	} else {
		printWarn(fmt.Sprintf("%s walks to %s.", war.Talent.Name, war.Competitor))
	}
	return accept, nil
}

func available(pool []game.Talent, p game.Project) []game.Talent {
	hired := map[string]bool{}
	for _, t := range p.Team() {
		hired[t.ID] = true
	}
	out := make([]game.Talent, 0, len(pool))
	for _, t := range pool {
		if !hired[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func (w *wizard) cast(d game.Draft) (game.Draft, error) {
	for d.Project.Director == nil {
		pool, err := w.svc.TalentPool()
		if err != nil {
			return d, err
		}
		directors := available(pool.Directors, d.Project)
		if len(directors) == 0 {
			return d, game.ErrDirectorRequired
		}
		if err := renderTalent("\nDirectors", directors); err != nil {
			return d, err
		}
		i, err := promptIndex("Hire director #", len(directors), false)
		if err != nil {
			return d, err
		}
		if _, err := w.hire(directors[i]); err != nil {
			printWarn(err.Error())
		}
		d, _ = w.svc.Draft()
	}

	for len(d.Project.Cast) < game.MaxCast {
		pool, err := w.svc.TalentPool()
		if err != nil {
			return d, err
		}
		actors := available(pool.Actors, d.Project)
		if len(actors) == 0 {
			break
		}
		if err := renderTalent(fmt.Sprintf("\nActors (%d/%d cast)", len(d.Project.Cast), game.MaxCast), actors); err != nil {
			return d, err
		}
		i, err := promptIndex("Hire actor # (blank when done)", len(actors), len(d.Project.Cast) > 0)
		if err != nil {
			return d, err
		}
		if i < 0 {
			break
		}
		if _, err := w.hire(actors[i]); err != nil {
			printWarn(err.Error())
		}
		d, _ = w.svc.Draft()
	}
	return w.svc.AdvanceToBudgeting()
}

func (w *wizard) budget(d game.Draft) (game.Draft, error) {
	accent.Println("\nBudget")
	p := d.Project
	prod, err := promptMoney("Production budget", game.MinProductionBudget, game.MaxProductionBudget, p.ProductionBudget)
	if err != nil {
		return d, err
	}
	if err := w.setBudget(&d, game.BudgetProduction, prod); err != nil {
		return d, err
	}
	mkt, err := promptMoney("Marketing budget", game.MinMarketingBudget, game.MaxMarketingBudget, p.MarketingBudget)
	if err != nil {
		return d, err
	}
	if err := w.setBudget(&d, game.BudgetMarketing, mkt); err != nil {
		return d, err
	}
	if w.svc.State().UpgradeLevels[game.UpgradeMerch] > 0 {
		merch, err := promptMoney("Merchandise budget", 0, game.MaxMerchandiseBudget, p.MerchandiseBudget)
		if err != nil {
			return d, err
		}
		if err := w.setBudget(&d, game.BudgetMerchandise, merch); err != nil {
			return d, err
		}
	}
	ch, err := promptChoice("Release channel", []string{string(game.ChannelCinema), string(game.ChannelStreaming)}, string(game.ChannelCinema))
	if err != nil {
		return d, err
	}
	next, err := w.svc.SetReleaseChannel(game.Channel(ch))
	if err != nil {
		return d, err
	}
	return next, nil
}

// setBudget updates d only when the engine accepts the amount.
func (w *wizard) setBudget(d *game.Draft, line game.BudgetLine, amount int64) error {
	next, err := w.svc.SetBudget(line, amount)
	if err != nil {
		return err
	}
	*d = next
	return nil
}
