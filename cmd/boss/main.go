package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bigboss/internal/app"
	"bigboss/internal/config"
	"bigboss/internal/game"
)

func main() {
	root := &cobra.Command{
		Use:          "boss",
		Short:        "Run a film studio from the terminal",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNewCmd(),
		newStatusCmd(),
		newTurnCmd(),
		newReportCmd(),
		newReleaseCmd(),
		newProduceCmd(),
		newUpgradesCmd(),
		newRightsCmd(),
		newLoanCmd(),
		newFranchisesCmd(),
		newHistoryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type session struct {
	cfg config.Config
	svc *game.Service
}

// withSession opens the configured save for one command. The CLI logs at
// warn unless debug is asked for, so info lines don't clutter the screen.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s session) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.SlogLevel()
	if level == slog.LevelInfo {
		level = slog.LevelWarn
	}
	ctx := cmd.Context()
	svc, closeFn, err := app.Open(ctx, cfg, app.Logger(os.Stderr, level, false))
	defer closeFn()
	if err != nil {
		return err
	}
	return fn(ctx, session{cfg: cfg, svc: svc})
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [studio name]",
		Short: "Start a new game, replacing the current save",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				name := strings.TrimSpace(strings.Join(args, " "))
				if name == "" {
					name = s.cfg.StudioName
				}
				st, err := s.svc.NewGame(ctx, name)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s opens its doors with %s.", st.StudioName, money(st.Cash)))
				return renderStudio(s.svc.Catalog(), st)
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the studio dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				return renderStudio(s.svc.Catalog(), s.svc.State())
			})
		},
	}
}

func newTurnCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Advance time and print the turn report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				for i := 0; i < max(count, 1); i++ {
					r, err := s.svc.AdvanceTurn(ctx)
					if err != nil {
						return err
					}
					renderReport(r)
				}
				st := s.svc.State()
				for _, p := range st.FinishedProjects() {
					printSuccess(fmt.Sprintf("%s is ready. Release it with `boss release %s`.", p.Title, shortID(p.ID)))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of turns to advance")
	return cmd
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Summarize the studio's track record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				st := s.svc.State()
				if r := s.svc.LastReport(); len(r.Lines) > 0 {
					renderReport(r)
				}
				accent.Printf("\n== %s REPORT (%d) ==\n", strings.ToUpper(st.StudioName), game.ReleaseYear(st.TurnNumber))
				if len(st.ReleaseHistory) == 0 {
					printInfo("No releases yet.")
					return nil
				}
				var revenue, profit int64
				best := st.ReleaseHistory[0]
				for _, r := range st.ReleaseHistory {
					revenue += r.Revenue
					profit += r.Profit
					if r.Profit > best.Profit {
						best = r
					}
				}
				last := st.ReleaseHistory[len(st.ReleaseHistory)-1]
				fmt.Printf("Releases:       %d\n", len(st.ReleaseHistory))
				fmt.Printf("Total revenue:  %s\n", money(revenue))
				fmt.Printf("Total profit:   %s\n", colorizeMoney(profit))
				fmt.Printf("Biggest hit:    %s (%s)\n", best.Title, colorizeMoney(best.Profit))
				fmt.Printf("Latest:         %s, %d, %s\n", last.Title, last.Year, colorizeMoney(last.Profit))
				if last.Event != "" {
					fmt.Printf("Latest event:   %s\n", last.Event)
				}
				fmt.Printf("Market trend:   %s\n", trendLine(s.svc.Catalog(), st.ActiveTrend))
				return nil
			})
		},
	}
}

// findProject resolves a full id or the short prefix shown in tables.
func findProject(projects []game.Project, ref string) (game.Project, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return game.Project{}, false
	}
	for _, p := range projects {
		if p.ID == ref || strings.HasPrefix(p.ID, ref) {
			return p, true
		}
	}
	return game.Project{}, false
}

func newReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release [project id]",
		Short: "Release finished projects (all of them when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				st := s.svc.State()
				finished := st.FinishedProjects()
				if len(args) == 1 {
					p, ok := findProject(st.ActiveProjects, args[0])
					if !ok {
						return game.ErrProjectNotFound
					}
					finished = []game.Project{p}
				}
				if len(finished) == 0 {
					printInfo("Nothing is ready for release.")
					return nil
				}
				for _, p := range finished {
					res, err := s.svc.ReleaseFinishedProject(ctx, p.ID)
					if err != nil {
						return err
					}
					renderRelease(res)
					if res.GameOver {
						break
					}
				}
				return nil
			})
		},
	}
}

func newUpgradesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrades",
		Short: "List studio upgrades",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				return renderUpgrades(s.svc.Upgrades())
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "buy <upgrade id>",
		Short: "Buy the next level of an upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				st, err := s.svc.BuyUpgradeLevel(ctx, strings.ToLower(args[0]))
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Upgrade bought. Cash left: %s", money(st.Cash)))
				return renderUpgrades(s.svc.Upgrades())
			})
		},
	})
	return cmd
}

func renderUpgrades(views []game.UpgradeView) error {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		next := money(v.NextPrice)
		if v.Maxed {
			next = "maxed"
		}
		rows = append(rows, []string{
			v.ID,
			v.Name,
			fmt.Sprintf("%d/%d", v.Level, v.MaxLevel),
			next,
			v.Description,
		})
	}
	return renderTable([]string{"ID", "Upgrade", "Level", "Next", "Effect"}, rows)
}

func newRightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rights",
		Short: "List remake rights on the market",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				return renderRights(s.svc.Catalog(), s.svc.Rights())
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "buy <rights id>",
		Short: "Buy remake rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				st, err := s.svc.BuyRights(ctx, strings.ToLower(args[0]))
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Rights acquired. Start the remake with `boss produce --remake %s`. Cash left: %s", args[0], money(st.Cash)))
				return nil
			})
		},
	})
	return cmd
}

func renderRights(cat *game.Catalog, views []game.RightsView) error {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		genre := v.GenreID
		if g, ok := cat.Genre(v.GenreID); ok {
			genre = g.Name
		}
		owned := "no"
		if v.Owned {
			owned = "yes"
		}
		rows = append(rows, []string{v.ID, v.Title, genre, money(v.Cost), "+" + strconv.Itoa(v.Hype), owned})
	}
	return renderTable([]string{"ID", "Title", "Genre", "Price", "Hype", "Owned"}, rows)
}

func newLoanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Borrow or repay in steps of " + money(game.LoanStep),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "take",
			Short: "Borrow " + money(game.LoanStep),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, func(ctx context.Context, s session) error {
					st, err := s.svc.TakeLoan(ctx)
					if err != nil {
						return err
					}
					printSuccess(fmt.Sprintf("Loan taken. Cash %s, owed %s.", money(st.Cash), money(st.LoanBalance)))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "repay",
			Short: "Repay up to " + money(game.LoanStep),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSession(cmd, func(ctx context.Context, s session) error {
					st, err := s.svc.RepayLoan(ctx)
					if errors.Is(err, game.ErrNoLoan) {
						printInfo("The studio owes nothing.")
						return nil
					}
					if err != nil {
						return err
					}
					printSuccess(fmt.Sprintf("Repaid. Cash %s, owed %s.", money(st.Cash), money(st.LoanBalance)))
					return nil
				})
			},
		},
	)
	return cmd
}

func newFranchisesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "franchises",
		Short: "List the studio's franchises",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				st := s.svc.State()
				if len(st.Franchises) == 0 {
					printInfo("No franchises yet. A hit original with quality over 75 and $10M profit starts one.")
					return nil
				}
				rows := make([][]string, 0, len(st.Franchises))
				for _, f := range st.Franchises {
					var profit int64
					for _, m := range f.Movies {
						profit += m.Profit
					}
					rows = append(rows, []string{shortID(f.ID), f.Name, f.Genre.Name, strconv.Itoa(len(f.Movies)), colorizeMoney(profit)})
				}
				return renderTable([]string{"ID", "Franchise", "Genre", "Films", "Profit"}, rows)
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List every release",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s session) error {
				st := s.svc.State()
				if len(st.ReleaseHistory) == 0 {
					printInfo("No releases yet.")
					return nil
				}
				return renderHistory(st.ReleaseHistory)
			})
		},
	}
}
