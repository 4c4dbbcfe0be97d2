package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"bigboss/internal/game"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptYesNo(label string, defaultYes bool) (bool, error) {
	def := "n"
	if defaultYes {
		def = "y"
	}
	ans, err := promptChoice(label, []string{"y", "n"}, def)
	if err != nil {
		return false, err
	}
	return ans == "y", nil
}

// promptIndex reads a 1-based pick from a list of n items. A blank answer
// returns -1 when allowBlank is set.
func promptIndex(label string, n int, allowBlank bool) (int, error) {
	for {
		text, err := promptOptional(label)
		if err != nil {
			return 0, err
		}
		if text == "" && allowBlank {
			return -1, nil
		}
		v, err := strconv.Atoi(text)
		if err != nil || v < 1 || v > n {
			printWarn(fmt.Sprintf("Enter a number between 1 and %d.", n))
			continue
		}
		return v - 1, nil
	}
}

// promptMoney reads a dollar amount in [lo, hi]. Blank keeps def.
func promptMoney(label string, lo, hi, def int64) (int64, error) {
	for {
		text, err := promptOptional(fmt.Sprintf("%s [%s]", label, money(def)))
		if err != nil {
			return 0, err
		}
		if text == "" {
			return def, nil
		}
		v, err := parseMoney(text)
		if err != nil {
			printWarn("Enter a whole dollar amount, e.g. 5000000 or 5m.")
			continue
		}
		if v < lo || v > hi {
			printWarn(fmt.Sprintf("Amount must be between %s and %s.", money(lo), money(hi)))
			continue
		}
		return v, nil
	}
}

// parseMoney accepts plain digits with optional commas, $ and a k or m
// suffix.
func parseMoney(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "m"):
		mult, s = 1_000_000, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		mult, s = 1_000, strings.TrimSuffix(s, "k")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(f * mult), nil
}

func money(v int64) string {
	if v < 0 {
		return "-$" + humanize.Comma(-v)
	}
	return "$" + humanize.Comma(v)
}

func colorizeMoney(v int64) string {
	text := money(v)
	if v > 0 {
		text = "+" + text
	}
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func renderTable(header []string, rows [][]string) error {
	table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader(header))
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func trendLine(cat *game.Catalog, t game.Trend) string {
	if t.Polarity == game.PolarityNeutral {
		return "No trend"
	}
	name := t.GenreID
	if g, ok := cat.Genre(t.GenreID); ok {
		name = g.Name
	}
	return fmt.Sprintf("%s is %s (%d turns left)", name, t.Polarity, t.RemainingDuration)
}

func renderStudio(cat *game.Catalog, st game.StudioState) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(st.StudioName))
	fmt.Fprintf(&b, "\nTurn %d · %d", st.TurnNumber, game.ReleaseYear(st.TurnNumber))
	fmt.Fprintf(&b, "\nCash:          %s", money(st.Cash))
	fmt.Fprintf(&b, "\nLoan:          %s", money(st.LoanBalance))
	fmt.Fprintf(&b, "\nMarket share:  %.1f%%", st.MarketSharePercent)
	fmt.Fprintf(&b, "\nTrend:         %s", trendLine(cat, st.ActiveTrend))
	fmt.Fprintf(&b, "\nReleases:      %d · Franchises: %d", len(st.ReleaseHistory), len(st.Franchises))
	fmt.Println(panelStyle.Render(b.String()))
	if st.GameOver {
		printError("The studio is bankrupt. Start over with `boss new`.")
	}

	fmt.Println()
	accent.Println("Productions")
	if len(st.ActiveProjects) == 0 {
		printInfo("Nothing in production. Start one with `boss produce`.")
	} else if err := renderProjects(st.ActiveProjects); err != nil {
		return err
	}

	fmt.Println()
	accent.Println("Competitors")
	rows := make([][]string, 0, len(st.Competitors)+1)
	rows = append(rows, []string{st.StudioName + " (you)", fmt.Sprintf("%.1f%%", st.MarketSharePercent)})
	for _, c := range st.Competitors {
		rows = append(rows, []string{c.Name, fmt.Sprintf("%.1f%%", c.Share)})
	}
	return renderTable([]string{"Studio", "Share"}, rows)
}

func renderProjects(projects []game.Project) error {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		progress := fmt.Sprintf("%d/%d", p.StageProgress, game.StageLength(p.Stage))
		if p.Stage == game.StageFinished {
			progress = "ready"
		}
		rows = append(rows, []string{
			shortID(p.ID),
			truncate(p.Title, 28),
			p.Genre.Name,
			string(p.Stage),
			progress,
			strconv.Itoa(p.Quality),
			strconv.Itoa(p.Hype),
			money(p.TotalCost),
		})
	}
	return renderTable([]string{"ID", "Title", "Genre", "Stage", "Progress", "Quality", "Hype", "Cost"}, rows)
}

func renderReport(r game.Report) {
	accent.Printf("\n== TURN %d ==\n", r.Turn)
	if len(r.Lines) == 0 {
		printInfo("A quiet turn.")
		return
	}
	for _, line := range r.Lines {
		fmt.Println("  " + line)
	}
}

func renderRelease(res game.ReleaseResult) {
	rec := res.Record
	accent.Printf("\n== PREMIERE: %s ==\n", rec.Title)
	for _, line := range res.Report.Lines {
		fmt.Println("  " + line)
	}
	fmt.Printf("Box office:    %s\n", money(rec.BoxOffice))
	if rec.Merchandise > 0 {
		fmt.Printf("Merchandise:   %s\n", money(rec.Merchandise))
	}
	fmt.Printf("Total cost:    %s\n", money(rec.TotalCost))
	fmt.Printf("Profit:        %s\n", colorizeMoney(rec.Profit))
	fmt.Printf("Market share:  %+.2f%%\n", res.ShareDelta)
	if res.GameOver {
		printError("The studio is bankrupt. Game over.")
	}
}

func renderTalent(label string, talent []game.Talent) error {
	accent.Println(label)
	rows := make([][]string, 0, len(talent))
	for i, t := range talent {
		name := t.Name
		if t.IsMarketReal {
			name += " ★"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			name,
			strconv.Itoa(t.Skill),
			strconv.Itoa(t.Fame),
			t.Trait.Name,
			money(t.Salary),
		})
	}
	return renderTable([]string{"#", "Name", "Skill", "Fame", "Trait", "Salary"}, rows)
}

func renderHistory(history []game.ReleaseRecord) error {
	rows := make([][]string, 0, len(history))
	for _, r := range history {
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			truncate(r.Title, 28),
			r.Genre.Name,
			string(r.ReleaseChannel),
			strconv.Itoa(r.Quality),
			money(r.Revenue),
			colorizeMoney(r.Profit),
		})
	}
	return renderTable([]string{"Year", "Title", "Genre", "Channel", "Quality", "Revenue", "Profit"}, rows)
}
