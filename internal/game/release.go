package game

import (
	"github.com/dustin/go-humanize"
)

const FranchiseSeedValue = 10

// Release takes a finished project to market and folds the outcome back
// into the studio.
func Release(rng Rand, cat *Catalog, s *StudioState, id string) (ReleaseResult, error) {
	if s.GameOver {
		return ReleaseResult{}, ErrGameOver
	}
	idx := -1
	for i, p := range s.ActiveProjects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ReleaseResult{}, ErrProjectNotFound
	}
	p := s.ActiveProjects[idx]
	if p.Stage != StageFinished {
		return ReleaseResult{}, ErrProjectNotFinished
	}
	s.ActiveProjects = append(s.ActiveProjects[:idx:idx], s.ActiveProjects[idx+1:]...)

	r := Report{Turn: s.TurnNumber}
	r.add("%s wraps with quality %d%% and hype %d.", p.Title, p.Quality, p.Hype)

	var eventTitle string
	if ev, ok := GenerateRandomEvent(rng, cat); ok {
		p = ev.Apply(p)
		eventTitle = ev.Title
		r.add("%s: %s", ev.Title, ev.Text)
	}

	swing := 1.0
	if p.ReleaseChannel != ChannelStreaming {
		swing = BoxOfficeSwing(rng)
	}
	earn := ReleaseEarnings(p, s.ActiveTrend, swing)
	profit := earn.Total - p.TotalCost
	s.Cash += earn.Total

	delta := ShareDelta(p.Quality, profit)
	s.MarketSharePercent = ClampShare(SafeNum(s.MarketSharePercent) + delta)
	s.Competitors = RedistributeShare(rng, s.Competitors, delta)

	rec := ReleaseRecord{
		Project:      cloneProject(p),
		BoxOffice:    earn.BoxOffice,
		Merchandise:  earn.Merchandise,
		Revenue:      earn.Total,
		Profit:       profit,
		Year:         ReleaseYear(s.TurnNumber),
		ReleasedTurn: s.TurnNumber,
		Event:        eventTitle,
	}
	r.add("%s earned $%s (profit $%s).", p.Title, humanize.Comma(earn.Total), humanize.Comma(profit))

	var franchise string
	switch {
	case p.FranchiseID != "":
		if f := s.findFranchise(p.FranchiseID); f != nil {
			f.Movies = append(f.Movies, cloneRecord(rec))
			franchise = f.Name
			r.add("%s grows to %d films.", f.Name, len(f.Movies))
		}
	case !p.IsSequel && p.Quality > FranchiseQualityThreshold && profit > FranchiseProfitThreshold:
		// The founding film joins the franchise it started.
		rec.FranchiseID = newID()
		f := Franchise{
			ID:     rec.FranchiseID,
			Name:   p.Title + " Universe",
			Genre:  p.Genre,
			Movies: []ReleaseRecord{cloneRecord(rec)},
			Value:  FranchiseSeedValue,
		}
		s.Franchises = append(s.Franchises, f)
		franchise = f.Name
		r.add("A new franchise is born: %s.", f.Name)
	}

	s.ReleaseHistory = append(s.ReleaseHistory, rec)
	res := ReleaseResult{Record: cloneRecord(rec), ShareDelta: delta, Franchise: franchise}

	if s.Cash < BankruptcyFloor {
		s.GameOver = true
		r.add("The studio is bankrupt. Game over.")
	}
	res.GameOver = s.GameOver
	res.Report = r
	return res, nil
}
