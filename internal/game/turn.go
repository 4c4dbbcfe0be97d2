package game

import (
	"math"

	"github.com/dustin/go-humanize"
)

const (
	TrendStartChance  = 0.3
	TrendColdChance   = 0.3
	TrendMinDuration  = 3
	TrendDurationSpan = 6
)

// AdvanceTurn runs one scheduler tick against s: trend, project stages,
// loan interest, then the turn counter. Saving is left to the caller.
func AdvanceTurn(rng Rand, cat *Catalog, s *StudioState) Report {
	r := Report{}

	evolveTrend(rng, cat, &s.ActiveTrend, &r)

	for i := range s.ActiveProjects {
		Tick(rng, &s.ActiveProjects[i], &r)
	}

	if s.LoanBalance > 0 {
		interest := int64(math.Floor(float64(s.LoanBalance) * LoanInterestRate))
		s.Cash -= interest
		r.add("Paid $%s in loan interest.", humanize.Comma(interest))
	}

	s.TurnNumber++
	r.Turn = s.TurnNumber
	return r
}

func evolveTrend(rng Rand, cat *Catalog, t *Trend, r *Report) {
	if t.RemainingDuration > 0 {
		t.RemainingDuration--
		if t.RemainingDuration == 0 {
			r.add("The %s trend is over.", genreName(cat, t.GenreID))
			*t = NeutralTrend()
		}
		return
	}
	if len(cat.Genres) == 0 || rng.Float64() >= TrendStartChance {
		return
	}
	g := pick(rng, cat.Genres)
	next := Trend{GenreID: g.ID, Polarity: PolarityHot}
	if rng.Float64() <= TrendColdChance {
		next.Polarity = PolarityCold
	}
	next.RemainingDuration = TrendMinDuration + rng.Intn(TrendDurationSpan)
	*t = next
	if next.Polarity == PolarityHot {
		r.add("TREND: audiences can't get enough of %s right now!", g.Name)
	} else {
		r.add("COLD SPELL: audiences are tired of %s.", g.Name)
	}
}

func genreName(cat *Catalog, id string) string {
	if g, ok := cat.Genre(id); ok {
		return g.Name
	}
	return id
}
