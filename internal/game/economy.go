package game

import "math"

const (
	SequelQualityFactor = 0.9
	RemakeQualityFactor = 0.8
	RemakeHypeBonus     = 25
	VFXQualityPerLevel  = 3
	PRHypePerLevel      = 5

	CinemaRevenueScale    = 12_000
	StreamingRevenueScale = 400_000
	HotTrendFactor        = 1.5
	ColdTrendFactor       = 0.6
)

// ProductionCost is budgets plus the salaries of everyone on the team.
func ProductionCost(p Project) int64 {
	cost := p.ProductionBudget + p.MarketingBudget + p.MerchandiseBudget
	for _, m := range p.Team() {
		cost += m.Salary
	}
	return cost
}

// LaunchCost is what LaunchProduction charges: production cost plus any
// purchased script. It becomes TotalCost, so the script price lowers profit.
func LaunchCost(p Project) int64 {
	return ProductionCost(p) + p.ScriptCost
}

// ComputeQuality scores a project at launch, clamped to [MinQuality, MaxQuality].
func ComputeQuality(p Project, vfxLevel int, cat *Catalog) int {
	q := 50 + float64(p.ScriptQualityBonus)
	if p.Director != nil {
		q += float64(p.Director.Skill) / 10
	}
	if len(p.Cast) > 0 {
		total := 0
		for _, a := range p.Cast {
			total += a.Skill
		}
		q += float64(total) / float64(len(p.Cast)) / 5
	}
	q += float64(p.ProductionBudget) / 2_000_000
	if p.IsSequel {
		q *= SequelQualityFactor
	}
	if vfxLevel > 0 && cat.isVFXGenre(p.Genre.ID) {
		q += float64(vfxLevel * VFXQualityPerLevel)
	}
	if p.IsRemake {
		q *= RemakeQualityFactor
	}
	return clampInt(int(math.Floor(SafeNum(q))), MinQuality, MaxQuality)
}

// ComputeHype scores launch hype, clamped to [MinHype, MaxHype].
func ComputeHype(p Project, prLevel int) int {
	h := float64(p.HypeBonus) + 10 + float64(p.MarketingBudget)/500_000
	for _, m := range p.Team() {
		h += float64(m.Fame) / 10
	}
	if prLevel > 0 {
		h += float64(prLevel * PRHypePerLevel)
	}
	if p.IsRemake {
		h += RemakeHypeBonus
	}
	return clampInt(int(math.Floor(SafeNum(h))), MinHype, MaxHype)
}

// BoxOfficeSwing draws the cinema multiplier in [0.8, 1.8).
func BoxOfficeSwing(rng Rand) float64 {
	return uniform(rng, 0.8, 1.8)
}

func CinemaRevenue(hype, quality int, genre Genre, swing float64) int64 {
	return int64(math.Floor(SafeNum(float64(hype) * float64(quality) * genre.AudienceMultiplier * CinemaRevenueScale * swing)))
}

func StreamingRevenue(hype, quality int) int64 {
	return int64(math.Floor(SafeNum(float64(quality) * StreamingRevenueScale * (1 + float64(hype)/100))))
}

func MerchandiseRevenue(budget int64, hype, quality int) int64 {
	if budget <= 0 {
		return 0
	}
	ratio := math.Min(1, (float64(hype)/100)*(float64(quality)/100)*1.5)
	return int64(math.Floor(SafeNum(float64(budget) * 2 * ratio)))
}

// TrendFactor is the revenue multiplier an active trend applies to genre.
func TrendFactor(t Trend, genreID string) float64 {
	if t.GenreID == "" || t.GenreID != genreID {
		return 1
	}
	switch t.Polarity {
	case PolarityHot:
		return HotTrendFactor
	case PolarityCold:
		return ColdTrendFactor
	}
	return 1
}

// Earnings is the revenue breakdown of a release.
type Earnings struct {
	BoxOffice   int64
	Merchandise int64
	Total       int64
}

// ReleaseEarnings computes revenue for p. swing is only used for cinema.
func ReleaseEarnings(p Project, trend Trend, swing float64) Earnings {
	var e Earnings
	switch p.ReleaseChannel {
	case ChannelStreaming:
		e.BoxOffice = StreamingRevenue(p.Hype, p.Quality)
	default:
		e.BoxOffice = CinemaRevenue(p.Hype, p.Quality, p.Genre, swing)
	}
	e.Merchandise = MerchandiseRevenue(p.MerchandiseBudget, p.Hype, p.Quality)
	total := float64(e.BoxOffice + e.Merchandise)
	if f := TrendFactor(trend, p.Genre.ID); f != 1 {
		total = math.Floor(total * f)
	}
	e.Total = int64(total)
	return e
}

// ShareDelta is the market-share change a release earns.
func ShareDelta(quality int, profit int64) float64 {
	delta := 0.0
	if quality > 80 {
		delta = 1.5
	} else if quality < 40 {
		delta = -0.5
	}
	if profit > ShareProfitThreshold {
		delta += 1.0
	}
	return delta
}

// RedistributeShare moves delta away from competitors: each gives up an
// even slice plus jitter, floored at MinCompetitorShare.
func RedistributeShare(rng Rand, competitors []Competitor, delta float64) []Competitor {
	out := make([]Competitor, len(competitors))
	copy(out, competitors)
	if len(out) == 0 {
		return out
	}
	slice := delta / float64(len(out))
	for i := range out {
		jitter := uniform(rng, -0.25, 0.25)
		out[i].Share = math.Max(MinCompetitorShare, SafeNum(out[i].Share)-slice+jitter)
	}
	return out
}
