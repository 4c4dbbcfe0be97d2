package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

const (
	RecognizableBaseChance = 0.3
	RecognizablePerLevel   = 0.2
	RecognizableSkillBonus = 25
	ScoutSkillPerLevel     = 5
	SalaryScale            = 100
	EventChance            = 0.25

	DirectorPoolSize = 4
	ActorPoolSize    = 12
	WriterPoolSize   = 3
	ScriptsForSale   = 3
)

// Rand is the random source the engine draws from. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

func newID() string {
	return uuid.NewString()
}

func uniform(rng Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func pick[T any](rng Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

// GenerateTalent draws a new candidate for role. experience is the studio's
// standing (market share / 20); scoutBonus is added to skill.
func GenerateTalent(rng Rand, cat *Catalog, role Role, experience float64, scoutBonus int) Talent {
	trait := pick(rng, cat.Traits)

	chance := clampFloat(RecognizableBaseChance+RecognizablePerLevel*experience, 0, 1)
	recognizable := rng.Float64() < chance && role != RoleWriter

	var name string
	switch {
	case recognizable && role == RoleDirector && len(cat.Names.Directors) > 0:
		name = pick(rng, cat.Names.Directors)
	case recognizable && role == RoleActor && len(cat.Names.Actors) > 0:
		name = pick(rng, cat.Names.Actors)
	default:
		recognizable = false
		name = fmt.Sprintf("%s %s", pick(rng, cat.Names.First), pick(rng, cat.Names.Last))
	}

	raw := math.Floor(rng.Float64()*30) + 20*experience + float64(scoutBonus)
	if recognizable {
		raw += RecognizableSkillBonus
	}
	skill := clampInt(int(math.Floor(raw)), MinSkill, MaxSkill)
	fame := clampInt(int(math.Floor(float64(skill)*0.8+rng.Float64()*20)), MinFame, MaxFame)
	salary := int64(math.Floor(float64(skill) * float64(fame) * SalaryScale * trait.CostMultiplier))

	return Talent{
		ID:           newID(),
		Role:         role,
		Name:         name,
		Skill:        skill,
		Fame:         fame,
		BaseSalary:   salary,
		Salary:       salary,
		Trait:        trait,
		IsMarketReal: recognizable,
	}
}

// GenerateScript draws a script for sale.
func GenerateScript(rng Rand, cat *Catalog) Script {
	title := fmt.Sprintf("%s %s", pick(rng, cat.Names.ScriptAdjectives), pick(rng, cat.Names.ScriptNouns))
	genre := pick(rng, cat.Genres)
	bonus := 5 + rng.Intn(16)
	return Script{
		ID:           newID(),
		Title:        title,
		Genre:        genre,
		QualityBonus: bonus,
		Cost:         500_000 + int64(bonus)*100_000,
	}
}

// GenerateRandomEvent rolls for a release-time event. ok is false when no
// event fires.
func GenerateRandomEvent(rng Rand, cat *Catalog) (Event, bool) {
	if len(cat.Events) == 0 || rng.Float64() >= EventChance {
		return Event{}, false
	}
	return pick(rng, cat.Events), true
}

// GeneratePool draws the casting pool for a new project.
func GeneratePool(rng Rand, cat *Catalog, experience float64, scoutBonus int) TalentPool {
	pool := TalentPool{
		Directors: make([]Talent, 0, DirectorPoolSize),
		Actors:    make([]Talent, 0, ActorPoolSize),
		Writers:   make([]Talent, 0, WriterPoolSize),
	}
	for i := 0; i < DirectorPoolSize; i++ {
		pool.Directors = append(pool.Directors, GenerateTalent(rng, cat, RoleDirector, experience, scoutBonus))
	}
	for i := 0; i < ActorPoolSize; i++ {
		pool.Actors = append(pool.Actors, GenerateTalent(rng, cat, RoleActor, experience, scoutBonus))
	}
	for i := 0; i < WriterPoolSize; i++ {
		pool.Writers = append(pool.Writers, GenerateTalent(rng, cat, RoleWriter, experience, scoutBonus))
	}
	return pool
}

// ReturningTalent clones a prior team member for a sequel. The clone gets a
// new identity; the salary scales with how the source film did.
func ReturningTalent(prior Talent, sourceProfit int64) Talent {
	factor := 0.8
	if sourceProfit > 0 {
		factor = 1.5
	}
	clone := prior
	clone.ID = newID()
	clone.Salary = int64(math.Floor(float64(prior.Salary) * factor))
	return clone
}

// ReturnChance is the probability a prior team member comes back.
func ReturnChance(sourceProfit int64) float64 {
	if sourceProfit > 0 {
		return 0.9
	}
	return 0.5
}
