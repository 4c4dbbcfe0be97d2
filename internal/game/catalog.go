package game

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Upgrade is a studio facility bought in levels.
type Upgrade struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	BaseCost    int64  `json:"baseCost" yaml:"base_cost"`
	MaxLevel    int    `json:"maxLevel" yaml:"max_level"`
}

const (
	UpgradeVFX    = "vfx"
	UpgradePR     = "pr"
	UpgradeScouts = "scouts"
	UpgradeMerch  = "merch"
)

// Rights is a classic film whose remake rights can be bought.
type Rights struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	GenreID string `json:"genre" yaml:"genre"`
	Cost    int64  `json:"cost" yaml:"cost"`
	Hype    int    `json:"hype" yaml:"hype"`
}

// Event is a release-time surprise. Deltas are added to the project's hype
// and quality; a non-zero BudgetFactor scales the production budget.
type Event struct {
	ID           string  `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	Text         string  `json:"text" yaml:"text"`
	HypeDelta    int     `json:"hypeDelta" yaml:"hype_delta"`
	QualityDelta int     `json:"qualityDelta" yaml:"quality_delta"`
	BudgetFactor float64 `json:"budgetFactor" yaml:"budget_factor"`
}

// Apply returns p with the event's effect.
func (e Event) Apply(p Project) Project {
	p.Hype += e.HypeDelta
	p.Quality += e.QualityDelta
	if e.BudgetFactor != 0 {
		p.ProductionBudget = int64(math.Floor(float64(p.ProductionBudget) * e.BudgetFactor))
	}
	return p
}

type NameTables struct {
	Directors        []string `yaml:"directors"`
	Actors           []string `yaml:"actors"`
	First            []string `yaml:"first"`
	Last             []string `yaml:"last"`
	ScriptAdjectives []string `yaml:"script_adjectives"`
	ScriptNouns      []string `yaml:"script_nouns"`
}

// Catalog holds the static tables the engine draws from.
type Catalog struct {
	Genres      []Genre      `yaml:"genres"`
	VFXGenres   []string     `yaml:"vfx_genres"`
	Traits      []Trait      `yaml:"traits"`
	Upgrades    []Upgrade    `yaml:"upgrades"`
	Rights      []Rights     `yaml:"rights"`
	Competitors []Competitor `yaml:"competitors"`
	Events      []Event      `yaml:"events"`
	Names       NameTables   `yaml:"names"`
}

// LoadCatalog parses and validates a YAML catalog.
func LoadCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalogFile reads a catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadCatalog(raw)
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := LoadCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
})

// DefaultCatalog returns the embedded catalog. Callers must not mutate it.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

func (c *Catalog) validate() error {
	var errs []error
	if len(c.Genres) == 0 {
		errs = append(errs, errors.New("catalog: no genres"))
	}
	if len(c.Traits) == 0 {
		errs = append(errs, errors.New("catalog: no traits"))
	}
	if len(c.Names.First) == 0 || len(c.Names.Last) == 0 {
		errs = append(errs, errors.New("catalog: first and last name tables are required"))
	}
	if len(c.Names.ScriptAdjectives) == 0 || len(c.Names.ScriptNouns) == 0 {
		errs = append(errs, errors.New("catalog: script title tables are required"))
	}
	seen := map[string]bool{}
	for _, g := range c.Genres {
		if strings.TrimSpace(g.ID) == "" || seen[g.ID] {
			errs = append(errs, fmt.Errorf("catalog: invalid or duplicate genre id %q", g.ID))
		}
		seen[g.ID] = true
	}
	for _, u := range c.Upgrades {
		if u.MaxLevel <= 0 || u.BaseCost <= 0 {
			errs = append(errs, fmt.Errorf("catalog: upgrade %q needs a positive base cost and max level", u.ID))
		}
	}
	for _, r := range c.Rights {
		if !seen[r.GenreID] {
			errs = append(errs, fmt.Errorf("catalog: rights %q references unknown genre %q", r.ID, r.GenreID))
		}
	}
	return errors.Join(errs...)
}

func (c *Catalog) Genre(id string) (Genre, bool) {
	for _, g := range c.Genres {
		if g.ID == id {
			return g, true
		}
	}
	return Genre{}, false
}

func (c *Catalog) Upgrade(id string) (Upgrade, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, u := range c.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return Upgrade{}, false
}

func (c *Catalog) RightsByID(id string) (Rights, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, r := range c.Rights {
		if r.ID == id {
			return r, true
		}
	}
	return Rights{}, false
}

func (c *Catalog) isVFXGenre(id string) bool {
	for _, g := range c.VFXGenres {
		if g == id {
			return true
		}
	}
	return false
}
