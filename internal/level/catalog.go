package level

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Agampodige/MathDrill/internal/validate"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

var catalogSchema = &validate.Schema{Name: "level-catalog", Definition: catalogSchemaJSON}

// Catalog is an ordered, immutable set of level definitions.
type Catalog struct {
	levels []Level
	byID   map[int]int
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return ParseCatalog(defaultCatalogJSON)
})

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// ParseCatalog validates data against the catalog schema and builds a
// Catalog. Level ids must be unique; levels are ordered by id.
func ParseCatalog(data []byte) (*Catalog, error) {
	if _, err := validate.JSON(catalogSchema, data); err != nil {
		return nil, err
	}
	var doc struct {
		Levels []Level `json:"levels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode level catalog: %w", err)
	}
	return NewCatalog(doc.Levels)
}

// NewCatalog builds a Catalog from definitions. Any per-learner state on
// the input is discarded.
func NewCatalog(levels []Level) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]int, len(levels))}
	for _, l := range levels {
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate level id %d", l.ID)
		}
		if !l.Operation.Valid() {
			return nil, fmt.Errorf("level %d: unknown operation %q", l.ID, l.Operation)
		}
		if l.Requirements.MinCorrect > l.Requirements.TotalQuestions {
			return nil, fmt.Errorf("level %d: minCorrect %d exceeds totalQuestions %d",
				l.ID, l.Requirements.MinCorrect, l.Requirements.TotalQuestions)
		}
		c.byID[l.ID] = 0
		c.levels = append(c.levels, definition(l))
	}
	sort.Slice(c.levels, func(i, j int) bool { return c.levels[i].ID < c.levels[j].ID })
	for i, l := range c.levels {
		c.byID[l.ID] = i
	}
	return c, nil
}

func definition(l Level) Level {
	l.IsLocked, l.IsCompleted = false, false
	l.StarsEarned, l.BestTime, l.BestAccuracy = 0, 0, 0
	return l
}

// Len returns the number of levels.
func (c *Catalog) Len() int { return len(c.levels) }

// Definition returns the bare definition for id.
func (c *Catalog) Definition(id int) (Level, error) {
	i, ok := c.byID[id]
	if !ok {
		return Level{}, fmt.Errorf("level %d: %w", id, ErrNotFound)
	}
	return c.levels[i], nil
}

// Levels returns every level with lock and completion state applied.
func (c *Catalog) Levels(done Completions) []Level {
	out := make([]Level, len(c.levels))
	for i, l := range c.levels {
		out[i] = withState(l, done)
	}
	return out
}

// Level returns one level with state applied.
func (c *Catalog) Level(id int, done Completions) (Level, error) {
	l, err := c.Definition(id)
	if err != nil {
		return Level{}, err
	}
	return withState(l, done), nil
}

func withState(l Level, done Completions) Level {
	l.IsLocked = !ParseCondition(l.UnlockCondition).Unlocked(done)
	if comp, ok := done[l.ID]; ok {
		l.IsCompleted = true
		l.StarsEarned = comp.StarsEarned
		l.BestTime = comp.BestTime
		l.BestAccuracy = comp.BestAccuracy
	}
	return l
}

// Progression summarizes done against the catalog. Completions for ids
// not in the catalog are ignored.
func (c *Catalog) Progression(done Completions) Progression {
	p := Progression{
		TotalLevels:      len(c.levels),
		MaxPossibleStars: len(c.levels) * MaxStars,
	}
	for _, l := range c.levels {
		stars := done.Stars(l.ID)
		if stars > 0 {
			p.CompletedLevels++
		}
		p.TotalStars += stars
	}
	if p.TotalLevels > 0 {
		p.ProgressPercentage = math.Round(float64(p.CompletedLevels)/float64(p.TotalLevels)*1000) / 10
	}
	return p
}

// UnlockedCount returns how many levels are playable.
func (c *Catalog) UnlockedCount(done Completions) int {
	n := 0
	for _, l := range c.levels {
		if ParseCondition(l.UnlockCondition).Unlocked(done) {
			n++
		}
	}
	return n
}
