package level

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition decides whether a level is playable given the learner's completions.
type Condition interface {
	Unlocked(done Completions) bool
	String() string
}

// ParseCondition parses an unlockCondition string. Recognized forms:
//
//	none
//	total_stars_N
//	complete_level_X_with_Y_stars   (Y defaults to 1)
//	collect_N_stars_from_levels_A_to_B
//
// Anything else, including the empty string, parses to a condition that
// is never met. A definition without the key is decoded as none.
func ParseCondition(s string) Condition {
	if s == UnlockNone {
		return always{}
	}
	parts := strings.Split(s, "_")

	switch {
	case strings.HasPrefix(s, "total_stars_"):
		if n, ok := intAt(parts, 2); ok {
			return totalStars{n: n}
		}

	case strings.HasPrefix(s, "complete_level_"):
		id, ok := intAt(parts, 2)
		if !ok {
			break
		}
		stars := 1
		if len(parts) > 4 {
			if stars, ok = intAt(parts, 4); !ok {
				break
			}
		}
		return levelStars{id: id, stars: stars}

	case strings.HasPrefix(s, "collect_"):
		n, ok1 := intAt(parts, 1)
		from, ok2 := intAt(parts, 5)
		to, ok3 := intAt(parts, 7)
		if ok1 && ok2 && ok3 {
			return rangeStars{n: n, from: from, to: to}
		}
	}
	return never{raw: s}
}

func intAt(parts []string, i int) (int, bool) {
	if i >= len(parts) {
		return 0, false
	}
	n, err := strconv.Atoi(parts[i])
	return n, err == nil
}

type always struct{}

func (always) Unlocked(Completions) bool { return true }
func (always) String() string            { return "Always open" }

type never struct{ raw string }

func (never) Unlocked(Completions) bool { return false }
func (n never) String() string {
	if n.raw == "" {
		return "Locked (empty unlock condition)"
	}
	return fmt.Sprintf("Locked (%s)", n.raw)
}

type totalStars struct{ n int }

func (c totalStars) Unlocked(done Completions) bool { return done.TotalStars() >= c.n }
func (c totalStars) String() string                 { return fmt.Sprintf("Earn %d stars in total", c.n) }

type levelStars struct{ id, stars int }

func (c levelStars) Unlocked(done Completions) bool {
	comp, ok := done[c.id]
	return ok && comp.StarsEarned >= c.stars
}

func (c levelStars) String() string {
	return fmt.Sprintf("Earn %d★ on level %d", c.stars, c.id)
}

type rangeStars struct{ n, from, to int }

func (c rangeStars) Unlocked(done Completions) bool {
	total := 0
	for id := c.from; id <= c.to; id++ {
		total += done.Stars(id)
	}
	return total >= c.n
}

func (c rangeStars) String() string {
	return fmt.Sprintf("Collect %d stars from levels %d-%d", c.n, c.from, c.to)
}
