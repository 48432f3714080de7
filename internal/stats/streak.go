package stats

import (
	"math"
	"slices"
	"time"
)

// Streak counts consecutive calendar days with at least one attempt.
type Streak struct {
	// Current is the run ending today or yesterday, 0 otherwise.
	Current int
	// Best is the longest run over the whole history.
	Best int
	// ActiveDays is the number of distinct days with activity.
	ActiveDays int
}

// localNoon normalizes t to noon of its calendar day so that day
// differences survive DST shifts of an hour in either direction.
func localNoon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// dayDiff returns the number of calendar days from a to b, both noon-normalized.
func dayDiff(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func computeStreak(days map[time.Time]int, now time.Time) Streak {
	if len(days) == 0 {
		return Streak{}
	}
	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	s := Streak{ActiveDays: len(sorted), Best: 1}
	run := 1
	for i := 1; i < len(sorted); i++ {
		if dayDiff(sorted[i-1], sorted[i]) == 1 {
			run++
		} else {
			run = 1
		}
		s.Best = max(s.Best, run)
	}

	today := localNoon(now)
	last := sorted[len(sorted)-1]
	if gap := dayDiff(last, today); gap < 0 || gap > 1 {
		return s
	}
	// run is the length of the final consecutive block.
	s.Current = run
	return s
}
