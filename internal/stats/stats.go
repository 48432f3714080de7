// Package stats reduces attempt history into accuracy, timing, streak,
// heatmap, and insight summaries for the analytics views.
package stats

import (
	"math"
	"slices"
	"time"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// Totals holds the count/accuracy/time metrics for a group of attempts.
type Totals struct {
	Count     int
	Correct   int
	Accuracy  int     // rounded percent, 0 when Count is 0
	AvgTime   float64 // seconds
	TotalTime float64 // seconds
}

func (t *Totals) add(a attempt.Attempt) {
	t.Count++
	if a.IsCorrect {
		t.Correct++
	}
	t.TotalTime += a.TimeTaken
}

func (t *Totals) finish() {
	if t.Count == 0 {
		t.Accuracy, t.AvgTime = 0, 0
		return
	}
	t.Accuracy = Percent(t.Correct, t.Count)
	t.AvgTime = t.TotalTime / float64(t.Count)
}

// ratio is the unrounded accuracy used for ranking.
func (t Totals) ratio() float64 {
	if t.Count == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Count)
}

// Summary is the full analytics view over an attempt history.
type Summary struct {
	Overall       Totals
	ByOperation   map[problemgen.Operation]Totals
	Streak        Streak
	Heatmap       Heatmap
	Insights      Insights
	LastPracticed time.Time // zero when there are no attempts
}

// Percent returns round(100*n/d), or 0 when d is 0.
func Percent(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(d)))
}

// Aggregate computes the Summary of attempts as seen at now. Calendar
// days are taken in now's location.
func Aggregate(attempts []attempt.Attempt, now time.Time) Summary {
	s := Summary{ByOperation: make(map[problemgen.Operation]Totals)}

	days := make(map[time.Time]int)
	for _, a := range attempts {
		s.Overall.add(a)

		t := s.ByOperation[a.Operation]
		t.add(a)
		s.ByOperation[a.Operation] = t

		if a.Timestamp.IsZero() {
			continue
		}
		ts := a.Timestamp.In(now.Location())
		days[localNoon(ts)]++
		if ts.After(s.LastPracticed) {
			s.LastPracticed = ts
		}
	}

	s.Overall.finish()
	for op, t := range s.ByOperation {
		t.finish()
		s.ByOperation[op] = t
	}

	s.Streak = computeStreak(days, now)
	s.Heatmap = buildHeatmap(days, now)
	s.Insights = computeInsights(s.ByOperation)
	return s
}

// Operations returns the operations present in byOp, known operations in
// display order first, then any unknown ones sorted by name.
func Operations(byOp map[problemgen.Operation]Totals) []problemgen.Operation {
	out := make([]problemgen.Operation, 0, len(byOp))
	for _, op := range problemgen.Operations {
		if _, ok := byOp[op]; ok {
			out = append(out, op)
		}
	}
	var extra []problemgen.Operation
	for op := range byOp {
		if !op.Valid() {
			extra = append(extra, op)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
