package session

import (
	"time"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/stats"
)

// Adaptive suggestion bounds, in percent.
const (
	AdaptiveRaiseAt = 90
	AdaptiveLowerAt = 50
)

// Summary holds the data displayed on the summary screen.
type Summary struct {
	Mode       Mode
	Operation  problemgen.Operation
	Digits     int
	Questions  int // answered
	Correct    int
	Accuracy   int // rounded percent of answered questions
	TotalTime  time.Duration
	BestStreak int
	TimedOut   bool

	// Level is set for level runs and holds the star rating, the success
	// flag and the next level id.
	Level *level.Result

	// SuggestedDigits is the adaptive suggestion for the next free drill,
	// 0 when there is none.
	SuggestedDigits int
}

// Run returns the level run to submit for completion.
func (c *Controller) Run() level.Run {
	run := level.Run{
		CorrectAnswers: c.correct,
		TotalQuestions: c.cfg.Count,
		TimeTaken:      c.elapsed.Seconds(),
	}
	if c.cfg.Level != nil {
		run.LevelID = c.cfg.Level.ID
	}
	return run
}

// Summary builds the summary of the current run. The level rating is
// computed locally; callers holding a stored result replace Level.
func (c *Controller) Summary(now time.Time) Summary {
	s := Summary{
		Mode:       c.cfg.Mode,
		Operation:  c.cfg.Operation,
		Digits:     c.cfg.Digits,
		Questions:  c.answered,
		Correct:    c.correct,
		Accuracy:   stats.Percent(c.correct, c.answered),
		TotalTime:  c.elapsed,
		BestStreak: c.bestStreak,
		TimedOut:   c.expired,
	}
	if c.cfg.Mode == ModeLevel && c.cfg.Level != nil {
		res, _ := level.Rate(*c.cfg.Level, c.Run(), nil, c.thresholds, now)
		s.Level = &res
	}
	if c.cfg.Mode == ModePractice && c.cfg.Adaptive {
		s.SuggestedDigits = SuggestDigits(c.cfg.Digits, s.Accuracy)
	}
	return s
}

// SuggestDigits proposes one more digit at high accuracy and one fewer at
// low accuracy. It returns 0 when the current width should stay.
func SuggestDigits(digits, accuracy int) int {
	switch {
	case accuracy >= AdaptiveRaiseAt && digits < problemgen.MaxDigits:
		return digits + 1
	case accuracy < AdaptiveLowerAt && digits > problemgen.MinDigits:
		return digits - 1
	default:
		return 0
	}
}
