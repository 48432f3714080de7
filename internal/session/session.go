// Package session drives a practice or level run: it serves questions,
// times and records answers, and schedules the auto-advance countdown.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/stats"
)

// Generator supplies questions. *problemgen.RandomGenerator satisfies it.
type Generator interface {
	Generate(op problemgen.Operation, digits int) problemgen.Question
	GenerateSet(op problemgen.Operation, digits, n int) []problemgen.Question
}

// Recorder persists an answered question. *attempt.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, q problemgen.Question, userAnswer float64, taken time.Duration, now time.Time) (attempt.Attempt, error)
}

// Controller is the session state machine. It is not safe for concurrent
// use; the TUI drives it from its update loop.
type Controller struct {
	gen        Generator
	rec        Recorder
	thresholds level.Thresholds
	logger     *slog.Logger

	id    string
	phase Phase
	cfg   Config

	// questions is pre-generated for levels; free drill generates lazily.
	questions []problemgen.Question
	current   problemgen.Question

	answered   int
	correct    int
	streak     int
	bestStreak int

	questionStart time.Time
	elapsed       time.Duration // sum of per-question times
	startedAt     time.Time
	deadline      time.Time // zero when untimed
	expired       bool

	// token identifies the pending countdown; 0 means none is pending.
	token     uint64
	nextToken uint64

	last     *Feedback
	attempts []attempt.Attempt
}

// Option configures a Controller.
type Option func(*Controller)

// WithThresholds overrides the star thresholds used for level summaries.
func WithThresholds(t level.Thresholds) Option {
	return func(c *Controller) { c.thresholds = t }
}

// WithLogger sets the logger for best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an idle Controller.
func New(gen Generator, rec Recorder, opts ...Option) *Controller {
	c := &Controller{
		gen:        gen,
		rec:        rec,
		thresholds: level.DefaultThresholds(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ID returns the id of the current run. Timer messages carry it so that
// ticks from an earlier run are ignored.
func (c *Controller) ID() string { return c.id }

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Config returns the normalized config of the current run.
func (c *Controller) Config() Config { return c.cfg }

// Question returns the question on screen.
func (c *Controller) Question() problemgen.Question { return c.current }

// LastFeedback returns the feedback of the most recent answer, nil before
// the first one.
func (c *Controller) LastFeedback() *Feedback { return c.last }

// Attempts returns the attempts recorded in this run.
func (c *Controller) Attempts() []attempt.Attempt { return c.attempts }

// Progress returns the number of answered questions and the target count.
func (c *Controller) Progress() (answered, total int) { return c.answered, c.cfg.Count }

// Correct returns the number of correct answers so far.
func (c *Controller) Correct() int { return c.correct }

// Streak returns the current run of consecutive correct answers.
func (c *Controller) Streak() int { return c.streak }

// RunningAccuracy returns the rounded accuracy of the answers so far.
func (c *Controller) RunningAccuracy() int {
	return stats.Percent(c.correct, c.answered)
}

// QuestionElapsed returns the stopwatch reading for the current question.
func (c *Controller) QuestionElapsed(now time.Time) time.Duration {
	if c.phase != PhaseAwaitingAnswer {
		return 0
	}
	return max(0, now.Sub(c.questionStart))
}

// Remaining returns the time left on a timed level, and false when the
// run is untimed.
func (c *Controller) Remaining(now time.Time) (time.Duration, bool) {
	if c.deadline.IsZero() {
		return 0, false
	}
	return max(0, c.deadline.Sub(now)), true
}

// Configure selects what to drill. Allowed from Idle, Configuring or Complete.
func (c *Controller) Configure(cfg Config) error {
	switch c.phase {
	case PhaseIdle, PhaseConfiguring, PhaseComplete:
	default:
		return fmt.Errorf("configure in %s: %w", c.phase, ErrInvalidTransition)
	}
	n, err := cfg.normalize()
	if err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	c.reset()
	c.cfg = n
	c.phase = PhaseConfiguring
	return nil
}

// Start shows the first question and starts the stopwatch.
func (c *Controller) Start(now time.Time) error {
	if c.phase != PhaseConfiguring {
		return fmt.Errorf("start in %s: %w", c.phase, ErrInvalidTransition)
	}
	c.id = uuid.NewString()
	c.startedAt = now
	if c.cfg.Mode == ModeLevel {
		c.questions = c.gen.GenerateSet(c.cfg.Operation, c.cfg.Digits, c.cfg.Count)
		if tl := c.cfg.Level.Requirements.TimeLimit; tl > 0 {
			c.deadline = now.Add(time.Duration(tl) * time.Second)
		}
	}
	c.showQuestion(now)
	c.logger.Debug("session started", "id", c.id, "mode", c.cfg.Mode, "operation", c.cfg.Operation,
		"digits", c.cfg.Digits, "count", c.cfg.Count)
	return nil
}

// Submit records an answer. Non-numeric input returns ErrNotNumeric and
// leaves the state unchanged. A recording failure is logged; the answer
// still counts toward the session.
func (c *Controller) Submit(ctx context.Context, raw string, now time.Time) (Feedback, error) {
	if c.phase != PhaseAwaitingAnswer {
		return Feedback{}, fmt.Errorf("submit in %s: %w", c.phase, ErrInvalidTransition)
	}
	v, err := problemgen.ParseAnswer(raw)
	if err != nil {
		return Feedback{}, err
	}

	taken := max(0, now.Sub(c.questionStart))
	q := c.current
	a, err := c.rec.Record(ctx, q, v, taken, now)
	if err != nil {
		c.logger.Warn("record attempt failed", "session", c.id, "error", err)
		a = attempt.New(0, q, v, taken, now)
	}
	c.attempts = append(c.attempts, a)

	c.answered++
	c.elapsed += taken
	if a.IsCorrect {
		c.correct++
		c.streak++
		c.bestStreak = max(c.bestStreak, c.streak)
	} else {
		c.streak = 0
	}

	c.nextToken++
	c.token = c.nextToken
	fb := Feedback{
		Correct:       a.IsCorrect,
		UserAnswer:    v,
		CorrectAnswer: q.AnswerValue(),
		TimeTaken:     taken,
		Delay:         c.cfg.FeedbackIncorrect,
		Token:         c.token,
		Last:          c.answered >= c.cfg.Count,
	}
	if a.IsCorrect {
		fb.Delay = c.cfg.FeedbackCorrect
	}
	c.last = &fb
	c.phase = PhaseFeedback
	return fb, nil
}

// Skip ends the feedback countdown early. It performs the same transition
// as CountdownFired and reports whether anything happened.
func (c *Controller) Skip(now time.Time) bool {
	if c.phase != PhaseFeedback || c.token == 0 {
		return false
	}
	c.advance(now)
	return true
}

// CountdownFired handles the expiry of the countdown identified by token.
// Stale tokens are ignored.
func (c *Controller) CountdownFired(token uint64, now time.Time) bool {
	if c.phase != PhaseFeedback || token == 0 || token != c.token {
		return false
	}
	c.advance(now)
	return true
}

// TimeExpired completes a timed level whose deadline has passed,
// regardless of progress.
func (c *Controller) TimeExpired(now time.Time) bool {
	if c.deadline.IsZero() || now.Before(c.deadline) {
		return false
	}
	if c.phase != PhaseAwaitingAnswer && c.phase != PhaseFeedback {
		return false
	}
	c.expired = true
	c.complete()
	return true
}

// Stop tears the session down. Outstanding countdown tokens become stale.
func (c *Controller) Stop() {
	c.reset()
	c.phase = PhaseIdle
}

// ReadyToAutoSubmit reports whether input has as many digits as the
// expected answer, for the auto-check setting.
func (c *Controller) ReadyToAutoSubmit(input string) bool {
	if c.phase != PhaseAwaitingAnswer {
		return false
	}
	input = strings.TrimSpace(input)
	if _, err := problemgen.ParseAnswer(input); err != nil {
		return false
	}
	want := problemgen.FormatNumber(c.current.AnswerValue())
	return digitCount(input) == digitCount(want)
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func (c *Controller) advance(now time.Time) {
	c.token = 0
	if c.answered >= c.cfg.Count {
		c.complete()
		return
	}
	c.showQuestion(now)
}

func (c *Controller) showQuestion(now time.Time) {
	if c.cfg.Mode == ModeLevel && c.answered < len(c.questions) {
		c.current = c.questions[c.answered]
	} else {
		c.current = c.gen.Generate(c.cfg.Operation, c.cfg.Digits)
	}
	c.questionStart = now
	c.phase = PhaseAwaitingAnswer
}

func (c *Controller) complete() {
	c.token = 0
	c.phase = PhaseComplete
	c.logger.Debug("session complete", "id", c.id, "answered", c.answered, "correct", c.correct,
		"expired", c.expired)
}

func (c *Controller) reset() {
	c.id = ""
	c.questions = nil
	c.current = problemgen.Question{}
	c.answered, c.correct, c.streak, c.bestStreak = 0, 0, 0, 0
	c.questionStart, c.startedAt, c.deadline = time.Time{}, time.Time{}, time.Time{}
	c.elapsed = 0
	c.expired = false
	c.token = 0
	c.last = nil
	c.attempts = nil
}
