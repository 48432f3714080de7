package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseIdle           Phase = iota // No active session
	PhaseConfiguring                 // Operation/digits or level chosen, not started
	PhaseAwaitingAnswer              // Question shown, stopwatch running
	PhaseFeedback                    // Showing answer feedback, countdown pending
	PhaseComplete                    // Question count or time limit reached
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConfiguring:
		return "configuring"
	case PhaseAwaitingAnswer:
		return "awaiting-answer"
	case PhaseFeedback:
		return "feedback"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Mode distinguishes free drill from level play.
type Mode int

const (
	ModePractice Mode = iota
	ModeLevel
)

// Default feedback countdowns before the next question.
const (
	DefaultFeedbackCorrect   = 1500 * time.Millisecond
	DefaultFeedbackIncorrect = 2000 * time.Millisecond
)

// Bounds for the free drill question count.
const (
	MinQuestions     = 1
	MaxQuestions     = 50
	DefaultQuestions = 10
)

// ErrNotNumeric is returned by Submit for input that is not a number.
var ErrNotNumeric = problemgen.ErrNotNumeric

// ErrInvalidTransition is returned when an operation is not allowed in the
// current phase.
var ErrInvalidTransition = errors.New("invalid session transition")

// Config selects what a session drills.
type Config struct {
	Mode Mode

	// Operation, Digits and Count drive free drill. Level mode takes them
	// from Level.
	Operation problemgen.Operation
	Digits    int
	Count     int

	Level *level.Level

	// FeedbackCorrect and FeedbackIncorrect are the countdowns after an
	// answer. Zero values use the defaults.
	FeedbackCorrect   time.Duration
	FeedbackIncorrect time.Duration

	// Adaptive enables a digit suggestion in the free drill summary.
	Adaptive bool
}

// PracticeConfig returns a free drill config.
func PracticeConfig(op problemgen.Operation, digits, count int) Config {
	return Config{Mode: ModePractice, Operation: op, Digits: digits, Count: count}
}

// LevelConfig returns a config that plays lvl.
func LevelConfig(lvl level.Level) Config {
	return Config{Mode: ModeLevel, Level: &lvl}
}

// normalize fills defaults and resolves level parameters.
func (c Config) normalize() (Config, error) {
	if c.FeedbackCorrect <= 0 {
		c.FeedbackCorrect = DefaultFeedbackCorrect
	}
	if c.FeedbackIncorrect <= 0 {
		c.FeedbackIncorrect = DefaultFeedbackIncorrect
	}
	if c.Mode == ModeLevel {
		if c.Level == nil {
			return c, errors.New("level mode without a level")
		}
		if c.Level.Requirements.TotalQuestions <= 0 {
			return c, errors.New("level has no questions")
		}
		c.Operation = c.Level.Operation
		c.Digits = c.Level.Digits
		c.Count = c.Level.Requirements.TotalQuestions
		c.Adaptive = false
	} else {
		if c.Count <= 0 {
			c.Count = DefaultQuestions
		}
		c.Count = min(max(c.Count, MinQuestions), MaxQuestions)
	}
	if !c.Operation.Valid() {
		return c, fmt.Errorf("unknown operation %q", c.Operation)
	}
	c.Digits = problemgen.ClampDigits(c.Digits)
	return c, nil
}

// Feedback describes the outcome of one submitted answer.
type Feedback struct {
	Correct       bool
	UserAnswer    float64
	CorrectAnswer float64
	TimeTaken     time.Duration

	// Delay is the countdown before the next transition; Token identifies it.
	Delay time.Duration
	Token uint64

	// Last is true when the next transition completes the session.
	Last bool
}
