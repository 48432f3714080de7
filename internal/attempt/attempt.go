// Package attempt defines the recorded answer events and the store that
// persists them locally and mirrors them to the host.
package attempt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// Attempt is one recorded question, answer, and outcome. Immutable once created.
type Attempt struct {
	ID            int64                `json:"id"`
	Operation     problemgen.Operation `json:"operation"`
	Digits        int                  `json:"digits"`
	Question      string               `json:"question"`
	UserAnswer    float64              `json:"userAnswer"`
	CorrectAnswer float64              `json:"correctAnswer"`
	IsCorrect     bool                 `json:"isCorrect"`
	TimeTaken     float64              `json:"timeTaken"`
	Timestamp     Timestamp            `json:"timestamp"`
}

// New builds an attempt for a submitted answer. Correctness uses the
// tolerance rule and negative durations are clamped to zero.
func New(id int64, q problemgen.Question, userAnswer float64, taken time.Duration, now time.Time) Attempt {
	secs := taken.Seconds()
	if secs < 0 {
		secs = 0
	}
	return Attempt{
		ID:            id,
		Operation:     q.Operation,
		Digits:        q.Digits,
		Question:      q.Text,
		UserAnswer:    userAnswer,
		CorrectAnswer: q.AnswerValue(),
		IsCorrect:     problemgen.IsCorrect(userAnswer, q.AnswerValue()),
		TimeTaken:     secs,
		Timestamp:     Timestamp{Time: now},
	}
}

// UnmarshalJSON accepts "problem" as an alias for "question".
func (a *Attempt) UnmarshalJSON(data []byte) error {
	type plain Attempt
	aux := struct {
		*plain
		Problem string `json:"problem"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.Question == "" {
		a.Question = aux.Problem
	}
	return nil
}

// Validate checks the per-record invariants.
func (a Attempt) Validate() error {
	var errs []error
	if a.ID <= 0 {
		errs = append(errs, fmt.Errorf("id %d must be positive", a.ID))
	}
	if !a.Operation.Valid() {
		errs = append(errs, fmt.Errorf("unknown operation %q", a.Operation))
	}
	if a.Digits < problemgen.MinDigits {
		errs = append(errs, fmt.Errorf("digits %d below %d", a.Digits, problemgen.MinDigits))
	}
	if a.TimeTaken < 0 {
		errs = append(errs, fmt.Errorf("negative timeTaken %v", a.TimeTaken))
	}
	if len(errs) > 0 {
		return fmt.Errorf("attempt %d: %w", a.ID, errors.Join(errs...))
	}
	return nil
}

// Collection is the serialized form of the whole attempt history.
type Collection struct {
	LastID   int64     `json:"lastId"`
	Attempts []Attempt `json:"attempts"`
}

// Validate checks every attempt plus the collection invariants: ids are
// strictly increasing and never exceed LastID.
func (c Collection) Validate() error {
	var prev int64
	for i, a := range c.Attempts {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("attempts[%d]: %w", i, err)
		}
		if a.ID <= prev {
			return fmt.Errorf("attempts[%d]: id %d not greater than previous %d", i, a.ID, prev)
		}
		prev = a.ID
	}
	if prev > c.LastID {
		return fmt.Errorf("lastId %d is below highest attempt id %d", c.LastID, prev)
	}
	return nil
}
