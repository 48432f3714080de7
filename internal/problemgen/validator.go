package problemgen

import "fmt"

// Validator checks a generated question for correctness.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "math-check".
	Name() string

	// Validate returns nil if the question passes.
	Validate(q Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// ShapeValidator rejects questions with empty text, bad digits, or an
// unknown operation.
type ShapeValidator struct{}

func (v *ShapeValidator) Name() string { return "shape" }

func (v *ShapeValidator) Validate(q Question) *ValidationError {
	switch {
	case q.Text == "":
		return &ValidationError{Validator: v.Name(), Message: "empty question text"}
	case !q.Operation.Valid():
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("unknown operation %q", q.Operation)}
	case q.Digits < MinDigits || q.Digits > MaxDigits:
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("digits %d out of range", q.Digits)}
	case q.Operation == OpSubtraction && q.Answer < 0:
		return &ValidationError{Validator: v.Name(), Message: "negative subtraction result"}
	}
	return nil
}
