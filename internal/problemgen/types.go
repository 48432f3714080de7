package problemgen

import "fmt"

// Operation identifies the kind of arithmetic a question exercises.
type Operation string

const (
	OpAddition       Operation = "addition"
	OpSubtraction    Operation = "subtraction"
	OpMultiplication Operation = "multiplication"
	OpDivision       Operation = "division"
	OpComplex        Operation = "complex"
)

// Operations lists every operation in display order.
var Operations = []Operation{
	OpAddition,
	OpSubtraction,
	OpMultiplication,
	OpDivision,
	OpComplex,
}

const (
	// MinDigits is the smallest supported operand width.
	MinDigits = 1

	// MaxDigits keeps every operand and answer inside the exact range of float64.
	MaxDigits = 9
)

// ParseOperation converts a user or wire value into an Operation.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	_, err := ParseOperation(string(op))
	return err == nil
}

// DisplayName returns the human label used in tables and screens.
func (op Operation) DisplayName() string {
	switch op {
	case OpAddition:
		return "Addition (+)"
	case OpSubtraction:
		return "Subtraction (-)"
	case OpMultiplication:
		return "Multiplication (×)"
	case OpDivision:
		return "Division (÷)"
	case OpComplex:
		return "Complex (Mixed)"
	default:
		return string(op)
	}
}

// Symbol returns the operator glyph used in question text.
func (op Operation) Symbol() string {
	switch op {
	case OpAddition:
		return "+"
	case OpSubtraction:
		return "-"
	case OpMultiplication:
		return "×"
	case OpDivision:
		return "÷"
	default:
		return "?"
	}
}

// Question is a generated arithmetic question ready for display.
type Question struct {
	// Operation and Digits are the parameters the question was generated for.
	Operation Operation
	Digits    int

	// Text is the expression shown to the learner, e.g. "42 + 7".
	// Templates that floor a quotient wrap it in ⌊ ⌋.
	Text string

	// Answer is the exact expected value.
	Answer int64
}

// AnswerValue returns the expected answer as the float used for tolerance checks.
func (q Question) AnswerValue() float64 {
	return float64(q.Answer)
}

// Check reports whether the submitted value matches the expected answer.
func (q Question) Check(userAnswer float64) bool {
	return IsCorrect(userAnswer, q.AnswerValue())
}

// ClampDigits forces digits into [MinDigits, MaxDigits].
func ClampDigits(digits int) int {
	if digits < MinDigits {
		return MinDigits
	}
	if digits > MaxDigits {
		return MaxDigits
	}
	return digits
}
