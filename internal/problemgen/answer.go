package problemgen

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Tolerance is the absolute difference under which an answer counts as correct.
const Tolerance = 0.01

// ErrNotNumeric is returned by ParseAnswer for input that is not a plain number.
var ErrNotNumeric = errors.New("answer is not a number")

// numericRe accepts an optional sign, digits, and an optional decimal part.
// Exponents, hex floats, and Inf/NaN spellings are rejected.
var numericRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseAnswer converts learner input into a number.
//
// Normalization rules:
// - Whitespace is trimmed
// - A leading "+" or "-" is allowed
// - "7.", ".5" and "007" are accepted
// - Anything else returns ErrNotNumeric
func ParseAnswer(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !numericRe.MatchString(s) {
		return 0, ErrNotNumeric
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrNotNumeric
	}
	return v, nil
}

// IsCorrect reports whether |user - correct| < Tolerance.
func IsCorrect(user, correct float64) bool {
	return math.Abs(user-correct) < Tolerance
}

// FormatNumber renders a value without a trailing ".0" for whole numbers.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CheckAnswer parses the learner input and compares it to the question's answer.
// Non-numeric input is never correct.
func CheckAnswer(input string, q Question) bool {
	v, err := ParseAnswer(input)
	if err != nil {
		return false
	}
	return q.Check(v)
}
