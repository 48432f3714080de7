package problemgen

import (
	"fmt"
	"math/rand/v2"
)

// complexTemplate builds one mixed-operation question. Additive operands
// take the requested digit count; factors are capped at two digits.
type complexTemplate func(r *rand.Rand, digits int) (text string, answer int64)

// complexTemplates are evaluated with their explicit parenthesization.
// Any division is floored and shown inside ⌊ ⌋.
var complexTemplates = []complexTemplate{
	func(r *rand.Rand, d int) (string, int64) {
		a, b, c := operand(r, d), operand(r, d), operand(r, d)
		return fmt.Sprintf("%d + %d + %d", a, b, c), a + b + c
	},
	func(r *rand.Rand, d int) (string, int64) {
		a, b, c, e := operand(r, d), operand(r, d), operand(r, d), operand(r, d)
		return fmt.Sprintf("%d + %d + %d + %d", a, b, c, e), a + b + c + e
	},
	func(r *rand.Rand, d int) (string, int64) {
		a, b, c := operand(r, d), operand(r, d), operand(r, d)
		if a < b {
			a, b = b, a
		}
		return fmt.Sprintf("%d - %d + %d", a, b, c), a - b + c
	},
	func(r *rand.Rand, d int) (string, int64) {
		f := min(d, 2)
		a, b, c := operand(r, f), operand(r, f), operand(r, d)
		return fmt.Sprintf("%d × %d + %d", a, b, c), a*b + c
	},
	func(r *rand.Rand, d int) (string, int64) {
		f := min(d, 2)
		a, b, c, e := operand(r, f), operand(r, f), operand(r, d), operand(r, f)
		return fmt.Sprintf("%d × %d + %d - %d", a, b, c, e), a*b + c - e
	},
	func(r *rand.Rand, d int) (string, int64) {
		f := min(d, 2)
		a, b, c, e := operand(r, f), operand(r, f), operand(r, d), operand(r, f)
		return fmt.Sprintf("(%d + %d) × %d - %d", a, b, c, e), (a+b)*c - e
	},
	func(r *rand.Rand, d int) (string, int64) {
		a, b, c := operand(r, d), operand(r, d), divisor(r, d)
		return fmt.Sprintf("⌊%d ÷ %d⌋ + %d", a, c, b), floorDiv(a, c) + b
	},
	func(r *rand.Rand, d int) (string, int64) {
		a, b, c := operand(r, d), operand(r, d), between(r, 2, 9)
		if a < b {
			a, b = b, a
		}
		return fmt.Sprintf("⌊(%d - %d) ÷ %d⌋", a, b, c), floorDiv(a-b, c)
	},
	func(r *rand.Rand, d int) (string, int64) {
		a, b, c := operand(r, d), operand(r, d), between(r, 2, 9)
		return fmt.Sprintf("⌊(%d + %d) ÷ %d⌋", a, b, c), floorDiv(a+b, c)
	},
}

// ComplexTemplateCount is the number of mixed-operation templates.
var ComplexTemplateCount = len(complexTemplates)

// divisor draws a divisor one digit shorter than digits. It is never
// below 2 since dividing by 1 is trivial.
func divisor(r *rand.Rand, digits int) int64 {
	v := operand(r, max(1, digits-1))
	if v < 2 {
		v = between(r, 2, 9)
	}
	return v
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int64N(hi-lo+1)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
