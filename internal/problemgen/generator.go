package problemgen

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Generator produces arithmetic questions.
type Generator interface {
	// Generate produces a single question for the operation and digit count.
	// It never fails: digits is clamped into [MinDigits, MaxDigits].
	Generate(op Operation, digits int) Question
}

// RandomGenerator draws operands uniformly and runs the configured
// validators on every question. Safe for concurrent use.
type RandomGenerator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	config Config
}

var _ Generator = (*RandomGenerator)(nil)

// New creates a RandomGenerator seeded from the clock.
func New(cfg Config) *RandomGenerator {
	seed := uint64(time.Now().UnixNano())
	return NewSeeded(cfg, seed)
}

// NewSeeded creates a deterministic RandomGenerator.
func NewSeeded(cfg Config, seed uint64) *RandomGenerator {
	return &RandomGenerator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		config: cfg,
	}
}

// Generate implements Generator.
func (g *RandomGenerator) Generate(op Operation, digits int) Question {
	g.mu.Lock()
	defer g.mu.Unlock()

	digits = ClampDigits(digits)
	var q Question
	for attempt := 0; ; attempt++ {
		q = g.generate(op, digits)
		if attempt >= g.config.MaxRegenerations || g.validate(q) == nil {
			return q
		}
	}
}

// GenerateSet pre-generates n questions, as a level does before it starts.
func (g *RandomGenerator) GenerateSet(op Operation, digits, n int) []Question {
	qs := make([]Question, 0, max(n, 0))
	for range n {
		qs = append(qs, g.Generate(op, digits))
	}
	return qs
}

func (g *RandomGenerator) validate(q Question) *ValidationError {
	for _, v := range g.config.Validators {
		if err := v.Validate(q); err != nil {
			return err
		}
	}
	return nil
}

func (g *RandomGenerator) generate(op Operation, digits int) Question {
	q := Question{Operation: op, Digits: digits}
	r := g.rng

	switch op {
	case OpSubtraction:
		a, b := operand(r, digits), operand(r, digits)
		if a < b {
			a, b = b, a
		}
		q.Text = fmt.Sprintf("%d - %d", a, b)
		q.Answer = a - b

	case OpMultiplication:
		d := min(digits, 3)
		a, b := operand(r, d), operand(r, d)
		q.Text = fmt.Sprintf("%d × %d", a, b)
		q.Answer = a * b

	case OpDivision:
		dv := divisor(r, digits)
		quotient := operand(r, digits)
		q.Text = fmt.Sprintf("%d ÷ %d", dv*quotient, dv)
		q.Answer = quotient

	case OpComplex:
		tmpl := complexTemplates[r.IntN(len(complexTemplates))]
		q.Text, q.Answer = tmpl(r, digits)

	default:
		q.Operation = OpAddition
		a, b := operand(r, digits), operand(r, digits)
		q.Text = fmt.Sprintf("%d + %d", a, b)
		q.Answer = a + b
	}
	return q
}

// operand draws uniformly from [10^(d-1), 10^d - 1].
func operand(r *rand.Rand, digits int) int64 {
	lo, hi := DigitRange(digits)
	return between(r, lo, hi)
}

// DigitRange returns the inclusive operand bounds for a digit count.
func DigitRange(digits int) (lo, hi int64) {
	digits = ClampDigits(digits)
	lo = 1
	for range digits - 1 {
		lo *= 10
	}
	hi = lo*10 - 1
	return lo, hi
}
