package problemgen

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// MathCheckValidator independently evaluates the question text and compares
// the result with the stored answer.
type MathCheckValidator struct{}

func (v *MathCheckValidator) Name() string { return "math-check" }

func (v *MathCheckValidator) Validate(q Question) *ValidationError {
	computed, err := Evaluate(q.Text)
	if err != nil {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("cannot evaluate %q: %v", q.Text, err),
		}
	}
	if !computed.IsInt() || !computed.Num().IsInt64() || computed.Num().Int64() != q.Answer {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("computed %s but question claims %d", computed.RatString(), q.Answer),
		}
	}
	return nil
}

var errDivByZero = errors.New("division by zero")

// Evaluate computes the exact value of an arithmetic expression.
//
// Supported syntax: non-negative integer literals, unary minus, + - × * ÷ /,
// parentheses, and ⌊ ⌋ for floor. A trailing "= ?" is ignored.
func Evaluate(text string) (*big.Rat, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "?")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "=")

	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected %q at token %d", p.toks[p.pos].text, p.pos)
	}
	return v, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			continue
		case r >= '0' && r <= '9':
			j := i
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[i:j])})
			i = j - 1
		case strings.ContainsRune("+-−×*÷/()⌊⌋", r):
			toks = append(toks, token{kind: tokOp, text: normalizeOp(r)})
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	if len(toks) == 0 {
		return nil, errors.New("empty expression")
	}
	return toks, nil
}

// normalizeOp maps display glyphs to their ASCII operator.
func normalizeOp(r rune) string {
	switch r {
	case '×':
		return "*"
	case '÷':
		return "/"
	case '−':
		return "-"
	default:
		return string(r)
	}
}

// exprParser is a recursive-descent parser that evaluates while parsing.
type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) acceptOp(ops ...string) (string, bool) {
	t, ok := p.peek()
	if !ok || t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *exprParser) expr() (*big.Rat, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			left = new(big.Rat).Add(left, right)
		} else {
			left = new(big.Rat).Sub(left, right)
		}
	}
}

func (p *exprParser) term() (*big.Rat, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "*" {
			left = new(big.Rat).Mul(left, right)
			continue
		}
		if right.Sign() == 0 {
			return nil, errDivByZero
		}
		left = new(big.Rat).Quo(left, right)
	}
}

func (p *exprParser) unary() (*big.Rat, error) {
	if _, ok := p.acceptOp("-"); ok {
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		return new(big.Rat).Neg(v), nil
	}
	return p.primary()
}

func (p *exprParser) primary() (*big.Rat, error) {
	t, ok := p.peek()
	if !ok {
		return nil, errors.New("unexpected end of expression")
	}
	if t.kind == tokNumber {
		p.pos++
		v, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, fmt.Errorf("bad number %q", t.text)
		}
		return v, nil
	}

	if _, ok := p.acceptOp("("); ok {
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.acceptOp(")"); !ok {
			return nil, errors.New("missing )")
		}
		return v, nil
	}

	if _, ok := p.acceptOp("⌊"); ok {
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.acceptOp("⌋"); !ok {
			return nil, errors.New("missing ⌋")
		}
		return floorRat(v), nil
	}

	return nil, fmt.Errorf("unexpected %q", t.text)
}

// floorRat rounds toward negative infinity. big.Int.Div is Euclidean, which
// is floor division for the always-positive denominator of a big.Rat.
func floorRat(v *big.Rat) *big.Rat {
	q := new(big.Int).Div(v.Num(), v.Denom())
	return new(big.Rat).SetInt(q)
}
