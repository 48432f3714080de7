package problemgen

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"345 + 278", "623"},
		{"567 - 289", "278"},
		{"23 × 45", "1035"},
		{"23 * 45", "1035"},
		{"144 ÷ 12", "12"},
		{"7 ÷ 2", "7/2"},
		{"(12 + 3) × 4", "60"},
		{"12 + 3 × 4", "24"},
		{"⌊(150 - 20) ÷ 3⌋", "43"},
		{"⌊250 ÷ 7⌋ + 30", "65"},
		{"50 - 30 + 10", "30"},
		{"⌊-7 ÷ 2⌋", "-4"},
		{"-3 + 5", "2"},
		{"40 + 2 = ?", "42"},
	}

	for _, tc := range tests {
		got, err := Evaluate(tc.text)
		if err != nil {
			t.Errorf("Evaluate(%q) unexpected error: %v", tc.text, err)
			continue
		}
		if got.RatString() != tc.want {
			t.Errorf("Evaluate(%q) = %s, want %s", tc.text, got.RatString(), tc.want)
		}
	}
}

func TestEvaluate_Errors(t *testing.T) {
	texts := []string{
		"",
		"What is 3 + 4?",
		"3 +",
		"(3 + 4",
		"⌊7 ÷ 2",
		"5 ÷ 0",
		"3 4",
	}
	for _, text := range texts {
		if _, err := Evaluate(text); err == nil {
			t.Errorf("Evaluate(%q) expected error", text)
		}
	}
}

func TestMathCheck_Addition(t *testing.T) {
	v := &MathCheckValidator{}

	q := Question{Operation: OpAddition, Digits: 3, Text: "345 + 278", Answer: 623}
	if err := v.Validate(q); err != nil {
		t.Fatalf("correct addition should pass: %v", err)
	}

	q.Answer = 612
	if err := v.Validate(q); err == nil {
		t.Fatal("wrong addition should fail")
	}
}

func TestMathCheck_Division(t *testing.T) {
	v := &MathCheckValidator{}

	q := Question{Operation: OpDivision, Digits: 2, Text: "144 ÷ 12", Answer: 12}
	if err := v.Validate(q); err != nil {
		t.Fatalf("exact division should pass: %v", err)
	}

	q.Text = "145 ÷ 12"
	if err := v.Validate(q); err == nil {
		t.Fatal("inexact division should fail")
	}
}

func TestMathCheck_FloorTemplates(t *testing.T) {
	v := &MathCheckValidator{}

	tests := []struct {
		text   string
		answer int64
	}{
		{"⌊(100 - 15) ÷ 4⌋", 21},
		{"⌊(120 + 55) ÷ 6⌋", 29},
		{"⌊200 ÷ 3⌋ + 25", 91},
	}
	for _, tc := range tests {
		q := Question{Operation: OpComplex, Digits: 2, Text: tc.text, Answer: tc.answer}
		if err := v.Validate(q); err != nil {
			t.Errorf("expected %q = %d to pass: %v", tc.text, tc.answer, err)
		}
	}
}

func TestMathCheck_NonComputable(t *testing.T) {
	v := &MathCheckValidator{}
	q := Question{Operation: OpAddition, Digits: 1, Text: "what is two plus two", Answer: 4}
	if err := v.Validate(q); err == nil {
		t.Fatal("non-computable text should fail")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{7, 2, 3},
		{6, 2, 3},
		{-7, 2, -4},
		{-6, 2, -3},
		{7, -2, -4},
		{0, 5, 0},
	}
	for _, tc := range tests {
		if got := floorDiv(tc.a, tc.b); got != tc.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
