package problemgen

import (
	"errors"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"42", 42, false},
		{" 42 ", 42, false},
		{"042", 42, false},
		{"-15", -15, false},
		{"+3", 3, false},
		{"3.5", 3.5, false},
		{"7.", 7, false},
		{".5", 0.5, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1e5", 0, true},
		{"Inf", 0, true},
		{"NaN", 0, true},
		{"0x10", 0, true},
		{"4 2", 0, true},
		{"--1", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseAnswer(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrNotNumeric) {
				t.Errorf("ParseAnswer(%q) error = %v, want ErrNotNumeric", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAnswer(%q) unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAnswer(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsCorrect_Tolerance(t *testing.T) {
	tests := []struct {
		user, correct float64
		want          bool
	}{
		{3, 3, true},
		{3.009, 3, true},
		{2.991, 3, true},
		{3.011, 3, false},
		{3.02, 3, false},
		{2.98, 3, false},
		{-4, -4, true},
		{4, -4, false},
		{0.333, 1.0 / 3.0, true},
	}

	for _, tc := range tests {
		if got := IsCorrect(tc.user, tc.correct); got != tc.want {
			t.Errorf("IsCorrect(%v, %v) = %v, want %v", tc.user, tc.correct, got, tc.want)
		}
	}
}

func TestCheckAnswer(t *testing.T) {
	q := Question{Operation: OpAddition, Digits: 2, Text: "40 + 2", Answer: 42}

	tests := []struct {
		input string
		want  bool
	}{
		{"42", true},
		{" 42 ", true},
		{"42.0", true},
		{"42.005", true},
		{"43", false},
		{"", false},
		{"forty-two", false},
	}

	for _, tc := range tests {
		if got := CheckAnswer(tc.input, q); got != tc.want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{42, "42"},
		{-7, "-7"},
		{3.5, "3.5"},
		{0, "0"},
		{0.25, "0.25"},
	}
	for _, tc := range tests {
		if got := FormatNumber(tc.v); got != tc.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}
