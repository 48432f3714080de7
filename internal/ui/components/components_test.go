package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestSelector_Cycles(t *testing.T) {
	s := NewSelector("Digits", []string{"1", "2", "3"}, "2")
	if s.Value() != "2" {
		t.Fatalf("initial value = %q, want 2", s.Value())
	}

	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if s.Value() != "2" {
		t.Error("unfocused selector should ignore keys")
	}

	s.Focused = true
	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if s.Value() != "3" {
		t.Errorf("value = %q, want 3 (clamped)", s.Value())
	}

	s.Wrap = true
	s, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if s.Value() != "1" {
		t.Errorf("value = %q, want 1 after wrapping", s.Value())
	}
}

func TestSelector_UnknownCurrent(t *testing.T) {
	s := NewSelector("Theme", []string{"auto", "light"}, "neon")
	if s.Value() != "auto" {
		t.Errorf("value = %q, want auto", s.Value())
	}
	if !strings.Contains(s.View(10), "auto") {
		t.Error("view should show the value")
	}
}

func TestTextInput_NumericOnly(t *testing.T) {
	in := NewTextInput("answer", true, 12)
	for _, r := range "-1x2.5a" {
		in, _ = in.Update(key(r))
	}
	if in.Value() != "-12.5" {
		t.Errorf("Value = %q, want -12.5", in.Value())
	}

	in.Submit(true)
	if !strings.Contains(in.View(), "✓") {
		t.Error("submitted input should show a check mark")
	}
	in.Reset()
	if in.Value() != "" || strings.Contains(in.View(), "✓") {
		t.Error("Reset should clear the value and the mark")
	}
}

func TestProgressBar_ShowsPercent(t *testing.T) {
	bar := NewProgressBar("Accuracy", 0.75, true, 30)
	if !strings.Contains(bar.View(), "75%") {
		t.Errorf("percent label missing: %q", bar.View())
	}
}

func TestContentWidth(t *testing.T) {
	if got := ContentWidth(200); got != 60 {
		t.Errorf("ContentWidth(200) = %d, want 60", got)
	}
	if got := ContentWidth(10); got != 20 {
		t.Errorf("ContentWidth(10) = %d, want 20", got)
	}
}
