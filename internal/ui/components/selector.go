package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// Selector is a labelled one-of-many field cycled with left/right.
type Selector struct {
	Label    string
	Options  []string
	Selected int
	Focused  bool
	Wrap     bool
}

// NewSelector creates a selector with the option equal to current chosen.
// An unknown current selects the first option.
func NewSelector(label string, options []string, current string) Selector {
	s := Selector{Label: label, Options: options}
	for i, o := range options {
		if o == current {
			s.Selected = i
			break
		}
	}
	return s
}

// Value returns the chosen option, "" when there are none.
func (s Selector) Value() string {
	if s.Selected < 0 || s.Selected >= len(s.Options) {
		return ""
	}
	return s.Options[s.Selected]
}

// Update handles left/right when focused.
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	if !s.Focused || len(s.Options) == 0 {
		return s, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "left", "h":
		switch {
		case s.Selected > 0:
			s.Selected--
		case s.Wrap:
			s.Selected = len(s.Options) - 1
		}
	case "right", "l":
		switch {
		case s.Selected < len(s.Options)-1:
			s.Selected++
		case s.Wrap:
			s.Selected = 0
		}
	}
	return s, nil
}

// View renders the selector on one line at the given label width.
func (s Selector) View(labelWidth int) string {
	label := lipgloss.NewStyle().
		Width(labelWidth).
		Foreground(theme.TextDim).
		Render(s.Label)

	value := fmt.Sprintf("◂ %s ▸", s.Value())
	if s.Focused {
		return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("▸ ") +
			label + theme.Selected.Render(value)
	}
	return "  " + label + theme.Unselected.Render(value)
}
