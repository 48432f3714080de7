package levels

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	sessionscreen "github.com/Agampodige/MathDrill/internal/screens/session"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// playLevel builds the session screen for level id.
func playLevel(svc *screen.Services, id int) screen.Screen {
	return sessionscreen.NewLevel(svc, id)
}

// DetailScreen shows the requirements and records of one level.
type DetailScreen struct {
	svc       *screen.Services
	level     level.Level
	levelName func(id int) string
}

var (
	_ screen.Screen          = (*DetailScreen)(nil)
	_ screen.KeyHintProvider = (*DetailScreen)(nil)
)

func newDetail(svc *screen.Services, lv level.Level, levelName func(int) string) *DetailScreen {
	return &DetailScreen{svc: svc, level: lv, levelName: levelName}
}

func (d *DetailScreen) Init() tea.Cmd { return nil }
func (d *DetailScreen) Title() string { return fmt.Sprintf("Level %d", d.level.ID) }

func (d *DetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch kmsg.String() {
	case "enter", "p":
		if d.level.IsLocked {
			return d, nil
		}
		next := playLevel(d.svc, d.level.ID)
		return d, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case "q":
		return d, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return d, nil
}

func (d *DetailScreen) KeyHints() []layout.KeyHint {
	if d.level.IsLocked {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Play"},
		{Key: "Esc", Description: "Back"},
	}
}

func (d *DetailScreen) View(width, height int) string {
	lv := d.level
	icon, label := stateIcon(lv)
	contentWidth := min(width-8, 70)

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)
	section := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("  %s  Level %d: %s", icon, lv.ID, lv.Name)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + label))
	b.WriteString("\n\n")

	desc := lv.Description
	if lv.DescriptionLong != "" {
		desc = lv.DescriptionLong
	}
	if desc != "" {
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Text).
			Width(contentWidth).
			PaddingLeft(2).
			Render(desc))
		b.WriteString("\n\n")
	}

	b.WriteString(dimStyle.Render("  Operation: ") +
		valStyle.Render(fmt.Sprintf("%s (%s)", lv.Operation.DisplayName(), lv.Operation.Symbol())) + "\n")
	b.WriteString(dimStyle.Render("  Digits:    ") + valStyle.Render(fmt.Sprintf("%d", lv.Digits)) + "\n\n")

	b.WriteString(section.Render("  Requirements"))
	b.WriteString("\n")
	req := lv.Requirements
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d correct out of %d questions", req.MinCorrect, req.TotalQuestions)))
	b.WriteString("\n")
	if lv.Timed() {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).
			Render(fmt.Sprintf("  Time limit: %d:%02d", req.TimeLimit/60, req.TimeLimit%60)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if lv.IsCompleted {
		b.WriteString(section.Render("  Best Run"))
		b.WriteString("\n")
		b.WriteString("  " + theme.Stars(lv.StarsEarned, level.MaxStars) + "\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Accuracy %.0f%%  ·  Time %.1fs", lv.BestAccuracy, lv.BestTime)))
		b.WriteString("\n\n")
	}

	if lv.IsLocked {
		b.WriteString(section.Render("  To Unlock"))
		b.WriteString("\n")
		b.WriteString(theme.Locked.Render("  " + level.ParseCondition(lv.UnlockCondition).String()))
		b.WriteString("\n\n")
	}

	if next := lv.Rewards.UnlocksLevel; next > 0 && d.levelName != nil {
		if name := d.levelName(next); name != "" {
			b.WriteString(section.Render("  Unlocks"))
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("  → Level %d: %s", next, name)))
			b.WriteString("\n")
		}
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "\n"+b.String())
}
