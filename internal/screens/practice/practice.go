// Package practice is the free drill setup screen.
package practice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	sessionscreen "github.com/Agampodige/MathDrill/internal/screens/session"
	"github.com/Agampodige/MathDrill/internal/session"
	"github.com/Agampodige/MathDrill/internal/settings"
	"github.com/Agampodige/MathDrill/internal/stats"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

const (
	fieldOperation = iota
	fieldDigits
	fieldCount
	fieldCountTotal
)

// historyMsg carries per-operation totals from the attempt history.
type historyMsg struct {
	byOp map[problemgen.Operation]stats.Totals
}

// PracticeScreen picks the operation, digit count and length of a drill.
type PracticeScreen struct {
	svc    *screen.Services
	fields [fieldCountTotal]components.Selector
	focus  int
	byOp   map[problemgen.Operation]stats.Totals
}

var (
	_ screen.Screen          = (*PracticeScreen)(nil)
	_ screen.KeyHintProvider = (*PracticeScreen)(nil)
	_ screen.Resumer         = (*PracticeScreen)(nil)
)

// countOptions returns the selectable question counts including current.
func countOptions(current int) []string {
	counts := settings.ProblemChoices(current)
	out := make([]string, len(counts))
	for i, n := range counts {
		out[i] = strconv.Itoa(n)
	}
	return out
}

// New creates the setup screen with the digits and count from settings.
func New(svc *screen.Services) *PracticeScreen {
	ops := make([]string, len(problemgen.Operations))
	for i, op := range problemgen.Operations {
		ops[i] = op.DisplayName()
	}
	digits := make([]string, 0, problemgen.MaxDigits)
	for d := problemgen.MinDigits; d <= problemgen.MaxDigits; d++ {
		digits = append(digits, strconv.Itoa(d))
	}

	p := &PracticeScreen{svc: svc}
	p.fields[fieldOperation] = components.NewSelector("Operation", ops, "")
	p.fields[fieldOperation].Wrap = true
	p.fields[fieldDigits] = components.NewSelector("Digits", digits, strconv.Itoa(svc.Prefs.Digits()))
	p.fields[fieldCount] = components.NewSelector("Questions", countOptions(svc.Prefs.ProblemsPerSession),
		strconv.Itoa(svc.Prefs.ProblemsPerSession))
	p.fields[fieldOperation].Focused = true
	return p
}

func (p *PracticeScreen) Init() tea.Cmd {
	return p.loadHistory()
}

// Resume refreshes the accuracy hint after a drill.
func (p *PracticeScreen) Resume() tea.Cmd {
	return p.loadHistory()
}

func (p *PracticeScreen) loadHistory() tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		all, err := svc.Attempts.LoadAll(context.Background())
		if err != nil {
			svc.Log().Warn("load attempts for practice setup", "err", err)
			return historyMsg{}
		}
		return historyMsg{byOp: stats.Aggregate(all, svc.Clock()).ByOperation}
	}
}

func (p *PracticeScreen) Title() string {
	return "Practice"
}

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

// Config returns the drill selected on screen.
func (p *PracticeScreen) Config() session.Config {
	op := problemgen.Operations[p.fields[fieldOperation].Selected]
	digits, _ := strconv.Atoi(p.fields[fieldDigits].Value())
	count, _ := strconv.Atoi(p.fields[fieldCount].Value())
	return session.PracticeConfig(op, digits, count)
}

func (p *PracticeScreen) setFocus(i int) {
	p.fields[p.focus].Focused = false
	p.focus = (i + fieldCountTotal) % fieldCountTotal
	p.fields[p.focus].Focused = true
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		p.byOp = msg.byOp
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.setFocus(p.focus - 1)
			return p, nil
		case "down", "j", "tab":
			p.setFocus(p.focus + 1)
			return p, nil
		case "enter":
			next := sessionscreen.New(p.svc, p.Config())
			return p, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
		var cmd tea.Cmd
		p.fields[p.focus], cmd = p.fields[p.focus].Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *PracticeScreen) historyLine() string {
	op := problemgen.Operations[p.fields[fieldOperation].Selected]
	t, ok := p.byOp[op]
	if !ok || t.Count == 0 {
		return fmt.Sprintf("No %s answers yet", op)
	}
	return fmt.Sprintf("Your %s accuracy: %d%% over %d answers, %.1fs average",
		op, t.Accuracy, t.Count, t.AvgTime)
}

func (p *PracticeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	rows := make([]string, 0, fieldCountTotal)
	for _, f := range p.fields {
		rows = append(rows, f.View(12))
	}
	form := components.ArcadeCard(strings.Join(rows, "\n\n"), cw)

	cfg := p.Config()
	preview := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(
		fmt.Sprintf("%d questions of %d-digit %s", cfg.Count, cfg.Digits, cfg.Operation))
	hint := theme.Hint.Render(p.historyLine())

	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Render("Free Drill"),
		"",
		form,
		"",
		preview,
		hint,
		"",
		components.ArcadeButton("START", true, 22),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
