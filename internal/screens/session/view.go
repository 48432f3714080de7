package session

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/problemgen"
	sess "github.com/Agampodige/MathDrill/internal/session"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.fatal != "" {
		return renderError(width, s.fatal)
	}
	if s.quitConfirm {
		return renderQuitConfirm(width)
	}
	switch s.ctrl.Phase() {
	case sess.PhaseAwaitingAnswer:
		return s.renderQuestionView(width)
	case sess.PhaseFeedback:
		return s.renderFeedback(width)
	case sess.PhaseComplete:
		return renderLoading(width, "Tallying your results...")
	default:
		return renderLoading(width, "Preparing your session...")
	}
}

// clock renders d as m:ss.
func clock(d time.Duration) string {
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

// renderInfoLine renders the drill name on the left and the counters on the right.
func (s *SessionScreen) renderInfoLine(width int) string {
	cfg := s.ctrl.Config()
	name := fmt.Sprintf("%s · %d digits", cfg.Operation.DisplayName(), cfg.Digits)
	if cfg.Level != nil {
		name = fmt.Sprintf("Level %d: %s", cfg.Level.ID, cfg.Level.Name)
	}
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + name)

	answered, total := s.ctrl.Progress()
	current := min(answered+1, total)
	if s.ctrl.Phase() == sess.PhaseFeedback {
		current = answered
	}
	parts := []string{
		fmt.Sprintf("Q %d/%d", current, total),
		lipgloss.NewStyle().Foreground(theme.Success).Render("✓") + fmt.Sprintf(" %d", s.ctrl.Correct()),
	}
	if st := s.ctrl.Streak(); st > 1 {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.Accent).Render("▲")+fmt.Sprintf(" %d", st))
	}
	if s.svc.Prefs.ShowAccuracy && answered > 0 {
		parts = append(parts, fmt.Sprintf("%d%%", s.ctrl.RunningAccuracy()))
	}
	if left, timed := s.ctrl.Remaining(s.now); timed {
		style := lipgloss.NewStyle().Foreground(theme.Accent)
		if left <= 10*time.Second {
			style = style.Foreground(theme.Error).Bold(true)
		}
		parts = append(parts, style.Render("T "+clock(left)))
	} else if s.svc.Prefs.ShowTimer {
		parts = append(parts, "⏱ "+clock(s.ctrl.QuestionElapsed(s.now)))
	}
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(strings.Join(parts, "  "))

	line := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + infoRight
	}
	return line
}

func (s *SessionScreen) renderHeader(width int) string {
	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")

	answered, total := s.ctrl.Progress()
	bar := components.NewProgressBar("", float64(answered)/float64(max(total, 1)), false, max(width-8, 10))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")
	return b.String()
}

// renderQuestionView renders the active question display.
func (s *SessionScreen) renderQuestionView(width int) string {
	var b strings.Builder
	b.WriteString(s.renderHeader(width))

	q := s.ctrl.Question()
	b.WriteString(centered(width).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text + " = ?"))
	b.WriteString("\n\n")

	b.WriteString(centered(width).Render("Answer: " + s.input.View()))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Foreground(theme.Error).Render(s.errMsg))
	}
	if s.svc.Prefs.AutoCheckAnswers {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Foreground(theme.TextDim).Italic(true).
			Render("Auto-check is on: answers submit once all digits are typed"))
	}
	return b.String()
}

// renderFeedback renders the result of the last answer.
func (s *SessionScreen) renderFeedback(width int) string {
	fb := s.ctrl.LastFeedback()
	if fb == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.renderHeader(width))

	q := s.ctrl.Question()
	b.WriteString(centered(width).Foreground(theme.Text).Render(
		fmt.Sprintf("%s = %s", q.Text, problemgen.FormatNumber(fb.UserAnswer))))
	b.WriteString("\n\n")

	if fb.Correct {
		b.WriteString(centered(width).Inherit(theme.Correct).Render("Correct!"))
	} else {
		b.WriteString(centered(width).Inherit(theme.Incorrect).Render("Not quite"))
		b.WriteString("\n")
		b.WriteString(centered(width).Foreground(theme.TextDim).
			Render("Correct answer: " + problemgen.FormatNumber(fb.CorrectAnswer)))
	}
	b.WriteString("\n\n")

	b.WriteString(centered(width).Foreground(theme.TextDim).
		Render(fmt.Sprintf("Answered in %.1fs", fb.TimeTaken.Seconds())))
	b.WriteString("\n\n")

	hint := "Press any key to continue..."
	if fb.Last {
		hint = "Press any key to see your results..."
	}
	b.WriteString(centered(width).Foreground(theme.TextDim).Render(hint))
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width).Foreground(theme.Text).Bold(true).Render("End session early?"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Answers so far are already saved."))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Foreground(theme.Success).Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.Primary).Render("[N] No, keep going"))
	return b.String()
}

// renderLoading renders a waiting message.
func renderLoading(width int, text string) string {
	return centered(width).Foreground(theme.TextDim).Render("\n\n\n" + text)
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return centered(width).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n%s\n\nPress Esc to go back.", errMsg))
}
