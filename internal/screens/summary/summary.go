package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/session"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// Actions builds the follow-up screens. The session screen supplies them
// so this package does not import it.
type Actions struct {
	// Play starts a new run with cfg.
	Play func(cfg session.Config) screen.Screen

	// PlayLevel starts the level with the given id.
	PlayLevel func(id int) screen.Screen
}

// SummaryScreen displays the results of a finished run.
type SummaryScreen struct {
	summary session.Summary
	cfg     session.Config
	actions Actions
	notify  bool
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
	_ screen.BackHandler     = (*SummaryScreen)(nil)
)

// New creates a summary for a run played with cfg. notify shows the
// unlock notice for a passed level.
func New(sum session.Summary, cfg session.Config, actions Actions, notify bool) *SummaryScreen {
	return &SummaryScreen{summary: sum, cfg: cfg, actions: actions, notify: notify}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return func() tea.Msg { return screen.RefreshStatusMsg{} }
}

func (s *SummaryScreen) Title() string {
	if s.summary.Mode == session.ModeLevel {
		return "Level Summary"
	}
	return "Session Summary"
}

// HandlesBack sends Esc home instead of back to the setup screen.
func (s *SummaryScreen) HandlesBack() bool { return true }

func (s *SummaryScreen) nextLevel() int {
	res := s.summary.Level
	if res == nil || !res.Success {
		return 0
	}
	return res.NextLevelID
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Play again"}}
	if s.nextLevel() > 0 && s.actions.PlayLevel != nil {
		hints = append(hints, layout.KeyHint{Key: "N", Description: "Next level"})
	}
	if s.summary.SuggestedDigits > 0 {
		hints = append(hints, layout.KeyHint{Key: "A", Description: fmt.Sprintf("Try %d digits", s.summary.SuggestedDigits)})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
}

func replace(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: sc} }
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter":
		if s.cfg.Mode == session.ModeLevel && s.cfg.Level != nil && s.actions.PlayLevel != nil {
			return s, replace(s.actions.PlayLevel(s.cfg.Level.ID))
		}
		if s.actions.Play != nil {
			return s, replace(s.actions.Play(s.cfg))
		}
	case "n":
		if next := s.nextLevel(); next > 0 && s.actions.PlayLevel != nil {
			return s, replace(s.actions.PlayLevel(next))
		}
	case "a":
		if d := s.summary.SuggestedDigits; d > 0 && s.actions.Play != nil {
			cfg := s.cfg
			cfg.Digits = d
			return s, replace(s.actions.Play(cfg))
		}
	case "esc", "q":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

func center(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

// formatDuration renders d as m:ss, or with tenths under a minute.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (s *SummaryScreen) heading() (string, lipgloss.Style) {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	res := s.summary.Level
	switch {
	case res != nil && res.Error != "":
		return "Could not save this run", style.Foreground(theme.Error)
	case s.summary.TimedOut:
		return "Time's up!", style.Foreground(theme.Accent)
	case res != nil && res.Success:
		return "Level complete!", style.Foreground(theme.Success)
	case res != nil:
		return "Level failed", style.Foreground(theme.Error)
	default:
		return "Session complete!", style
	}
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	text := lipgloss.NewStyle().Foreground(theme.Text)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("\n")

	heading, headingStyle := s.heading()
	b.WriteString(center(width, headingStyle, heading))
	b.WriteString("\n")

	subtitle := fmt.Sprintf("%s · %d digits", sum.Operation.DisplayName(), sum.Digits)
	if s.cfg.Level != nil {
		subtitle = fmt.Sprintf("Level %d: %s", s.cfg.Level.ID, s.cfg.Level.Name)
	}
	b.WriteString(center(width, dim, subtitle))
	b.WriteString("\n\n")

	if res := sum.Level; res != nil {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Stars(res.StarsEarned, level.MaxStars)))
		b.WriteString("\n")
		if res.IsNewRecord {
			b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true), "New record!"))
			b.WriteString("\n")
		}
		if res.Error != "" {
			b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Error), res.Error))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	statsLine := fmt.Sprintf("Questions: %d      Correct: %d      Accuracy: %d%%",
		sum.Questions, sum.Correct, sum.Accuracy)
	b.WriteString(center(width, text, statsLine))
	b.WriteString("\n")

	avg := time.Duration(0)
	if sum.Questions > 0 {
		avg = sum.TotalTime / time.Duration(sum.Questions)
	}
	timeLine := fmt.Sprintf("Time: %s      Avg: %s      Best streak: %d",
		formatDuration(sum.TotalTime), formatDuration(avg), sum.BestStreak)
	b.WriteString(center(width, dim, timeLine))
	b.WriteString("\n\n")

	if res := sum.Level; res != nil && res.Error == "" {
		switch {
		case !res.Success && res.Required > 0:
			b.WriteString(center(width, text,
				fmt.Sprintf("You need %d correct to pass. Keep practicing!", res.Required)))
			b.WriteString("\n")
		case res.Success && res.NextLevelID > 0 && s.notify:
			b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true),
				fmt.Sprintf("Level %d unlocked!", res.NextLevelID)))
			b.WriteString("\n")
		}
	}

	if d := sum.SuggestedDigits; d > 0 {
		verb := "Ready for a challenge?"
		if d < sum.Digits {
			verb = "Want to ease off?"
		}
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Accent),
			fmt.Sprintf("%s Press A to try %d digits.", verb, d)))
		b.WriteString("\n")
	}

	return b.String()
}
