package welcome

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/Agampodige/MathDrill/internal/bridge"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/stats"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	// The operator reel spins until settleAt, then the banner appears.
	settleAt  = 800 * time.Millisecond
	bannerAt  = 1200 * time.Millisecond
	maxRecord = 3 * time.Second
)

// reel is the sequence the flash card cycles through while spinning.
var reel = []string{"+", "−", "×", "÷", "( )"}

type tickMsg time.Time

// greetingMsg carries what the splash knows about the learner.
type greetingMsg struct {
	attempts      int
	streak        int
	lastPracticed time.Time
}

// WelcomeScreen spins an operator flash card, then shows the banner with a
// greeting and the host link state. Any key replaces it with home.
type WelcomeScreen struct {
	svc          *screen.Services
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	frame        int
	greeting     *greetingMsg
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that hands over to the screen built by
// homeFactory. svc may be nil, which drops the greeting.
func New(svc *screen.Services, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{svc: svc, homeFactory: homeFactory}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(tick(), w.loadGreeting())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) loadGreeting() tea.Cmd {
	svc := w.svc
	if svc == nil || svc.Attempts == nil {
		return nil
	}
	return func() tea.Msg {
		all, err := svc.Attempts.LoadAll(context.Background())
		if err != nil {
			svc.Log().Warn("load attempts for greeting", "err", err)
			return greetingMsg{}
		}
		sum := stats.Aggregate(all, svc.Clock())
		return greetingMsg{
			attempts:      sum.Overall.Count,
			streak:        sum.Streak.Current,
			lastPracticed: sum.LastPracticed,
		}
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed < maxRecord {
			w.elapsed += tickInterval
		}
		if w.elapsed < settleAt {
			w.frame++
		}
		// The host state line needs redraws until the link settles.
		return w, tick()

	case greetingMsg:
		w.greeting = &msg
		return w, nil

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	home := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: home}
	}
}

func (w *WelcomeScreen) settled() bool {
	return w.elapsed >= settleAt
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{w.renderCard()}

	if w.elapsed >= bannerAt {
		sections = append(sections, "", RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Sharpen your mental math!"))

		if line := w.greetingLine(); line != "" {
			sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Secondary).Render(line))
		}
		if line := w.hostLine(); line != "" {
			sections = append(sections, line)
		}

		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

// renderCard draws the flash card. It lands on "=" once settled.
func (w *WelcomeScreen) renderCard() string {
	face := "="
	color := theme.Accent
	if !w.settled() {
		face = reel[w.frame%len(reel)]
		color = theme.Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Foreground(color).
		Bold(true).
		Width(9).
		Align(lipgloss.Center).
		Padding(1, 0).
		Render(face)
}

func (w *WelcomeScreen) greetingLine() string {
	g := w.greeting
	if g == nil {
		return ""
	}
	if g.attempts == 0 {
		return "First time here? Pick PRACTICE to begin."
	}
	line := fmt.Sprintf("Welcome back! %s answers so far", humanize.Comma(int64(g.attempts)))
	if g.streak > 0 {
		line += fmt.Sprintf(" · %d day streak", g.streak)
	} else if !g.lastPracticed.IsZero() {
		line += " · last practiced " + humanize.RelTime(g.lastPracticed, w.svc.Clock(), "ago", "from now")
	}
	return line
}

func (w *WelcomeScreen) hostLine() string {
	if w.svc == nil || w.svc.Bridge == nil {
		return ""
	}
	switch st := w.svc.Bridge.Get(); st {
	case bridge.StateReady:
		return lipgloss.NewStyle().Foreground(theme.Success).Render("● host connected")
	case bridge.StateConnecting:
		return lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render("● connecting to host...")
	default:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("● host " + st.String() + ", working locally")
	}
}
