package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/bridge"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/screens/home"
	"github.com/Agampodige/MathDrill/internal/screens/welcome"
	"github.com/Agampodige/MathDrill/internal/stats"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// Options configures the TUI.
type Options struct {
	Services *screen.Services

	// SkipWelcome starts on the home screen without the splash.
	SkipWelcome bool

	// Start, when set, builds a screen pushed on top of home at launch.
	Start func(svc *screen.Services) screen.Screen
}

// statusMsg carries the header stars and streak.
type statusMsg struct {
	stars  int
	streak int
}

// bridgeStateMsg carries a bridge connection state change.
type bridgeStateMsg struct {
	state bridge.State
	ok    bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	svc      *screen.Services
	start    screen.Screen
	bridgeCh <-chan bridge.State
	status   layout.HeaderStatus
	darkBG   bool
	width    int
	height   int
}

// newAppModel creates a new AppModel rooted at the home screen.
func newAppModel(opts Options) AppModel {
	svc := opts.Services
	homeFactory := func() screen.Screen { return home.New(svc) }

	var root screen.Screen
	if opts.SkipWelcome || opts.Start != nil {
		root = homeFactory()
	} else {
		root = welcome.New(svc, homeFactory)
	}

	m := AppModel{
		router: router.New(root),
		svc:    svc,
		darkBG: true,
	}
	if opts.Start != nil {
		m.start = opts.Start(svc)
	}
	if svc.Bridge != nil {
		m.bridgeCh = svc.Bridge.Subscribe()
		m.status.Bridge = svc.Bridge.Get().String()
	}
	theme.Apply(svc.Prefs.Theme, m.darkBG)
	return m
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.router.Active().Init(),
		tea.RequestBackgroundColor,
		m.loadStatus(),
		waitBridge(m.bridgeCh),
	}
	if m.start != nil {
		start := m.start
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: start} })
	}
	return tea.Batch(cmds...)
}

// loadStatus reads the total stars and the current practice streak.
func (m AppModel) loadStatus() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		var msg statusMsg
		if svc.Levels != nil {
			if p, err := svc.Levels.Progression(ctx); err == nil {
				msg.stars = p.TotalStars
			} else {
				svc.Log().Warn("load progression for header", "err", err)
			}
		}
		if svc.Attempts != nil {
			if all, err := svc.Attempts.LoadAll(ctx); err == nil {
				msg.streak = stats.Aggregate(all, svc.Clock()).Streak.Current
			} else {
				svc.Log().Warn("load attempts for header", "err", err)
			}
		}
		return msg
	}
}

// waitBridge waits for the next bridge state change.
func waitBridge(ch <-chan bridge.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		return bridgeStateMsg{state: s, ok: ok}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.BackgroundColorMsg:
		m.darkBG = msg.IsDark()
		theme.Apply(m.svc.Prefs.Theme, m.darkBG)
		return m, nil

	case screen.SettingsChangedMsg:
		m.svc.Prefs = msg.Settings
		theme.Apply(msg.Settings.Theme, m.darkBG)
		return m, nil

	case screen.RefreshStatusMsg:
		return m, m.loadStatus()

	case statusMsg:
		m.status.Stars = msg.stars
		m.status.Streak = msg.streak
		return m, nil

	case bridgeStateMsg:
		if !msg.ok {
			m.status.Bridge = bridge.StateClosed.String()
			return m, nil
		}
		m.status.Bridge = msg.state.String()
		cmds := []tea.Cmd{waitBridge(m.bridgeCh)}
		if msg.state == bridge.StateReady {
			cmds = append(cmds, m.loadStatus())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok && hp.KeyHints() != nil {
		footerHints = append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
