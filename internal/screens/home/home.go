package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/screens/analytics"
	"github.com/Agampodige/MathDrill/internal/screens/levels"
	"github.com/Agampodige/MathDrill/internal/screens/practice"
	settingsscreen "github.com/Agampodige/MathDrill/internal/screens/settings"
	"github.com/Agampodige/MathDrill/internal/stats"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
)

// dashboardMsg carries the freshly loaded dashboard.
type dashboardMsg struct {
	dash   dashboard
	mascot MascotVariant
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc           *screen.Services
	menu          components.Menu
	menuLabels    []string
	dash          dashboard
	mascotVariant MascotVariant
}

var (
	_ screen.Screen  = (*HomeScreen)(nil)
	_ screen.Resumer = (*HomeScreen)(nil)
)

// New creates the home screen.
func New(svc *screen.Services) *HomeScreen {
	menuLabels := []string{"PRACTICE", "LEVELS", "ANALYTICS", "SETTINGS", "QUIT"}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: build()}
			}
		}
	}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: push(func() screen.Screen { return practice.New(svc) })},
		{Label: menuLabels[1], Action: push(func() screen.Screen { return levels.New(svc) })},
		{Label: menuLabels[2], Action: push(func() screen.Screen { return analytics.New(svc) })},
		{Label: menuLabels[3], Action: push(func() screen.Screen { return settingsscreen.New(svc) })},
		{Label: menuLabels[4], Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		svc:        svc,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadDashboard()
}

// Resume reloads the dashboard and the header after a screen closes.
func (h *HomeScreen) Resume() tea.Cmd {
	return tea.Batch(
		h.loadDashboard(),
		func() tea.Msg { return screen.RefreshStatusMsg{} },
	)
}

func (h *HomeScreen) loadDashboard() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		ctx := context.Background()
		var d dashboard
		var sum stats.Summary
		if all, err := svc.Attempts.LoadAll(ctx); err == nil {
			sum = stats.Aggregate(all, svc.Clock())
			d.streak = sum.Streak.Current
			d.accuracy = sum.Overall.Accuracy
			d.attempts = sum.Overall.Count
		} else {
			svc.Log().Warn("load attempts for dashboard", "err", err)
		}
		if p, err := svc.Levels.Progression(ctx); err == nil {
			d.stars, d.maxStars = p.TotalStars, p.MaxPossibleStars
		} else {
			svc.Log().Warn("load progression for dashboard", "err", err)
		}
		return dashboardMsg{dash: d, mascot: MascotFor(sum)}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(dashboardMsg); ok {
		h.dash = msg.dash
		h.mascotVariant = msg.mascot
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer.
	termHeight := height + layout.HeaderHeight + layout.FooterHeight + 2
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	// All sections share a uniform content width so they line up.
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant, cw))
	}

	sections = append(sections, renderStatsBar(h.dash, cw, compact))

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menuLabels, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderArcadeMenu(h.menuLabels, h.menu.Selected, cw))
	}

	if h.svc.Bridge != nil && !h.svc.HostReady() {
		sections = append(sections, renderOfflineNote(h.svc.Bridge.Get().String(), cw))
	}

	content := strings.Join(sections, "\n\n")
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
