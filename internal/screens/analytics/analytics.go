// Package analytics shows the learner's statistics: totals, per-operation
// breakdown, streaks with the activity heatmap, and recent answers.
package analytics

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/stats"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
)

// recentLimit caps the Recent tab.
const recentLimit = 50

type tab int

const (
	tabOverview tab = iota
	tabOperations
	tabActivity
	tabRecent
	tabCount
)

var tabNames = [tabCount]string{"Overview", "Operations", "Activity", "Recent"}

type analyticsLoadedMsg struct {
	Summary  stats.Summary
	Recent   []attempt.Attempt
	FromHost bool
	Err      error
}

type dataClearedMsg struct {
	Err error
}

// AnalyticsScreen displays the aggregated statistics.
type AnalyticsScreen struct {
	svc      *screen.Services
	summary  stats.Summary
	recent   []attempt.Attempt
	fromHost bool
	tab      tab
	selected int
	loaded   bool
	errMsg   string
	notice   string

	confirm bool
	buttons [2]components.Button
	focus   int
}

var (
	_ screen.Screen          = (*AnalyticsScreen)(nil)
	_ screen.KeyHintProvider = (*AnalyticsScreen)(nil)
	_ screen.BackHandler     = (*AnalyticsScreen)(nil)
)

// New creates the analytics screen.
func New(svc *screen.Services) *AnalyticsScreen {
	s := &AnalyticsScreen{svc: svc}
	s.buttons = [2]components.Button{
		components.NewButton("Clear everything", false, s.clearData),
		components.NewButton("Cancel", true, s.cancelClear),
	}
	s.focus = 1
	return s
}

func (s *AnalyticsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *AnalyticsScreen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx := context.Background()
		all, err := svc.Attempts.LoadAll(ctx)
		if err != nil {
			return analyticsLoadedMsg{Err: err}
		}
		msg := analyticsLoadedMsg{Summary: stats.Aggregate(all, svc.Clock())}

		if recent, err := svc.Attempts.Recent(ctx, recentLimit); err == nil {
			msg.Recent = recent
		} else {
			svc.Log().Warn("load recent attempts", "err", err)
		}

		if svc.HostStats != nil && svc.HostReady() {
			host, err := svc.HostStats(ctx)
			if err == nil {
				err = host.Err()
			}
			if err != nil {
				svc.Log().Warn("host statistics unavailable, using local", "err", err)
			} else {
				msg.Summary = msg.Summary.WithHost(host)
				msg.FromHost = true
			}
		}
		return msg
	}
}

func (s *AnalyticsScreen) Title() string {
	return "Analytics"
}

// HandlesBack closes the clear-data dialog before leaving the screen.
func (s *AnalyticsScreen) HandlesBack() bool {
	return s.confirm
}

func (s *AnalyticsScreen) KeyHints() []layout.KeyHint {
	if s.confirm {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{{Key: "Tab", Description: "Switch view"}}
	if s.tab == tabRecent {
		hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Scroll"})
	}
	return append(hints,
		layout.KeyHint{Key: "C", Description: "Clear data"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *AnalyticsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.summary = msg.Summary
		s.recent = msg.Recent
		s.fromHost = msg.FromHost
		s.selected = min(s.selected, max(len(s.recent)-1, 0))
		return s, nil

	case dataClearedMsg:
		if msg.Err != nil {
			s.notice = "Could not clear data: " + msg.Err.Error()
			return s, nil
		}
		s.notice = "All progress cleared."
		s.selected = 0
		return s, tea.Batch(s.load(), func() tea.Msg { return screen.RefreshStatusMsg{} })

	case tea.KeyMsg:
		if s.confirm {
			return s, s.updateConfirm(msg)
		}
		switch msg.String() {
		case "tab", "right", "l":
			s.tab = (s.tab + 1) % tabCount
		case "shift+tab", "left", "h":
			s.tab = (s.tab + tabCount - 1) % tabCount
		case "1", "2", "3", "4":
			s.tab = tab(msg.String()[0] - '1')
		case "up", "k":
			if s.tab == tabRecent && s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.tab == tabRecent && s.selected < len(s.recent)-1 {
				s.selected++
			}
		case "r":
			return s, s.load()
		case "c":
			s.openConfirm()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *AnalyticsScreen) openConfirm() {
	s.confirm = true
	s.notice = ""
	s.setFocus(1)
}

func (s *AnalyticsScreen) setFocus(i int) {
	s.focus = i
	for j := range s.buttons {
		s.buttons[j].Active = j == i
	}
}

func (s *AnalyticsScreen) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h", "right", "l", "tab":
		s.setFocus(1 - s.focus)
		return nil
	case "esc", "n":
		return s.cancelClear()
	case "y":
		return s.clearData()
	}
	var cmd tea.Cmd
	s.buttons[s.focus], cmd = s.buttons[s.focus].Update(msg)
	return cmd
}

func (s *AnalyticsScreen) cancelClear() tea.Cmd {
	s.confirm = false
	return nil
}

// clearData wipes the attempt history and level completions.
func (s *AnalyticsScreen) clearData() tea.Cmd {
	s.confirm = false
	svc := s.svc
	return func() tea.Msg {
		ctx := context.Background()
		err := errors.Join(svc.Attempts.Clear(ctx), svc.Levels.Reset(ctx))
		if err != nil {
			svc.Log().Error("clear data", "err", err)
		}
		return dataClearedMsg{Err: err}
	}
}
