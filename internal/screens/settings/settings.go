// Package settings is the preferences screen. Every change is saved
// immediately and broadcast to the rest of the app.
package settings

import (
	"context"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	prefs "github.com/Agampodige/MathDrill/internal/settings"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// labelWidth fits the longest field label.
const labelWidth = 22

// field binds a selector to one setting key. values holds the stored
// form of each option.
type field struct {
	key    string
	sel    components.Selector
	values []string
}

func (f field) value() string {
	return f.values[f.sel.Selected]
}

// savedMsg reports the result of a save or reset.
type savedMsg struct {
	Settings prefs.Settings
	Reset    bool
	Err      error
}

// SettingsScreen edits the preferences.
type SettingsScreen struct {
	svc    *screen.Services
	fields []field
	focus  int
	notice string
	err    string
}

var (
	_ screen.Screen          = (*SettingsScreen)(nil)
	_ screen.KeyHintProvider = (*SettingsScreen)(nil)
)

// New creates the settings screen showing svc.Prefs.
func New(svc *screen.Services) *SettingsScreen {
	s := &SettingsScreen{svc: svc}
	s.build(svc.Prefs)
	return s
}

var onOff = []string{"Off", "On"}

func toggle(label, key string, on bool) field {
	f := field{
		key:    key,
		sel:    components.NewSelector(label, onOff, onOff[0]),
		values: []string{"false", "true"},
	}
	if on {
		f.sel.Selected = 1
	}
	f.sel.Wrap = true
	return f
}

func choice(label, key string, values []string, current string) field {
	display := make([]string, len(values))
	for i, v := range values {
		display[i] = strings.ToUpper(v[:1]) + v[1:]
	}
	f := field{key: key, sel: components.NewSelector(label, display, ""), values: values}
	for i, v := range values {
		if v == current {
			f.sel.Selected = i
		}
	}
	return f
}

// build lays out one field per setting key in display order.
func (s *SettingsScreen) build(st prefs.Settings) {
	counts := prefs.ProblemChoices(st.ProblemsPerSession)
	countValues := make([]string, len(counts))
	for i, n := range counts {
		countValues[i] = strconv.Itoa(n)
	}

	s.fields = []field{
		choice("Theme", "theme", []string{prefs.ThemeAuto, prefs.ThemeLight, prefs.ThemeDark}, st.Theme),
		toggle("Sound", "soundEnabled", st.SoundEnabled),
		toggle("Notifications", "notificationsEnabled", st.NotificationsEnabled),
		choice("Problems per session", "problemsPerSession", countValues, strconv.Itoa(st.ProblemsPerSession)),
		choice("Difficulty", "difficultyLevel",
			[]string{prefs.DifficultyEasy, prefs.DifficultyMedium, prefs.DifficultyHard}, st.DifficultyLevel),
		toggle("Show timer", "showTimer", st.ShowTimer),
		toggle("Show accuracy", "showAccuracy", st.ShowAccuracy),
		toggle("Auto-check answers", "autoCheckAnswers", st.AutoCheckAnswers),
		toggle("Adaptive difficulty", "adaptiveDifficulty", st.AdaptiveDifficulty),
	}
	s.focus = min(s.focus, len(s.fields)-1)
	s.fields[s.focus].sel.Focused = true
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "←→", Description: "Change"},
		{Key: "R", Description: "Reset"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) setFocus(i int) {
	s.fields[s.focus].sel.Focused = false
	s.focus = (i + len(s.fields)) % len(s.fields)
	s.fields[s.focus].sel.Focused = true
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		return s, s.handleSaved(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.setFocus(s.focus - 1)
			return s, nil
		case "down", "j", "tab":
			s.setFocus(s.focus + 1)
			return s, nil
		case "r":
			return s, s.reset()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}

		f := &s.fields[s.focus]
		before := f.sel.Selected
		var cmd tea.Cmd
		f.sel, cmd = f.sel.Update(msg)
		if f.sel.Selected != before {
			return s, tea.Batch(cmd, s.save(f.key, f.value()))
		}
		return s, cmd
	}
	return s, nil
}

func (s *SettingsScreen) save(key, value string) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		st, err := svc.Settings.Update(context.Background(), key, value)
		return savedMsg{Settings: st, Err: err}
	}
}

func (s *SettingsScreen) reset() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		st, err := svc.Settings.Reset(context.Background())
		return savedMsg{Settings: st, Reset: true, Err: err}
	}
}

// handleSaved adopts the stored settings and tells the app about them.
func (s *SettingsScreen) handleSaved(msg savedMsg) tea.Cmd {
	if msg.Err != nil {
		s.svc.Log().Warn("save settings", "err", msg.Err)
		s.err = "Could not save: " + msg.Err.Error()
		s.notice = ""
		s.build(s.svc.Prefs)
		return nil
	}
	s.err = ""
	s.notice = "Saved"
	if msg.Reset {
		s.notice = "Settings restored to defaults"
	}
	s.svc.Prefs = msg.Settings
	s.build(msg.Settings)
	st := msg.Settings
	return func() tea.Msg { return screen.SettingsChangedMsg{Settings: st} }
}

func (s *SettingsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	rows := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		rows = append(rows, f.sel.View(labelWidth))
	}
	form := components.ArcadeCard(strings.Join(rows, "\n"), cw)

	status := theme.Hint.Render(s.describe())
	switch {
	case s.err != "":
		status = lipgloss.NewStyle().Foreground(theme.Error).Render(s.err)
	case s.notice != "":
		status = lipgloss.NewStyle().Foreground(theme.Success).Render(s.notice)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Render("Settings"),
		"",
		form,
		"",
		status,
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

var descriptions = map[string]string{
	"theme":                "Auto follows the terminal background",
	"soundEnabled":         "Ring the terminal bell on a wrong answer",
	"notificationsEnabled": "Announce newly unlocked levels",
	"problemsPerSession":   "Default length of a free drill",
	"difficultyLevel":      "Easy 1 digit, Medium 2, Hard 3",
	"showTimer":            "Show the per-question stopwatch",
	"showAccuracy":         "Show running accuracy during a drill",
	"autoCheckAnswers":     "Submit once the answer has enough digits",
	"adaptiveDifficulty":   "Suggest a new digit count after a drill",
}

// describe explains the focused setting.
func (s *SettingsScreen) describe() string {
	return descriptions[s.fields[s.focus].key]
}
