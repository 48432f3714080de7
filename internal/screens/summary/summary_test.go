package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/session"
)

// stubScreen records what it was built for.
type stubScreen struct {
	cfg   session.Config
	level int
}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "" }
func (s *stubScreen) Title() string                          { return "stub" }

func testActions() Actions {
	return Actions{
		Play:      func(cfg session.Config) screen.Screen { return &stubScreen{cfg: cfg} },
		PlayLevel: func(id int) screen.Screen { return &stubScreen{level: id} },
	}
}

func practiceSummary() (session.Summary, session.Config) {
	cfg := session.PracticeConfig("addition", 2, 10)
	return session.Summary{
		Mode:            session.ModePractice,
		Operation:       "addition",
		Digits:          2,
		Questions:       10,
		Correct:         10,
		Accuracy:        100,
		TotalTime:       25 * time.Second,
		BestStreak:      10,
		SuggestedDigits: 3,
	}, cfg
}

func levelSummary(success bool) (session.Summary, session.Config) {
	lvl := level.Level{ID: 2, Name: "Warm Up", Operation: "addition", Digits: 1,
		Requirements: level.Requirements{TotalQuestions: 5, MinCorrect: 4}}
	res := &level.Result{Success: success, StarsEarned: 2, NextLevelID: 3, Required: 4, CorrectAnswers: 3}
	if success {
		res.CorrectAnswers = 5
	}
	return session.Summary{
		Mode:      session.ModeLevel,
		Operation: "addition",
		Digits:    1,
		Questions: 5,
		Correct:   res.CorrectAnswers,
		Level:     res,
	}, session.LevelConfig(lvl)
}

func replaced(t *testing.T, cmd tea.Cmd) *stubScreen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	return msg.Screen.(*stubScreen)
}

func TestSummaryScreen_Title(t *testing.T) {
	sum, cfg := practiceSummary()
	if got := New(sum, cfg, testActions(), true).Title(); got != "Session Summary" {
		t.Errorf("Title = %q, want %q", got, "Session Summary")
	}
	sum, cfg = levelSummary(true)
	if got := New(sum, cfg, testActions(), true).Title(); got != "Level Summary" {
		t.Errorf("Title = %q, want %q", got, "Level Summary")
	}
}

func TestSummaryScreen_PracticeView(t *testing.T) {
	sum, cfg := practiceSummary()
	view := New(sum, cfg, testActions(), true).View(100, 30)
	for _, want := range []string{"Session complete!", "Accuracy: 100%", "25.0s", "try 3 digits"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_LevelView(t *testing.T) {
	sum, cfg := levelSummary(true)
	view := New(sum, cfg, testActions(), true).View(100, 30)
	if !strings.Contains(view, "Level complete!") || !strings.Contains(view, "Level 3 unlocked!") {
		t.Errorf("passed level view = %q", view)
	}
	if strings.Count(view, "★") != 2 {
		t.Errorf("expected 2 stars in view")
	}

	quiet := New(sum, cfg, testActions(), false).View(100, 30)
	if strings.Contains(quiet, "unlocked") {
		t.Error("unlock notice should respect the notifications setting")
	}

	sum, cfg = levelSummary(false)
	view = New(sum, cfg, testActions(), true).View(100, 30)
	if !strings.Contains(view, "Level failed") || !strings.Contains(view, "need 4 correct") {
		t.Errorf("failed level view = %q", view)
	}
}

func TestSummaryScreen_PlayAgain(t *testing.T) {
	sum, cfg := practiceSummary()
	s := New(sum, cfg, testActions(), true)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	got := replaced(t, cmd)
	if got.cfg.Digits != 2 || got.cfg.Operation != "addition" {
		t.Errorf("replayed with %+v", got.cfg)
	}
}

func TestSummaryScreen_AdaptiveSuggestion(t *testing.T) {
	sum, cfg := practiceSummary()
	s := New(sum, cfg, testActions(), true)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if got := replaced(t, cmd); got.cfg.Digits != 3 {
		t.Errorf("suggested run digits = %d, want 3", got.cfg.Digits)
	}
}

func TestSummaryScreen_NextLevel(t *testing.T) {
	sum, cfg := levelSummary(true)
	s := New(sum, cfg, testActions(), true)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if got := replaced(t, cmd); got.level != 3 {
		t.Errorf("next level = %d, want 3", got.level)
	}

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := replaced(t, cmd); got.level != 2 {
		t.Errorf("retry level = %d, want 2", got.level)
	}
}

func TestSummaryScreen_NoNextLevelWhenFailed(t *testing.T) {
	sum, cfg := levelSummary(false)
	s := New(sum, cfg, testActions(), true)
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"}); cmd != nil {
		t.Error("a failed level should not offer the next one")
	}
}

func TestSummaryScreen_EscGoesHome(t *testing.T) {
	sum, cfg := practiceSummary()
	s := New(sum, cfg, testActions(), true)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Errorf("expected PopToRootMsg, got %T", cmd())
	}
}
