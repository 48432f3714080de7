package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/screens/summary"
	sess "github.com/Agampodige/MathDrill/internal/session"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
)

// bell rings the terminal bell.
const bell = "\a"

// SessionScreen implements screen.Screen for a running drill or level.
type SessionScreen struct {
	svc   *screen.Services
	ctrl  *sess.Controller
	cfg   sess.Config
	input components.TextInput

	// levelID is set when the level still has to be loaded.
	levelID int

	errMsg      string // input validation message
	fatal       string // session could not start
	quitConfirm bool
	finishing   bool
	now         time.Time
}

var (
	_ screen.Screen          = (*SessionScreen)(nil)
	_ screen.KeyHintProvider = (*SessionScreen)(nil)
	_ screen.BackHandler     = (*SessionScreen)(nil)
)

func newScreen(svc *screen.Services) *SessionScreen {
	return &SessionScreen{
		svc:   svc,
		ctrl:  svc.NewController(),
		input: components.NewTextInput("Type your answer...", true, 20),
	}
}

// New creates a session screen that plays cfg.
func New(svc *screen.Services, cfg sess.Config) *SessionScreen {
	s := newScreen(svc)
	s.cfg = svc.SessionConfig(cfg)
	return s
}

// NewLevel creates a session screen that loads and plays the level with id.
func NewLevel(svc *screen.Services, id int) *SessionScreen {
	s := newScreen(svc)
	s.levelID = id
	return s
}

// Actions returns the summary follow-ups that start new session screens.
func Actions(svc *screen.Services) summary.Actions {
	return summary.Actions{
		Play:      func(cfg sess.Config) screen.Screen { return New(svc, cfg) },
		PlayLevel: func(id int) screen.Screen { return NewLevel(svc, id) },
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	if s.levelID > 0 {
		return s.loadLevel(s.levelID)
	}
	return s.start()
}

func (s *SessionScreen) loadLevel(id int) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		lvl, err := svc.Levels.Level(context.Background(), id)
		return levelLoadedMsg{Level: lvl, Err: err}
	}
}

// start configures the controller and shows the first question.
func (s *SessionScreen) start() tea.Cmd {
	s.now = s.svc.Clock()
	if err := s.ctrl.Configure(s.cfg); err != nil {
		s.fatal = err.Error()
		return nil
	}
	if err := s.ctrl.Start(s.now); err != nil {
		s.fatal = err.Error()
		return nil
	}
	s.cfg = s.ctrl.Config()
	s.input.Reset()
	return tea.Batch(s.input.Init(), s.tick())
}

func (s *SessionScreen) tick() tea.Cmd {
	id := s.ctrl.ID()
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg{SessionID: id, At: t}
	})
}

func (s *SessionScreen) Title() string {
	if s.cfg.Level != nil {
		return fmt.Sprintf("Level %d", s.cfg.Level.ID)
	}
	return "Practice"
}

// HandlesBack is true while a run is active so Esc asks before leaving.
func (s *SessionScreen) HandlesBack() bool {
	return s.fatal == "" && !s.finishing
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.fatal != "":
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.ctrl.Phase() == sess.PhaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case levelLoadedMsg:
		return s.handleLevelLoaded(msg)

	case clockTickMsg:
		return s.handleTick(msg)

	case countdownMsg:
		if msg.SessionID != s.ctrl.ID() {
			return s, nil
		}
		if s.ctrl.CountdownFired(msg.Token, s.svc.Clock()) {
			return s, s.afterAdvance()
		}
		return s, nil

	case levelCompletedMsg:
		return s.handleLevelCompleted(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.ctrl.Phase() == sess.PhaseAwaitingAnswer && !s.quitConfirm {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) handleLevelLoaded(msg levelLoadedMsg) (screen.Screen, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, level.ErrNotFound):
		s.fatal = fmt.Sprintf("Level %d does not exist", s.levelID)
		return s, nil
	case msg.Err != nil:
		s.fatal = msg.Err.Error()
		return s, nil
	case msg.Level.IsLocked:
		s.fatal = fmt.Sprintf("Level %d is locked: %s", msg.Level.ID, level.ParseCondition(msg.Level.UnlockCondition))
		return s, nil
	}
	s.levelID = 0
	s.cfg = s.svc.SessionConfig(sess.LevelConfig(msg.Level))
	return s, s.start()
}

func (s *SessionScreen) handleTick(msg clockTickMsg) (screen.Screen, tea.Cmd) {
	if msg.SessionID == "" || msg.SessionID != s.ctrl.ID() || s.finishing {
		return s, nil
	}
	s.now = s.svc.Clock()
	if s.ctrl.TimeExpired(s.now) {
		s.quitConfirm = false
		return s, s.finish()
	}
	return s, s.tick()
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.fatal != "" || s.finishing {
		return s, nil
	}
	key := msg.String()

	if s.quitConfirm {
		switch key {
		case "y":
			s.ctrl.Stop()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.quitConfirm = true
		return s, nil
	}

	switch s.ctrl.Phase() {
	case sess.PhaseFeedback:
		if s.ctrl.Skip(s.svc.Clock()) {
			return s, s.afterAdvance()
		}
		return s, nil

	case sess.PhaseAwaitingAnswer:
		if key == "enter" {
			return s, s.submit()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.errMsg = ""
		if s.svc.Prefs.AutoCheckAnswers && s.ctrl.ReadyToAutoSubmit(s.input.Value()) {
			return s, tea.Batch(cmd, s.submit())
		}
		return s, cmd
	}
	return s, nil
}

// submit checks the typed answer and schedules the feedback countdown.
func (s *SessionScreen) submit() tea.Cmd {
	s.now = s.svc.Clock()
	fb, err := s.ctrl.Submit(context.Background(), s.input.Value(), s.now)
	if errors.Is(err, sess.ErrNotNumeric) {
		s.errMsg = "Please enter a number"
		return nil
	}
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	s.input.Submit(fb.Correct)

	id := s.ctrl.ID()
	cmds := []tea.Cmd{tea.Tick(fb.Delay, func(time.Time) tea.Msg {
		return countdownMsg{SessionID: id, Token: fb.Token}
	})}
	if s.svc.Prefs.SoundEnabled && !fb.Correct {
		cmds = append(cmds, tea.Raw(bell))
	}
	return tea.Batch(cmds...)
}

// afterAdvance runs after the countdown ended or was skipped.
func (s *SessionScreen) afterAdvance() tea.Cmd {
	if s.ctrl.Phase() == sess.PhaseComplete {
		return s.finish()
	}
	s.input.Reset()
	return nil
}

// finish shows the summary. Level runs are rated first.
func (s *SessionScreen) finish() tea.Cmd {
	if s.finishing {
		return nil
	}
	s.finishing = true
	if s.cfg.Mode != sess.ModeLevel {
		return s.showSummary(s.ctrl.Summary(s.svc.Clock()))
	}
	svc, run := s.svc, s.ctrl.Run()
	return func() tea.Msg {
		res, err := svc.Levels.Complete(context.Background(), run)
		return levelCompletedMsg{Result: res, Err: err}
	}
}

func (s *SessionScreen) handleLevelCompleted(msg levelCompletedMsg) (screen.Screen, tea.Cmd) {
	sum := s.ctrl.Summary(s.svc.Clock())
	if msg.Err != nil {
		s.svc.Log().Warn("complete level", "level", s.cfg.Level.ID, "err", msg.Err)
		if sum.Level != nil {
			sum.Level.Error = "Progress could not be saved"
		}
	} else {
		res := msg.Result
		sum.Level = &res
	}
	return s, s.showSummary(sum)
}

func (s *SessionScreen) showSummary(sum sess.Summary) tea.Cmd {
	next := summary.New(sum, s.cfg, Actions(s.svc), s.svc.Prefs.NotificationsEnabled)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}
