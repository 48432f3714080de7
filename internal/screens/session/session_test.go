package session

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/screen/screentest"
	"github.com/Agampodige/MathDrill/internal/screens/summary"
	sess "github.com/Agampodige/MathDrill/internal/session"
)

func newPractice(t *testing.T, count int) (*SessionScreen, *screen.Services) {
	t.Helper()
	svc := screentest.Services(t)
	s := New(svc, sess.PracticeConfig("addition", 1, count))
	s.Init()
	if s.fatal != "" {
		t.Fatalf("session did not start: %s", s.fatal)
	}
	return s, svc
}

func send(s *SessionScreen, msg tea.Msg) tea.Cmd {
	_, cmd := s.Update(msg)
	return cmd
}

func typeAnswer(s *SessionScreen, answer string) {
	screentest.Type(answer, func(m tea.Msg) { send(s, m) })
}

func answerCurrent(s *SessionScreen, correct bool) tea.Cmd {
	a := s.ctrl.Question().Answer
	if !correct {
		a++
	}
	typeAnswer(s, strconv.FormatInt(a, 10))
	return send(s, screentest.Special(tea.KeyEnter))
}

func TestSessionScreen_Title(t *testing.T) {
	s, _ := newPractice(t, 3)
	if s.Title() != "Practice" {
		t.Errorf("Title = %q, want %q", s.Title(), "Practice")
	}
}

func TestSessionScreen_ShowsQuestion(t *testing.T) {
	s, _ := newPractice(t, 3)
	view := s.View(100, 30)
	if !strings.Contains(view, s.ctrl.Question().Text) {
		t.Errorf("view should contain the question %q", s.ctrl.Question().Text)
	}
	if !strings.Contains(view, "Q 1/3") {
		t.Error("view should show the question counter")
	}
}

func TestSessionScreen_CorrectAnswerRecorded(t *testing.T) {
	s, svc := newPractice(t, 3)

	cmd := answerCurrent(s, true)
	if cmd == nil {
		t.Fatal("submitting should schedule the countdown")
	}
	if s.ctrl.Phase() != sess.PhaseFeedback {
		t.Fatalf("phase = %v, want feedback", s.ctrl.Phase())
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("feedback should say Correct!")
	}

	all, err := svc.Attempts.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || !all[0].IsCorrect {
		t.Errorf("expected one correct attempt stored, got %+v", all)
	}
}

func TestSessionScreen_WrongAnswerShowsSolution(t *testing.T) {
	s, _ := newPractice(t, 3)
	want := strconv.FormatInt(s.ctrl.Question().Answer, 10)
	answerCurrent(s, false)

	view := s.View(100, 30)
	if !strings.Contains(view, "Not quite") || !strings.Contains(view, "Correct answer: "+want) {
		t.Errorf("feedback view = %q", view)
	}
}

func TestSessionScreen_EmptyAnswerRejected(t *testing.T) {
	s, _ := newPractice(t, 3)
	send(s, screentest.Special(tea.KeyEnter))

	if s.ctrl.Phase() != sess.PhaseAwaitingAnswer {
		t.Errorf("phase = %v, want awaiting answer", s.ctrl.Phase())
	}
	if !strings.Contains(s.View(100, 30), "Please enter a number") {
		t.Error("expected a validation message")
	}
}

func TestSessionScreen_CountdownAdvances(t *testing.T) {
	s, _ := newPractice(t, 3)
	answerCurrent(s, true)
	token := s.ctrl.LastFeedback().Token

	send(s, countdownMsg{SessionID: s.ctrl.ID(), Token: token + 1})
	if s.ctrl.Phase() != sess.PhaseFeedback {
		t.Error("a stale countdown should be ignored")
	}
	send(s, countdownMsg{SessionID: "other", Token: token})
	if s.ctrl.Phase() != sess.PhaseFeedback {
		t.Error("a countdown from another session should be ignored")
	}

	send(s, countdownMsg{SessionID: s.ctrl.ID(), Token: token})
	if s.ctrl.Phase() != sess.PhaseAwaitingAnswer {
		t.Errorf("phase = %v, want awaiting answer", s.ctrl.Phase())
	}
	if s.input.Value() != "" {
		t.Error("input should be cleared for the next question")
	}
}

func TestSessionScreen_AnyKeySkipsFeedback(t *testing.T) {
	s, _ := newPractice(t, 3)
	answerCurrent(s, true)
	send(s, screentest.Key(' '))

	answered, _ := s.ctrl.Progress()
	if s.ctrl.Phase() != sess.PhaseAwaitingAnswer || answered != 1 {
		t.Errorf("phase = %v answered = %d", s.ctrl.Phase(), answered)
	}
}

func TestSessionScreen_PracticeCompletes(t *testing.T) {
	s, _ := newPractice(t, 2)
	answerCurrent(s, true)
	send(s, screentest.Key(' '))
	answerCurrent(s, false)
	cmd := send(s, screentest.Key(' '))
	if cmd == nil {
		t.Fatal("the last transition should show the summary")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected a summary screen, got %T", msg.Screen)
	}
	if s.HandlesBack() {
		t.Error("a finished session should not hold Esc")
	}
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	s, _ := newPractice(t, 3)
	if !s.HandlesBack() {
		t.Fatal("a running session should handle Esc")
	}

	send(s, screentest.Special(tea.KeyEscape))
	if !s.quitConfirm {
		t.Fatal("Esc should ask for confirmation")
	}
	send(s, screentest.Key('n'))
	if s.quitConfirm {
		t.Fatal("N should cancel")
	}

	send(s, screentest.Special(tea.KeyEscape))
	cmd := send(s, screentest.Key('y'))
	if cmd == nil {
		t.Fatal("Y should leave the session")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
	if s.ctrl.Phase() != sess.PhaseIdle {
		t.Errorf("phase = %v, want idle", s.ctrl.Phase())
	}
}

func TestSessionScreen_AutoCheck(t *testing.T) {
	svc := screentest.Services(t)
	svc.Prefs.AutoCheckAnswers = true
	s := New(svc, sess.PracticeConfig("addition", 1, 3))
	s.Init()

	typeAnswer(s, strconv.FormatInt(s.ctrl.Question().Answer, 10))
	if s.ctrl.Phase() != sess.PhaseFeedback {
		t.Errorf("phase = %v, want feedback after typing every digit", s.ctrl.Phase())
	}
}

func TestSessionScreen_StaleClockTickIgnored(t *testing.T) {
	s, _ := newPractice(t, 3)
	if cmd := send(s, clockTickMsg{SessionID: "old"}); cmd != nil {
		t.Error("a tick from another session should not reschedule")
	}
	if cmd := send(s, clockTickMsg{SessionID: s.ctrl.ID()}); cmd == nil {
		t.Error("a current tick should reschedule")
	}
}

func loadLevel(t *testing.T, s *SessionScreen) {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("level screen should load the level")
	}
	send(s, cmd())
}

func TestSessionScreen_LevelRun(t *testing.T) {
	svc := screentest.Services(t)
	s := NewLevel(svc, 1)
	loadLevel(t, s)
	if s.fatal != "" {
		t.Fatalf("level did not start: %s", s.fatal)
	}
	if s.Title() != "Level 1" {
		t.Errorf("Title = %q", s.Title())
	}

	var cmd tea.Cmd
	for s.ctrl.Phase() != sess.PhaseComplete {
		answerCurrent(s, true)
		cmd = send(s, screentest.Key(' '))
	}
	if cmd == nil {
		t.Fatal("finishing a level should rate it")
	}
	rated, ok := cmd().(levelCompletedMsg)
	if !ok || rated.Err != nil || !rated.Result.Success {
		t.Fatalf("unexpected completion %+v", rated)
	}

	next := send(s, rated)
	if _, ok := next().(router.ReplaceScreenMsg); !ok {
		t.Error("expected the summary after rating")
	}

	p, err := svc.Levels.Progression(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.CompletedLevels != 1 {
		t.Errorf("CompletedLevels = %d, want 1", p.CompletedLevels)
	}
}

func TestSessionScreen_LockedLevel(t *testing.T) {
	svc := screentest.Services(t)
	s := NewLevel(svc, 20)
	loadLevel(t, s)
	if !strings.Contains(s.fatal, "locked") {
		t.Errorf("fatal = %q, want a locked message", s.fatal)
	}
	if s.HandlesBack() {
		t.Error("Esc should go back from an error")
	}
}

func TestSessionScreen_UnknownLevel(t *testing.T) {
	svc := screentest.Services(t)
	s := NewLevel(svc, 999)
	loadLevel(t, s)
	if !strings.Contains(s.fatal, "does not exist") {
		t.Errorf("fatal = %q", s.fatal)
	}
}

func TestSessionScreen_TimedLevelExpires(t *testing.T) {
	svc := screentest.Services(t)
	lvl, err := svc.Levels.Catalog().Definition(5)
	if err != nil {
		t.Fatal(err)
	}
	s := New(svc, sess.LevelConfig(lvl))
	s.Init()
	if !strings.Contains(s.View(100, 30), "T 1:30") {
		t.Error("timed level should show the countdown")
	}

	later := screentest.Now.Add(91 * time.Second)
	svc.Now = func() time.Time { return later }
	cmd := send(s, clockTickMsg{SessionID: s.ctrl.ID()})
	if cmd == nil {
		t.Fatal("expiry should finish the level")
	}
	if s.ctrl.Phase() != sess.PhaseComplete {
		t.Errorf("phase = %v, want complete", s.ctrl.Phase())
	}
	rated, ok := cmd().(levelCompletedMsg)
	if !ok || rated.Result.Success {
		t.Errorf("an unanswered timed level should fail, got %+v", rated)
	}
}
