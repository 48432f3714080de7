package home

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen/screentest"
	"github.com/Agampodige/MathDrill/internal/screens/levels"
	"github.com/Agampodige/MathDrill/internal/screens/practice"
)

func TestHomeScreen_Dashboard(t *testing.T) {
	svc := screentest.Services(t)
	q := problemgen.Question{Operation: problemgen.OpAddition, Digits: 1, Text: "2 + 3", Answer: 5}
	for _, ans := range []float64{5, 5, 4} {
		if _, err := svc.Attempts.Record(context.Background(), q, ans, time.Second, screentest.Now); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	h := New(svc)
	msg := h.Init()()
	h.Update(msg)

	if h.dash.attempts != 3 {
		t.Errorf("attempts = %d, want 3", h.dash.attempts)
	}
	if h.dash.accuracy != 67 {
		t.Errorf("accuracy = %d, want 67", h.dash.accuracy)
	}
	if h.dash.streak != 1 {
		t.Errorf("streak = %d, want 1", h.dash.streak)
	}
	if h.dash.maxStars != 60 {
		t.Errorf("maxStars = %d, want 60", h.dash.maxStars)
	}

	view := h.View(120, 40)
	if !strings.Contains(view, "0/60 STARS") {
		t.Errorf("view missing star total:\n%s", view)
	}
}

func TestHomeScreen_MenuPushesScreens(t *testing.T) {
	svc := screentest.Services(t)
	h := New(svc)

	_, cmd := h.Update(screentest.Special(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter should return a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*practice.PracticeScreen); !ok {
		t.Errorf("first item pushed %T, want practice", push.Screen)
	}

	h.Update(screentest.Special(tea.KeyDown))
	_, cmd = h.Update(screentest.Special(tea.KeyEnter))
	push, ok = cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*levels.LevelsScreen); !ok {
		t.Errorf("second item pushed %T, want levels", push.Screen)
	}
}

func TestHomeScreen_Quit(t *testing.T) {
	h := New(screentest.Services(t))
	for range 4 {
		h.Update(screentest.Special(tea.KeyDown))
	}
	_, cmd := h.Update(screentest.Special(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("last item should quit")
	}
}
