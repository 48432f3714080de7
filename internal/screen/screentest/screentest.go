// Package screentest builds screen.Services backed by a throwaway
// database for screen tests.
package screentest

import (
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/settings"
	"github.com/Agampodige/MathDrill/internal/store"
)

// Now is the fixed clock of the returned services.
var Now = time.Date(2025, 6, 15, 18, 0, 0, 0, time.Local)

// Services opens a fresh store in a temp dir and wires the domain
// services over it with a seeded generator and a fixed clock.
func Services(t testing.TB) *screen.Services {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "screens.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	catalog, err := level.DefaultCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	clock := func() time.Time { return Now }

	return &screen.Services{
		Attempts:          attempt.NewStore(st.Attempts(), nil, nil),
		Levels:            level.NewService(catalog, st.Completions(), level.WithClock(clock)),
		Settings:          settings.NewService(st.Settings(), nil, nil),
		Generator:         problemgen.NewSeeded(problemgen.DefaultConfig(), 7),
		Prefs:             settings.Defaults(),
		FeedbackCorrect:   10 * time.Millisecond,
		FeedbackIncorrect: 10 * time.Millisecond,
		Now:               clock,
	}
}

// Key returns a printable key press.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special returns a non-printable key press such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Type feeds each rune of s to update.
func Type(s string, update func(tea.Msg)) {
	for _, r := range s {
		update(Key(r))
	}
}
