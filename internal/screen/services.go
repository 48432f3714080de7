package screen

import (
	"context"
	"log/slog"
	"time"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/bridge"
	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/session"
	"github.com/Agampodige/MathDrill/internal/settings"
	"github.com/Agampodige/MathDrill/internal/stats"
)

// HostStatsFunc fetches the host's statistics.
type HostStatsFunc func(ctx context.Context) (stats.HostStatistics, error)

// Services bundles what screens need from the rest of the app. Screens
// share one *Services so a settings change is seen everywhere.
type Services struct {
	Attempts  *attempt.Store
	Levels    *level.Service
	Settings  *settings.Service
	Generator session.Generator

	// Prefs is the last loaded or saved settings.
	Prefs settings.Settings

	// Bridge is nil when no host is configured. HostStats is nil then too.
	Bridge    *bridge.ConnState
	HostStats HostStatsFunc

	FeedbackCorrect   time.Duration
	FeedbackIncorrect time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// Clock returns the current time.
func (s *Services) Clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Log returns the logger, never nil.
func (s *Services) Log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// HostReady reports whether the bridge is connected.
func (s *Services) HostReady() bool {
	return s.Bridge != nil && s.Bridge.Get() == bridge.StateReady
}

// SessionConfig applies the configured feedback delays and the adaptive
// setting to cfg.
func (s *Services) SessionConfig(cfg session.Config) session.Config {
	cfg.FeedbackCorrect = s.FeedbackCorrect
	cfg.FeedbackIncorrect = s.FeedbackIncorrect
	if cfg.Mode == session.ModePractice {
		cfg.Adaptive = s.Prefs.AdaptiveDifficulty
	}
	return cfg
}

// NewController creates a session controller recording into Attempts.
func (s *Services) NewController() *session.Controller {
	opts := []session.Option{session.WithLogger(s.Log())}
	if s.Levels != nil {
		opts = append(opts, session.WithThresholds(s.Levels.Thresholds()))
	}
	return session.New(s.Generator, s.Attempts, opts...)
}

// SettingsChangedMsg is sent after the settings were saved or reset.
type SettingsChangedMsg struct {
	Settings settings.Settings
}

// RefreshStatusMsg asks the app to reload the header stars and streak.
type RefreshStatusMsg struct{}
