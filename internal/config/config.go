// Package config resolves runtime configuration from defaults, the
// environment, and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Agampodige/MathDrill/internal/bridge"
	"github.com/Agampodige/MathDrill/internal/session"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvDB               = "MATHDRILL_DB"
	EnvBridgeURL        = "MATHDRILL_BRIDGE_URL"
	EnvBridgeTimeout    = "MATHDRILL_BRIDGE_TIMEOUT"
	EnvHandshakeTimeout = "MATHDRILL_HANDSHAKE_TIMEOUT"
	EnvReconnectMax     = "MATHDRILL_RECONNECT_MAX"
	EnvLogFile          = "MATHDRILL_LOG_FILE"
	EnvLogLevel         = "MATHDRILL_LOG_LEVEL"
)

// Config holds all runtime configuration.
type Config struct {
	// DBPath is the SQLite file. Empty resolves to the XDG data dir.
	DBPath string

	// BridgeURL is the host websocket, e.g. ws://127.0.0.1:8765/bridge.
	// Empty runs fully local.
	BridgeURL        string
	BridgeTimeout    time.Duration // Default: 5s
	HandshakeTimeout time.Duration // Default: 5s
	Reconnect        ReconnectConfig

	// LogFile receives structured logs. Empty resolves next to the database.
	LogFile  string
	LogLevel string // debug, info, warn, error. Default: info

	FeedbackCorrect   time.Duration // Default: 1.5s
	FeedbackIncorrect time.Duration // Default: 2s
}

// ReconnectConfig configures the bridge reconnect backoff.
type ReconnectConfig struct {
	MaxAttempts int // 0 retries forever
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with the stock defaults.
func DefaultConfig() Config {
	b := bridge.DefaultBackoff()
	opts := bridge.DefaultOptions()
	return Config{
		BridgeTimeout:    opts.Timeout,
		HandshakeTimeout: opts.HandshakeTimeout,
		Reconnect: ReconnectConfig{
			MaxAttempts: b.MaxAttempts,
			InitialWait: b.InitialWait,
			MaxWait:     b.MaxWait,
			Multiplier:  b.Multiplier,
		},
		LogLevel:          "info",
		FeedbackCorrect:   session.DefaultFeedbackCorrect,
		FeedbackIncorrect: session.DefaultFeedbackIncorrect,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. Unparseable values are reported and the
// default is kept.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	if p := os.Getenv(EnvDB); p != "" {
		cfg.DBPath = p
	}
	if u := os.Getenv(EnvBridgeURL); u != "" {
		cfg.BridgeURL = u
	}
	if v := os.Getenv(EnvBridgeTimeout); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvBridgeTimeout, err))
		} else {
			cfg.BridgeTimeout = d
		}
	}
	if v := os.Getenv(EnvHandshakeTimeout); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvHandshakeTimeout, err))
		} else {
			cfg.HandshakeTimeout = d
		}
	}
	if v := os.Getenv(EnvReconnectMax); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvReconnectMax, err))
		} else {
			cfg.Reconnect.MaxAttempts = n
		}
	}
	if f := os.Getenv(EnvLogFile); f != "" {
		cfg.LogFile = f
	}
	if l := os.Getenv(EnvLogLevel); l != "" {
		cfg.LogLevel = strings.ToLower(l)
	}

	return cfg, errors.Join(errs...)
}

// parseDuration accepts Go durations ("750ms") and bare seconds ("3").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.BridgeURL != "" {
		u, err := url.Parse(c.BridgeURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("bridge url: %w", err))
		case u.Scheme != "ws" && u.Scheme != "wss":
			errs = append(errs, fmt.Errorf("bridge url %q: scheme must be ws or wss", c.BridgeURL))
		case u.Host == "":
			errs = append(errs, fmt.Errorf("bridge url %q: missing host", c.BridgeURL))
		}
	}
	if c.BridgeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("bridge timeout must be positive, got %s", c.BridgeTimeout))
	}
	if c.HandshakeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("handshake timeout must be positive, got %s", c.HandshakeTimeout))
	}
	if c.Reconnect.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("reconnect attempts must not be negative, got %d", c.Reconnect.MaxAttempts))
	}
	if c.Reconnect.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("reconnect multiplier must be >= 1, got %v", c.Reconnect.Multiplier))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// BridgeOptions converts the bridge settings into client options.
func (c Config) BridgeOptions(logger *slog.Logger) bridge.Options {
	return bridge.Options{
		Timeout:          c.BridgeTimeout,
		HandshakeTimeout: c.HandshakeTimeout,
		Backoff: bridge.Backoff{
			MaxAttempts: c.Reconnect.MaxAttempts,
			InitialWait: c.Reconnect.InitialWait,
			MaxWait:     c.Reconnect.MaxWait,
			Multiplier:  c.Reconnect.Multiplier,
		},
		Logger:     logger,
		ClientName: "MathDrill",
	}
}
