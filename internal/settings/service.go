package settings

import (
	"context"
	"fmt"
	"log/slog"
)

// KV is the local key/value persistence. *store.SettingsRepo satisfies it.
type KV interface {
	Values(ctx context.Context) (map[string]string, error)
	PutValues(ctx context.Context, values map[string]string) error
	ClearValues(ctx context.Context) error
}

// Remote is the host copy of the settings.
type Remote interface {
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// Service loads from the host when it can and falls back to the local copy.
// Saves go local first; the host write is best effort.
type Service struct {
	kv     KV
	remote Remote
	logger *slog.Logger
}

// NewService creates a Service. remote and logger may be nil.
func NewService(kv KV, remote Remote, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{kv: kv, remote: remote, logger: logger}
}

// Load returns the current settings, normalized.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	if s.remote != nil {
		st, err := s.remote.LoadSettings(ctx)
		if err == nil {
			return st.Normalize(), nil
		}
		s.logger.Warn("load settings from host failed, using local copy", "error", err)
	}
	return s.loadLocal(ctx)
}

func (s *Service) loadLocal(ctx context.Context) (Settings, error) {
	values, err := s.kv.Values(ctx)
	if err != nil {
		return Defaults(), fmt.Errorf("load settings: %w", err)
	}
	return FromValues(values), nil
}

// Save normalizes and persists st, returning what was stored.
func (s *Service) Save(ctx context.Context, st Settings) (Settings, error) {
	st = st.Normalize()
	if err := s.kv.PutValues(ctx, st.Values()); err != nil {
		return st, fmt.Errorf("save settings: %w", err)
	}
	if s.remote != nil {
		if err := s.remote.SaveSettings(ctx, st); err != nil {
			s.logger.Warn("save settings to host failed", "error", err)
		}
	}
	return st, nil
}

// Update loads the settings, applies key=value and saves the result.
func (s *Service) Update(ctx context.Context, key, value string) (Settings, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return st, err
	}
	if err := st.Set(key, value); err != nil {
		return st, err
	}
	return s.Save(ctx, st)
}

// Reset restores the defaults locally and on the host.
func (s *Service) Reset(ctx context.Context) (Settings, error) {
	if err := s.kv.ClearValues(ctx); err != nil {
		return Defaults(), fmt.Errorf("reset settings: %w", err)
	}
	return s.Save(ctx, Defaults())
}
