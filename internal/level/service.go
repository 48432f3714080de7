package level

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Remote is the host side of level data. Every call may fail; the Service
// falls back to local state when it does.
type Remote interface {
	LoadLevels(ctx context.Context) ([]Level, Progression, error)
	GetLevel(ctx context.Context, id int) (Level, error)
	CompleteLevel(ctx context.Context, run Run) (Result, error)
	LevelProgress(ctx context.Context) (Progression, error)
}

// CompletionRepo persists completion records locally.
type CompletionRepo interface {
	Completions(ctx context.Context) (Completions, error)
	SaveCompletion(ctx context.Context, c Completion) error
	ClearCompletions(ctx context.Context) error
}

// Service serves levels from the host when reachable and from the local
// catalog plus stored completions otherwise.
type Service struct {
	catalog    *Catalog
	repo       CompletionRepo
	remote     Remote
	thresholds Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRemote sets the host collaborator.
func WithRemote(r Remote) ServiceOption {
	return func(s *Service) { s.remote = r }
}

// WithThresholds overrides the star thresholds.
func WithThresholds(t Thresholds) ServiceOption {
	return func(s *Service) { s.thresholds = t }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the completion timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over catalog and repo.
func NewService(catalog *Catalog, repo CompletionRepo, opts ...ServiceOption) *Service {
	s := &Service{
		catalog:    catalog,
		repo:       repo,
		thresholds: DefaultThresholds(),
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Thresholds returns the star thresholds used for rating.
func (s *Service) Thresholds() Thresholds { return s.thresholds }

// Catalog returns the local catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Levels returns every level with state, plus the progression summary.
func (s *Service) Levels(ctx context.Context) ([]Level, Progression, error) {
	if s.remote != nil {
		levels, prog, err := s.remote.LoadLevels(ctx)
		if err == nil && len(levels) > 0 {
			return levels, prog, nil
		}
		s.fallback("load_levels", err)
	}
	done, err := s.repo.Completions(ctx)
	if err != nil {
		return nil, Progression{}, fmt.Errorf("load completions: %w", err)
	}
	return s.catalog.Levels(done), s.catalog.Progression(done), nil
}

// Level returns one level with state.
func (s *Service) Level(ctx context.Context, id int) (Level, error) {
	if s.remote != nil {
		l, err := s.remote.GetLevel(ctx, id)
		if err == nil && l.ID == id {
			return l, nil
		}
		s.fallback("get_level", err)
	}
	done, err := s.repo.Completions(ctx)
	if err != nil {
		return Level{}, fmt.Errorf("load completions: %w", err)
	}
	return s.catalog.Level(id, done)
}

// Progression returns the learner's progression summary.
func (s *Service) Progression(ctx context.Context) (Progression, error) {
	if s.remote != nil {
		p, err := s.remote.LevelProgress(ctx)
		if err == nil {
			return p, nil
		}
		s.fallback("get_level_progress", err)
	}
	done, err := s.repo.Completions(ctx)
	if err != nil {
		return Progression{}, fmt.Errorf("load completions: %w", err)
	}
	return s.catalog.Progression(done), nil
}

// Complete rates a finished run and records it locally. When the host is
// reachable its result is returned; otherwise the local rating is.
func (s *Service) Complete(ctx context.Context, run Run) (Result, error) {
	lvl, err := s.catalog.Definition(run.LevelID)
	if err != nil {
		return Result{}, err
	}
	done, err := s.repo.Completions(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load completions: %w", err)
	}

	var prev *Completion
	if c, ok := done[run.LevelID]; ok {
		prev = &c
	}
	result, comp := Rate(lvl, run, prev, s.thresholds, s.now())
	if comp != nil {
		if err := s.repo.SaveCompletion(ctx, *comp); err != nil {
			return Result{}, fmt.Errorf("save completion: %w", err)
		}
	}

	if s.remote != nil {
		remote, err := s.remote.CompleteLevel(ctx, run)
		if err == nil {
			return remote, nil
		}
		s.fallback("complete_level", err)
	}
	return result, nil
}

// Reset clears the local completion records.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.ClearCompletions(ctx); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}
	return nil
}

func (s *Service) fallback(op string, err error) {
	if err == nil {
		err = errors.New("empty response")
	}
	s.logger.Warn("host unavailable, using local levels", "op", op, "err", err)
}
