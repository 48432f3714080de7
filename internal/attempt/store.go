package attempt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// Repo is the local persistence behind a Store.
type Repo interface {
	// Append inserts one attempt.
	Append(ctx context.Context, a Attempt) error

	// All returns every attempt ordered by id.
	All(ctx context.Context) ([]Attempt, error)

	// ByOperation returns the attempts for one operation ordered by id.
	ByOperation(ctx context.Context, op problemgen.Operation) ([]Attempt, error)

	// Recent returns up to n attempts, newest first.
	Recent(ctx context.Context, n int) ([]Attempt, error)

	// NextID reserves and returns the next attempt id.
	NextID(ctx context.Context) (int64, error)

	// LastID returns the last reserved id, 0 when none.
	LastID(ctx context.Context) (int64, error)

	// Clear removes every attempt and resets the id counter to 0.
	Clear(ctx context.Context) error

	// Replace atomically swaps the stored history for c.
	Replace(ctx context.Context, c Collection) error

	// ReplaceIfEmpty stores c only when no attempt exists and the counter
	// is 0, checking and writing atomically. It reports whether c was stored.
	ReplaceIfEmpty(ctx context.Context, c Collection) (bool, error)

	// Merge appends attempts in order with ids continuing from the counter
	// and returns them renumbered. Nothing is stored on error.
	Merge(ctx context.Context, attempts []Attempt) ([]Attempt, error)
}

// Mirror receives best-effort copies of every mutation.
type Mirror interface {
	SaveAttempts(ctx context.Context, c Collection) error
	ClearAttempts(ctx context.Context) error
}

// Store is the attempt store: local persistence first, then a best-effort
// mirror. Mirror failures are logged and never returned.
type Store struct {
	repo   Repo
	mirror Mirror
	logger *slog.Logger
}

// NewStore creates a Store. mirror may be nil.
func NewStore(repo Repo, mirror Mirror, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{repo: repo, mirror: mirror, logger: logger}
}

// Record builds an attempt for a submitted answer with the next id and appends it.
func (s *Store) Record(ctx context.Context, q problemgen.Question, userAnswer float64, taken time.Duration, now time.Time) (Attempt, error) {
	id, err := s.repo.NextID(ctx)
	if err != nil {
		return Attempt{}, fmt.Errorf("next attempt id: %w", err)
	}
	a := New(id, q, userAnswer, taken, now)
	if err := s.Append(ctx, a); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// Append persists a and mirrors the full collection.
func (s *Store) Append(ctx context.Context, a Attempt) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.repo.Append(ctx, a); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	s.mirrorSave(ctx)
	return nil
}

// LoadAll returns the full ordered history.
func (s *Store) LoadAll(ctx context.Context) ([]Attempt, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	return all, nil
}

// ByOperation returns the attempts for op.
func (s *Store) ByOperation(ctx context.Context, op problemgen.Operation) ([]Attempt, error) {
	out, err := s.repo.ByOperation(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("load %s attempts: %w", op, err)
	}
	return out, nil
}

// Recent returns up to n attempts, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Attempt, error) {
	out, err := s.repo.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("load recent attempts: %w", err)
	}
	return out, nil
}

// LastID returns the persisted id counter.
func (s *Store) LastID(ctx context.Context) (int64, error) {
	return s.repo.LastID(ctx)
}

// Clear removes all attempts and resets LastID to 0.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.ClearAttempts(ctx); err != nil {
			s.logger.Warn("mirror clear_attempts failed", "err", err)
		}
	}
	return nil
}

// Export returns the history as one serialized record.
func (s *Store) Export(ctx context.Context) (Collection, error) {
	last, err := s.repo.LastID(ctx)
	if err != nil {
		return Collection{}, fmt.Errorf("read last id: %w", err)
	}
	all, err := s.LoadAll(ctx)
	if err != nil {
		return Collection{}, err
	}
	if all == nil {
		all = []Attempt{}
	}
	return Collection{LastID: last, Attempts: all}, nil
}

// Import loads c. With replace the stored history is swapped for c.
// Otherwise attempts are appended with fresh ids past the current counter,
// keeping their relative order. Returns the number of attempts imported.
func (s *Store) Import(ctx context.Context, c Collection, replace bool) (int, error) {
	if replace {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("invalid collection: %w", err)
		}
		if err := s.repo.Replace(ctx, c); err != nil {
			return 0, fmt.Errorf("replace attempts: %w", err)
		}
		s.mirrorSave(ctx)
		return len(c.Attempts), nil
	}

	// Ids are assigned by the repo; a placeholder lets every other field be
	// checked before anything is written.
	for i, a := range c.Attempts {
		a.ID = int64(i) + 1
		if err := a.Validate(); err != nil {
			return 0, fmt.Errorf("attempts[%d]: %w", i, err)
		}
	}
	if len(c.Attempts) == 0 {
		return 0, nil
	}
	if _, err := s.repo.Merge(ctx, c.Attempts); err != nil {
		return 0, fmt.Errorf("merge attempts: %w", err)
	}
	s.mirrorSave(ctx)
	return len(c.Attempts), nil
}

func (s *Store) mirrorSave(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	c, err := s.Export(ctx)
	if err != nil {
		s.logger.Warn("export for mirror failed", "err", err)
		return
	}
	if err := s.mirror.SaveAttempts(ctx, c); err != nil {
		s.logger.Warn("mirror save_attempts failed", "err", err, "attempts", len(c.Attempts))
	}
}

// Source supplies the host copy of the history.
type Source interface {
	LoadAttempts(ctx context.Context) (Collection, error)
}

// Restore seeds an empty local history from src, for a fresh install
// next to a host that already holds data. It returns the number of
// attempts restored, 0 when local attempts exist or src has none.
func (s *Store) Restore(ctx context.Context, src Source) (int, error) {
	last, err := s.repo.LastID(ctx)
	if err != nil {
		return 0, fmt.Errorf("read last id: %w", err)
	}
	if last > 0 {
		return 0, nil
	}
	c, err := src.LoadAttempts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load host attempts: %w", err)
	}
	if len(c.Attempts) == 0 {
		return 0, nil
	}
	if err := c.Validate(); err != nil {
		return 0, fmt.Errorf("invalid host collection: %w", err)
	}
	// Attempts may have been recorded while the host answered.
	ok, err := s.repo.ReplaceIfEmpty(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("restore attempts: %w", err)
	}
	if !ok {
		s.logger.Info("skipped host restore, local attempts recorded meanwhile", "hostAttempts", len(c.Attempts))
		return 0, nil
	}
	s.logger.Info("restored attempts from host", "attempts", len(c.Attempts), "lastId", c.LastID)
	return len(c.Attempts), nil
}
