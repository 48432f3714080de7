package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/problemgen"
)

// AttemptRepo implements attempt.Repo on the attempts table.
type AttemptRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var _ attempt.Repo = (*AttemptRepo)(nil)

// Append inserts a and raises the id counter to a.ID if it lags behind.
func (r *AttemptRepo) Append(ctx context.Context, a attempt.Attempt) error {
	return r.inTx(ctx, func(tx dialect.Tx) error {
		if err := insertAttempts(ctx, tx, []attempt.Attempt{a}); err != nil {
			return err
		}
		return raiseLast(ctx, tx, a.ID)
	})
}

// All returns every attempt ordered by id.
func (r *AttemptRepo) All(ctx context.Context) ([]attempt.Attempt, error) {
	sel := selectAttempts().OrderBy(entsql.Asc(colID))
	return r.query(ctx, sel)
}

// ByOperation returns the attempts for op ordered by id.
func (r *AttemptRepo) ByOperation(ctx context.Context, op problemgen.Operation) ([]attempt.Attempt, error) {
	sel := selectAttempts().
		Where(entsql.EQ(colOperation, string(op))).
		OrderBy(entsql.Asc(colID))
	return r.query(ctx, sel)
}

// Recent returns up to n attempts, newest first.
func (r *AttemptRepo) Recent(ctx context.Context, n int) ([]attempt.Attempt, error) {
	if n <= 0 {
		return nil, nil
	}
	sel := selectAttempts().OrderBy(entsql.Desc(colID)).Limit(n)
	return r.query(ctx, sel)
}

// Count returns the number of stored attempts.
func (r *AttemptRepo) Count(ctx context.Context) (int, error) {
	n, err := countInTx(ctx, r.drv)
	return int(n), err
}

// NextID reserves the next attempt id.
func (r *AttemptRepo) NextID(ctx context.Context) (int64, error) {
	return r.seq.Next(ctx)
}

// LastID returns the last reserved id.
func (r *AttemptRepo) LastID(ctx context.Context) (int64, error) {
	return r.seq.Last(ctx)
}

// Clear deletes every attempt and resets the counter to 0.
func (r *AttemptRepo) Clear(ctx context.Context) error {
	return r.inTx(ctx, func(tx dialect.Tx) error {
		q, args := entsql.Dialect(dialect.SQLite).Delete(attemptsTable).Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		return setLast(ctx, tx, 0)
	})
}

// Replace swaps the stored history for c in one transaction.
func (r *AttemptRepo) Replace(ctx context.Context, c attempt.Collection) error {
	return r.inTx(ctx, func(tx dialect.Tx) error {
		return replaceAttempts(ctx, tx, c)
	})
}

// ReplaceIfEmpty stores c only when the table holds no attempts and the
// counter is still 0. The check and the write share one transaction, so an
// attempt recorded concurrently is never overwritten.
func (r *AttemptRepo) ReplaceIfEmpty(ctx context.Context, c attempt.Collection) (bool, error) {
	var replaced bool
	err := r.inTx(ctx, func(tx dialect.Tx) error {
		last, err := lastInTx(ctx, tx)
		if err != nil {
			return err
		}
		n, err := countInTx(ctx, tx)
		if err != nil {
			return err
		}
		if last > 0 || n > 0 {
			return nil
		}
		if err := replaceAttempts(ctx, tx, c); err != nil {
			return err
		}
		replaced = true
		return nil
	})
	return replaced, err
}

// Merge appends attempts with ids continuing from the counter, keeping
// their order, and advances the counter past them. Either every attempt is
// stored or none is.
func (r *AttemptRepo) Merge(ctx context.Context, attempts []attempt.Attempt) ([]attempt.Attempt, error) {
	if len(attempts) == 0 {
		return nil, nil
	}
	out := slices.Clone(attempts)
	err := r.inTx(ctx, func(tx dialect.Tx) error {
		last, err := lastInTx(ctx, tx)
		if err != nil {
			return err
		}
		for i := range out {
			out[i].ID = last + int64(i) + 1
		}
		if err := insertAttempts(ctx, tx, out); err != nil {
			return err
		}
		return setLast(ctx, tx, last+int64(len(out)))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func replaceAttempts(ctx context.Context, tx dialect.Tx, c attempt.Collection) error {
	q, args := entsql.Dialect(dialect.SQLite).Delete(attemptsTable).Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	if err := insertAttempts(ctx, tx, c.Attempts); err != nil {
		return err
	}
	return setLast(ctx, tx, c.LastID)
}

func countInTx(ctx context.Context, ex dialect.ExecQuerier) (int64, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(attemptsTable)).
		Query()
	n, err := queryInt64(ctx, ex, q, args)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (r *AttemptRepo) inTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	r.seq.mu.Lock()
	defer r.seq.mu.Unlock()

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// insertBatch keeps each INSERT well under SQLite's bound-parameter limit.
const insertBatch = 500

func insertAttempts(ctx context.Context, ex dialect.ExecQuerier, attempts []attempt.Attempt) error {
	for start := 0; start < len(attempts); start += insertBatch {
		batch := attempts[start:min(start+insertBatch, len(attempts))]
		ins := entsql.Dialect(dialect.SQLite).Insert(attemptsTable).Columns(attemptColumns...)
		for _, a := range batch {
			ins.Values(
				a.ID, string(a.Operation), a.Digits, a.Question, a.UserAnswer,
				a.CorrectAnswer, a.IsCorrect, a.TimeTaken, a.Timestamp.Time,
			)
		}
		q, args := ins.Query()
		if err := ex.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert attempts: %w", err)
		}
	}
	return nil
}

func selectAttempts() *entsql.Selector {
	return entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptsTable))
}

func (r *AttemptRepo) query(ctx context.Context, sel *entsql.Selector) ([]attempt.Attempt, error) {
	q, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []attempt.Attempt
	for rows.Next() {
		var (
			a  attempt.Attempt
			op string
			ts time.Time
		)
		if err := rows.Scan(&a.ID, &op, &a.Digits, &a.Question, &a.UserAnswer,
			&a.CorrectAnswer, &a.IsCorrect, &a.TimeTaken, &ts); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Operation = problemgen.Operation(op)
		a.Timestamp = attempt.Timestamp{Time: ts}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}
