package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/level"
)

// CompletionRepo implements level.CompletionRepo on level_completions.
type CompletionRepo struct {
	drv *entsql.Driver
}

var _ level.CompletionRepo = (*CompletionRepo)(nil)

// Completions returns every stored completion keyed by level id.
func (r *CompletionRepo) Completions(ctx context.Context) (level.Completions, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(completionColumns...).
		From(entsql.Table(completionsTable)).
		Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	out := make(level.Completions)
	for rows.Next() {
		var (
			c  level.Completion
			ts time.Time
		)
		if err := rows.Scan(&c.LevelID, &c.StarsEarned, &c.CorrectAnswers, &c.TotalQuestions,
			&c.BestAccuracy, &c.BestTime, &ts, &c.IsNewRecord); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		c.CompletedAt = attempt.Timestamp{Time: ts}
		out[c.LevelID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return out, nil
}

// SaveCompletion upserts c by level id.
func (r *CompletionRepo) SaveCompletion(ctx context.Context, c level.Completion) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(completionsTable).
		Columns(completionColumns...).
		Values(c.LevelID, c.StarsEarned, c.CorrectAnswers, c.TotalQuestions,
			c.BestAccuracy, c.BestTime, c.CompletedAt.Time, c.IsNewRecord).
		OnConflict(
			entsql.ConflictColumns(colLevelID),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save completion for level %d: %w", c.LevelID, err)
	}
	return nil
}

// ClearCompletions deletes every completion.
func (r *CompletionRepo) ClearCompletions(ctx context.Context) error {
	q, args := entsql.Dialect(dialect.SQLite).Delete(completionsTable).Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("clear completions: %w", err)
	}
	return nil
}
