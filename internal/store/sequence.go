package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out attempt ids from the single-row
// attempt_sequence table. last_id survives restarts, so ids keep
// increasing across sessions until the history is cleared.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// newSequenceCounter seeds the counter row if it is missing.
func newSequenceCounter(ctx context.Context, drv *entsql.Driver) (*sequenceCounter, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(sequenceTable).
		Columns(colID, colLastID).
		Values(1, 0).
		OnConflict(entsql.DoNothing()).
		Query()
	if err := drv.Exec(ctx, q, args, nil); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{drv: drv}, nil
}

// Next atomically increments the counter and returns the new value.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	q, args := entsql.Dialect(dialect.SQLite).
		Update(sequenceTable).
		Add(colLastID, 1).
		Where(entsql.EQ(colID, 1)).
		Returning(colLastID).
		Query()
	id, err := queryInt64(ctx, sc.drv, q, args)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return id, nil
}

// Last returns the most recently issued value, 0 when none.
func (sc *sequenceCounter) Last(ctx context.Context) (int64, error) {
	return lastInTx(ctx, sc.drv)
}

// lastInTx reads the counter through ex, which may be an open transaction.
func lastInTx(ctx context.Context, ex dialect.ExecQuerier) (int64, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(colLastID).
		From(entsql.Table(sequenceTable)).
		Where(entsql.EQ(colID, 1)).
		Query()
	id, err := queryInt64(ctx, ex, q, args)
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return id, nil
}

// setLast overwrites the counter inside an open transaction.
func setLast(ctx context.Context, ex dialect.ExecQuerier, v int64) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Update(sequenceTable).
		Set(colLastID, v).
		Where(entsql.EQ(colID, 1)).
		Query()
	return ex.Exec(ctx, q, args, nil)
}

// raiseLast moves the counter up to v if it is below it.
func raiseLast(ctx context.Context, ex dialect.ExecQuerier, v int64) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Update(sequenceTable).
		Set(colLastID, v).
		Where(entsql.And(entsql.EQ(colID, 1), entsql.LT(colLastID, v))).
		Query()
	return ex.Exec(ctx, q, args, nil)
}

func queryInt64(ctx context.Context, ex dialect.ExecQuerier, q string, args []any) (int64, error) {
	var rows entsql.Rows
	if err := ex.Query(ctx, q, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	return entsql.ScanInt64(rows)
}
