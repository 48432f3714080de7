package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// SettingsRepo is a string key/value table for application settings.
type SettingsRepo struct {
	drv *entsql.Driver
}

// Values returns every stored key.
func (r *SettingsRepo) Values(ctx context.Context) (map[string]string, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(colKey, colValue).
		From(entsql.Table(settingsTable)).
		Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}

// PutValues upserts every entry of values in one transaction.
func (r *SettingsRepo) PutValues(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := time.Now()
	ins := entsql.Dialect(dialect.SQLite).
		Insert(settingsTable).
		Columns(colKey, colValue, colUpdatedAt)
	for k, v := range values {
		ins.Values(k, v, now)
	}
	q, args := ins.OnConflict(
		entsql.ConflictColumns(colKey),
		entsql.ResolveWithNewValues(),
	).Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ClearValues deletes every stored key.
func (r *SettingsRepo) ClearValues(ctx context.Context) error {
	q, args := entsql.Dialect(dialect.SQLite).Delete(settingsTable).Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}
