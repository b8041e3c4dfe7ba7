package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sqliteKV implements KV over the kv_entries table.
type sqliteKV struct {
	drv *entsql.Driver
}

func (k *sqliteKV) Get(ctx context.Context, user, key string) ([]byte, error) {
	if err := checkKey(user, key); err != nil {
		return nil, err
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Select("value").
		From(entsql.Table(tableKV)).
		Where(entsql.And(entsql.EQ("user_id", user), entsql.EQ("name", key))).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := k.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", user, key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get %s/%s: %w", user, key, err)
		}
		return nil, ErrNotFound
	}
	var blob []byte
	if err := rows.Scan(&blob); err != nil {
		return nil, fmt.Errorf("scan %s/%s: %w", user, key, err)
	}
	return blob, nil
}

func (k *sqliteKV) Set(ctx context.Context, user, key string, blob []byte) error {
	if err := checkKey(user, key); err != nil {
		return err
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(tableKV).
		Columns("user_id", "name", "value", "updated_at").
		Values(user, key, blob, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("user_id", "name"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := k.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("set %s/%s: %w", user, key, err)
	}
	return nil
}

func (k *sqliteKV) Delete(ctx context.Context, user, key string) error {
	if err := checkKey(user, key); err != nil {
		return err
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Delete(tableKV).
		Where(entsql.And(entsql.EQ("user_id", user), entsql.EQ("name", key))).
		Query()
	if err := k.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", user, key, err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the database.
func (k *sqliteKV) Close() error { return nil }
