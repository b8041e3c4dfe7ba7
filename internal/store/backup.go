package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type backupRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

type backupRow struct {
	ID        int64  `sql:"id"`
	User      string `sql:"user_id"`
	Name      string `sql:"name"`
	Sequence  int64  `sql:"sequence"`
	CreatedAt int64  `sql:"created_at"`
	Data      []byte `sql:"data"`
}

func (r *backupRepo) Save(ctx context.Context, user, name string, data []byte) (*Backup, error) {
	if err := checkKey(user, name); err != nil {
		return nil, err
	}
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	q, args := entsql.Dialect(dialect.SQLite).
		Insert(tableBackups).
		Columns("user_id", "name", "sequence", "created_at", "data").
		Values(user, name, seq, now.UnixMilli(), data).
		Query()
	var res entsql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return nil, fmt.Errorf("save backup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("backup id: %w", err)
	}
	return &Backup{ID: id, User: user, Name: name, Sequence: seq, CreatedAt: now, Data: data}, nil
}

func (r *backupRepo) Latest(ctx context.Context, user, name string) (*Backup, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("id", "user_id", "name", "sequence", "created_at", "data").
		From(entsql.Table(tableBackups)).
		Where(entsql.And(entsql.EQ("user_id", user), entsql.EQ("name", name))).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query latest backup: %w", err)
	}
	defer rows.Close()

	var found []backupRow
	if err := entsql.ScanSlice(rows, &found); err != nil {
		return nil, fmt.Errorf("scan backup: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	b := found[0]
	return &Backup{
		ID:        b.ID,
		User:      b.User,
		Name:      b.Name,
		Sequence:  b.Sequence,
		CreatedAt: time.UnixMilli(b.CreatedAt),
		Data:      b.Data,
	}, nil
}

func (r *backupRepo) Prune(ctx context.Context, user, name string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	// Find the sequence of the newest backup that falls outside the window.
	q, args := entsql.Dialect(dialect.SQLite).
		Select("sequence").
		From(entsql.Table(tableBackups)).
		Where(entsql.And(entsql.EQ("user_id", user), entsql.EQ("name", name))).
		OrderBy(entsql.Desc("sequence")).
		Offset(keep).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return fmt.Errorf("query backups for prune: %w", err)
	}
	var threshold []int64
	err := entsql.ScanSlice(rows, &threshold)
	rows.Close()
	if err != nil {
		return fmt.Errorf("scan prune threshold: %w", err)
	}
	if len(threshold) == 0 {
		return nil // fewer than keep backups exist
	}

	dq, dargs := entsql.Dialect(dialect.SQLite).
		Delete(tableBackups).
		Where(entsql.And(
			entsql.EQ("user_id", user),
			entsql.EQ("name", name),
			entsql.LTE("sequence", threshold[0]),
		)).
		Query()
	if err := r.drv.Exec(ctx, dq, dargs, nil); err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}
	return nil
}
