package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type userRepo struct {
	drv *entsql.Driver
}

type userRow struct {
	Username     string `sql:"username"`
	PasswordHash string `sql:"password_hash"`
	CreatedAt    int64  `sql:"created_at"`
}

func (r *userRepo) Create(ctx context.Context, u User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(tableUsers).
		Columns("username", "password_hash", "created_at").
		Values(u.Username, u.PasswordHash, u.CreatedAt.UnixMilli()).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepo) Get(ctx context.Context, username string) (*User, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("username", "password_hash", "created_at").
		From(entsql.Table(tableUsers)).
		Where(entsql.EQ("username", username)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	defer rows.Close()

	var found []userRow
	if err := entsql.ScanSlice(rows, &found); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	row := found[0]
	return &User{
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    time.UnixMilli(row.CreatedAt),
	}, nil
}
