package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Queryer/Execer/Getter let these helpers work with *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
type Getter interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Stmt is one deferred write.
type Stmt struct {
	Query string
	Args  []any
	// MustAffect fails the batch with ErrNoRows when the statement
	// changes nothing.
	MustAffect bool
}

var ErrNoRows = errors.New("statement affected no rows")

// Get runs a single-row query; scan errors surface sql.ErrNoRows.
func Get(ctx context.Context, g Getter, query string, args ...any) *sql.Row {
	return g.QueryRowContext(ctx, query, args...)
}

// QueryAll runs query and scans every row with scan.
func QueryAll[T any](ctx context.Context, q Queryer, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// WithinTx runs fn in a transaction (commit on nil, rollback on error).
func WithinTx(ctx context.Context, db Beginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ExecAll runs stmts in order inside one transaction.
func ExecAll(ctx context.Context, db Beginner, stmts []Stmt) error {
	return WithinTx(ctx, db, func(tx *sql.Tx) error {
		for i, s := range stmts {
			res, err := tx.ExecContext(ctx, s.Query, s.Args...)
			if err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
			if s.MustAffect {
				n, err := res.RowsAffected()
				if err != nil {
					return fmt.Errorf("statement %d: %w", i+1, err)
				}
				if n == 0 {
					return fmt.Errorf("statement %d: %w", i+1, ErrNoRows)
				}
			}
		}
		return nil
	})
}
