// Package courselib is the Postgres-backed unit of work for authors and
// their courses.
package courselib

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/propmap"
	"github.com/5w1tchy/course-library-api/internal/store/dbx"
)

// Repository is request scoped: reads hit the pool directly, writes are
// queued until Save commits them in one transaction. Not safe for
// concurrent use.
type Repository struct {
	db      *sql.DB
	sorts   *propmap.Registry
	pending []dbx.Stmt
}

func New(db *sql.DB, sorts *propmap.Registry) *Repository {
	return &Repository{db: db, sorts: sorts}
}

func (r *Repository) queue(s dbx.Stmt) { r.pending = append(r.pending, s) }

// Pending reports how many writes await Save.
func (r *Repository) Pending() int { return len(r.pending) }

// Save commits queued writes. A write that was expected to change a row
// and did not surfaces as apperr.ErrNotFound. The queue is cleared either
// way.
func (r *Repository) Save(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	stmts := r.pending
	r.pending = nil

	if err := dbx.ExecAll(ctx, r.db, stmts); err != nil {
		if errors.Is(err, dbx.ErrNoRows) {
			return fmt.Errorf("save: %w: %w", apperr.ErrNotFound, err)
		}
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// placeholders returns "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(ps, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
