package courselib

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/paging"
	"github.com/5w1tchy/course-library-api/internal/propmap"
	"github.com/5w1tchy/course-library-api/internal/store/dbx"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const authorColumns = `id, first_name, last_name, date_of_birth, main_category`

func scanAuthor(s interface{ Scan(...any) error }) (models.Author, error) {
	var a models.Author
	err := s.Scan(&a.ID, &a.FirstName, &a.LastName, &a.DateOfBirth, &a.MainCategory)
	return a, err
}

func scanAuthorRows(rows *sql.Rows) (models.Author, error) { return scanAuthor(rows) }

// authorFilter renders the WHERE clause for mainCategory (exact, case
// insensitive) and searchQuery (substring of category or either name).
func authorFilter(p paging.Parameters) (string, []any) {
	var where []string
	var args []any

	if mc := strings.TrimSpace(p.MainCategory); mc != "" {
		args = append(args, norm.NFC.String(mc))
		where = append(where, "lower(main_category) = lower($"+strconv.Itoa(len(args))+")")
	}
	if sq := strings.TrimSpace(p.SearchQuery); sq != "" {
		args = append(args, containsPattern(norm.NFC.String(sq)))
		n := "$" + strconv.Itoa(len(args))
		where = append(where, "(main_category ILIKE "+n+" OR first_name ILIKE "+n+" OR last_name ILIKE "+n+")")
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// GetAuthors returns the page of authors p selects, sorted by p.OrderBy
// (or by name when empty).
func (r *Repository) GetAuthors(ctx context.Context, p paging.Parameters) (paging.PagedList[models.Author], error) {
	clause := p.OrderBy
	if strings.TrimSpace(clause) == "" {
		clause = DefaultAuthorOrder
	}
	keys, err := r.sorts.Translate(models.AuthorShape, models.AuthorDtoShape, clause)
	if err != nil {
		return paging.PagedList[models.Author]{}, fmt.Errorf("authors order: %w", err)
	}
	keys = propmap.WithTieBreaker(keys, "id")

	where, args := authorFilter(p)

	var total int
	if err := dbx.Get(ctx, r.db, `SELECT COUNT(*) FROM authors`+where, args...).Scan(&total); err != nil {
		return paging.PagedList[models.Author]{}, fmt.Errorf("count authors: %w", err)
	}

	size := p.PageSize()
	offset := int64(p.PageNumber-1) * int64(size)
	n := len(args)
	q := `SELECT ` + authorColumns + ` FROM authors` + where +
		` ORDER BY ` + propmap.OrderBy(keys) +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, size, offset)

	items, err := dbx.QueryAll(ctx, r.db, scanAuthorRows, q, args...)
	if err != nil {
		return paging.PagedList[models.Author]{}, fmt.Errorf("list authors: %w", err)
	}
	return paging.NewPagedList(items, total, p.PageNumber, size), nil
}

// GetAuthorsByIDs returns the authors found among ids, in ids order.
// Missing ids are simply absent from the result.
func (r *Repository) GetAuthorsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Author, error) {
	if len(ids) == 0 {
		return []models.Author{}, nil
	}
	args := make([]any, len(ids))
	pos := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		args[i] = id
		pos[id] = i
	}
	q := `SELECT ` + authorColumns + ` FROM authors WHERE id IN (` + placeholders(1, len(ids)) + `)`
	found, err := dbx.QueryAll(ctx, r.db, scanAuthorRows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("authors by ids: %w", err)
	}

	ordered := make([]*models.Author, len(ids))
	for i := range found {
		if p, ok := pos[found[i].ID]; ok {
			ordered[p] = &found[i]
		}
	}
	out := make([]models.Author, 0, len(found))
	for _, a := range ordered {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *Repository) GetAuthor(ctx context.Context, id uuid.UUID) (models.Author, error) {
	a, err := scanAuthor(dbx.Get(ctx, r.db, `SELECT `+authorColumns+` FROM authors WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, apperr.NotFound("author %s", id)
	}
	if err != nil {
		return models.Author{}, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}

func (r *Repository) AuthorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	if err := dbx.Get(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM authors WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("author exists: %w", err)
	}
	return ok, nil
}

// RequireAuthor returns apperr.ErrNotFound when the author is absent.
func (r *Repository) RequireAuthor(ctx context.Context, id uuid.UUID) error {
	ok, err := r.AuthorExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("author %s", id)
	}
	return nil
}

// AddAuthor assigns ids to a and its courses and queues their inserts.
func (r *Repository) AddAuthor(a *models.Author) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.queue(dbx.Stmt{
		Query: `INSERT INTO authors (` + authorColumns + `) VALUES ($1, $2, $3, $4, $5)`,
		Args:  []any{a.ID, a.FirstName, a.LastName, a.DateOfBirth, a.MainCategory},
	})
	for i := range a.Courses {
		r.AddCourse(a.ID, &a.Courses[i])
	}
}

// DeleteAuthor queues removal of the author; courses go with it.
func (r *Repository) DeleteAuthor(a models.Author) {
	r.queue(dbx.Stmt{
		Query:      `DELETE FROM authors WHERE id = $1`,
		Args:       []any{a.ID},
		MustAffect: true,
	})
}
