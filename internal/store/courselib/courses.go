package courselib

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/propmap"
	"github.com/5w1tchy/course-library-api/internal/store/dbx"
	"github.com/google/uuid"
)

const courseColumns = `id, title, description, author_id`

func scanCourse(s interface{ Scan(...any) error }) (models.Course, error) {
	var c models.Course
	err := s.Scan(&c.ID, &c.Title, &c.Description, &c.AuthorID)
	return c, err
}

func scanCourseRows(rows *sql.Rows) (models.Course, error) { return scanCourse(rows) }

// GetCourses lists an author's courses sorted by orderBy (title when empty).
func (r *Repository) GetCourses(ctx context.Context, authorID uuid.UUID, orderBy string) ([]models.Course, error) {
	if strings.TrimSpace(orderBy) == "" {
		orderBy = DefaultCourseOrder
	}
	keys, err := r.sorts.Translate(models.CourseShape, models.CourseDtoShape, orderBy)
	if err != nil {
		return nil, fmt.Errorf("courses order: %w", err)
	}
	keys = propmap.WithTieBreaker(keys, "id")

	q := `SELECT ` + courseColumns + ` FROM courses WHERE author_id = $1 ORDER BY ` + propmap.OrderBy(keys)
	out, err := dbx.QueryAll(ctx, r.db, scanCourseRows, q, authorID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

func (r *Repository) GetCourse(ctx context.Context, authorID, courseID uuid.UUID) (models.Course, error) {
	c, err := scanCourse(dbx.Get(ctx, r.db,
		`SELECT `+courseColumns+` FROM courses WHERE author_id = $1 AND id = $2`, authorID, courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, apperr.NotFound("course %s of author %s", courseID, authorID)
	}
	if err != nil {
		return models.Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// AddCourse assigns an id to c when it has none, binds it to authorID and
// queues the insert.
func (r *Repository) AddCourse(authorID uuid.UUID, c *models.Course) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.AuthorID = authorID
	r.queue(dbx.Stmt{
		Query: `INSERT INTO courses (` + courseColumns + `) VALUES ($1, $2, $3, $4)`,
		Args:  []any{c.ID, c.Title, c.Description, c.AuthorID},
	})
}

func (r *Repository) UpdateCourse(c models.Course) {
	r.queue(dbx.Stmt{
		Query:      `UPDATE courses SET title = $1, description = $2 WHERE id = $3 AND author_id = $4`,
		Args:       []any{c.Title, c.Description, c.ID, c.AuthorID},
		MustAffect: true,
	})
}

func (r *Repository) DeleteCourse(c models.Course) {
	r.queue(dbx.Stmt{
		Query:      `DELETE FROM courses WHERE id = $1 AND author_id = $2`,
		Args:       []any{c.ID, c.AuthorID},
		MustAffect: true,
	})
}
