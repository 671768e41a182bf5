// Package handlers holds what every resource handler package shares.
package handlers

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/hateoas"
	"github.com/5w1tchy/course-library-api/internal/logging"
	"github.com/5w1tchy/course-library-api/internal/mapper"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/paging"
	"github.com/5w1tchy/course-library-api/internal/propmap"
	"github.com/5w1tchy/course-library-api/internal/shaping"
	"github.com/5w1tchy/course-library-api/internal/storage/s3"
	"github.com/5w1tchy/course-library-api/internal/store/courselib"
)

// SyllabusStore presigns access to course syllabus objects.
type SyllabusStore interface {
	PresignUpload(ctx context.Context, objectKey, contentType string) (s3.Presigned, error)
	PresignDownload(ctx context.Context, objectKey string) (s3.Presigned, error)
	Delete(ctx context.Context, objectKey string) error
}

type Deps struct {
	DB      *sql.DB
	Sorts   *propmap.Registry
	Fields  *shaping.Checker
	Links   *hateoas.Linker
	Mapper  *mapper.Mapper
	Syllabi SyllabusStore // nil when object storage is not configured
}

// Repo opens a request-scoped unit of work.
func (d Deps) Repo() *courselib.Repository {
	return courselib.New(d.DB, d.Sorts)
}

// CheckQuery rejects orderBy and fields values that name unknown
// properties, before any storage access.
func (d Deps) CheckQuery(src, dst shaping.ShapeID, orderBy, fields string) error {
	if !d.Sorts.IsValid(src, dst, orderBy) {
		return apperr.Query(paging.KeyOrderBy, "invalid", "orderBy names an unknown property or direction")
	}
	if !d.Fields.HasProperties(dst, fields) {
		return apperr.Query(paging.KeyFields, "invalid", "fields names an unknown property")
	}
	return nil
}

// CheckFields reads and checks the fields query parameter for a single resource.
func (d Deps) CheckFields(r *http.Request, dst shaping.ShapeID) (string, error) {
	fields := r.URL.Query().Get(paging.KeyFields)
	if !d.Fields.HasProperties(dst, fields) {
		return "", apperr.Query(paging.KeyFields, "invalid", "fields names an unknown property")
	}
	return fields, nil
}

// DeleteSyllabi drops the stored objects of removed courses. Failures only
// leave orphaned objects behind, so they are logged.
func (d Deps) DeleteSyllabi(ctx context.Context, courses ...models.Course) {
	if d.Syllabi == nil {
		return
	}
	for _, c := range courses {
		if err := d.Syllabi.Delete(ctx, s3.SyllabusKey(c.AuthorID, c.ID)); err != nil {
			logging.FromContext(ctx).WithError(err).
				WithField("course", c.ID).Warn("failed to delete syllabus")
		}
	}
}
