package courselib

import (
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/propmap"
)

// Default orderings when a request names none. id is always appended as
// the final tie-breaker so pages are stable.
const (
	DefaultAuthorOrder = "name"
	DefaultCourseOrder = "title"
)

// RegisterSortMappings declares how public sort fields map to columns.
func RegisterSortMappings(b *propmap.Builder) error {
	if err := b.Register(models.AuthorShape, models.AuthorDtoShape, propmap.NewMapping(
		propmap.Map("id", propmap.Col("id")),
		propmap.Map("mainCategory", propmap.Col("main_category")),
		propmap.Map("age", propmap.Reversed("date_of_birth")),
		propmap.Map("name", propmap.Col("first_name"), propmap.Col("last_name")),
	)); err != nil {
		return err
	}
	return b.Register(models.CourseShape, models.CourseDtoShape, propmap.NewMapping(
		propmap.Map("id", propmap.Col("id")),
		propmap.Map("title", propmap.Col("title")),
		propmap.Map("description", propmap.Col("description")),
	))
}

// NewSortRegistry builds the frozen registry for this store.
func NewSortRegistry() (*propmap.Registry, error) {
	b := propmap.NewBuilder()
	if err := RegisterSortMappings(b); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
