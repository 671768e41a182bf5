// Package mapper converts between stored entities and transfer shapes.
// Outbound views are built field by field; inbound bodies go through
// copier, whose errors are returned.
package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type Mapper struct {
	now func() time.Time
}

func New() *Mapper { return &Mapper{now: time.Now} }

// WithClock returns a Mapper computing ages against now.
func WithClock(now func() time.Time) *Mapper { return &Mapper{now: now} }

// Age is the number of whole years from dob to now.
func Age(dob, now time.Time) int {
	dob, now = dob.UTC(), now.UTC()
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

func (m *Mapper) AuthorDto(a models.Author) models.AuthorDto {
	return models.AuthorDto{
		ID:           a.ID,
		Name:         strings.TrimSpace(a.FirstName + " " + a.LastName),
		Age:          Age(a.DateOfBirth, m.now()),
		MainCategory: a.MainCategory,
	}
}

func (m *Mapper) AuthorDtos(as []models.Author) []models.AuthorDto {
	out := make([]models.AuthorDto, 0, len(as))
	for _, a := range as {
		out = append(out, m.AuthorDto(a))
	}
	return out
}

// AuthorFromCreation builds a new entity; ids are assigned by the repository.
func (m *Mapper) AuthorFromCreation(in models.AuthorForCreation) (models.Author, error) {
	var a models.Author
	if err := copier.Copy(&a, &in); err != nil {
		return models.Author{}, fmt.Errorf("map author: %w", err)
	}
	a.Courses = make([]models.Course, 0, len(in.Courses))
	for _, c := range in.Courses {
		course, err := m.CourseFromCreation(c, uuid.Nil)
		if err != nil {
			return models.Author{}, err
		}
		a.Courses = append(a.Courses, course)
	}
	return a, nil
}

func (m *Mapper) CourseDto(c models.Course) models.CourseDto {
	return models.CourseDto{ID: c.ID, Title: c.Title, Description: c.Description, AuthorID: c.AuthorID}
}

func (m *Mapper) CourseDtos(cs []models.Course) []models.CourseDto {
	out := make([]models.CourseDto, 0, len(cs))
	for _, c := range cs {
		out = append(out, m.CourseDto(c))
	}
	return out
}

func (m *Mapper) CourseFromCreation(in models.CourseForCreation, authorID uuid.UUID) (models.Course, error) {
	var c models.Course
	if err := copier.Copy(&c, &in); err != nil {
		return models.Course{}, fmt.Errorf("map course: %w", err)
	}
	c.AuthorID = authorID
	return c, nil
}

// CourseForUpdate is the patchable view of an existing course.
func (m *Mapper) CourseForUpdate(c models.Course) models.CourseForUpdate {
	return models.CourseForUpdate{Title: c.Title, Description: c.Description}
}

// ApplyCourseUpdate overwrites the updatable fields of c from in.
func (m *Mapper) ApplyCourseUpdate(c *models.Course, in models.CourseForUpdate) error {
	if err := copier.Copy(c, &in); err != nil {
		return fmt.Errorf("map course update: %w", err)
	}
	return nil
}
