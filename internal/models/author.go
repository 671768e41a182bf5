package models

import (
	"time"

	"github.com/google/uuid"
)

type Author struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	DateOfBirth  time.Time
	MainCategory string
	Courses      []Course
}

// AuthorDto is the public representation of an author.
type AuthorDto struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	MainCategory string    `json:"mainCategory"`
}

type AuthorForCreation struct {
	FirstName    string              `json:"firstName" validate:"required,max=50"`
	LastName     string              `json:"lastName" validate:"required,max=50"`
	DateOfBirth  time.Time           `json:"dateOfBirth" validate:"required"`
	MainCategory string              `json:"mainCategory" validate:"required,max=50"`
	Courses      []CourseForCreation `json:"courses,omitempty" validate:"omitempty,dive"`
}
