package models

import "github.com/google/uuid"

type Course struct {
	ID          uuid.UUID
	Title       string
	Description string
	AuthorID    uuid.UUID
}

type CourseDto struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AuthorID    uuid.UUID `json:"authorId"`
}

// CourseForCreation is also used for courses nested in AuthorForCreation.
// A description may not repeat the title.
type CourseForCreation struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1500,nefield=Title"`
}

type CourseForUpdate struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=1500,nefield=Title"`
}
