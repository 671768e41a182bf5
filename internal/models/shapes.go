package models

import "github.com/5w1tchy/course-library-api/internal/shaping"

// Shape identifiers used for property mappings and field selection.
const (
	AuthorShape    shaping.ShapeID = "Author"
	AuthorDtoShape shaping.ShapeID = "AuthorDto"
	CourseShape    shaping.ShapeID = "Course"
	CourseDtoShape shaping.ShapeID = "CourseDto"
)
