// Package resources declares the public shapes, route names and link
// templates of the API.
package resources

import (
	"net/http"

	"github.com/5w1tchy/course-library-api/internal/hateoas"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/shaping"
)

// Route names, used both for registration and for link reversal.
const (
	GetRoot = "GetRoot"

	GetAuthors     = "GetAuthors"
	GetAuthor      = "GetAuthor"
	CreateAuthor   = "CreateAuthor"
	DeleteAuthor   = "DeleteAuthor"
	OptionsAuthors = "OptionsAuthors"

	GetCoursesForAuthor            = "GetCoursesForAuthor"
	GetCourseForAuthor             = "GetCourseForAuthor"
	CreateCourseForAuthor          = "CreateCourseForAuthor"
	UpdateCourseForAuthor          = "UpdateCourseForAuthor"
	PartiallyUpdateCourseForAuthor = "PartiallyUpdateCourseForAuthor"
	DeleteCourseForAuthor          = "DeleteCourseForAuthor"
	GetCourseSyllabus              = "GetCourseSyllabus"
	UploadCourseSyllabus           = "UploadCourseSyllabus"

	GetAuthorCollection    = "GetAuthorCollection"
	CreateAuthorCollection = "CreateAuthorCollection"
)

// Route variables.
const (
	VarAuthorID = "authorId"
	VarCourseID = "courseId"
	VarIDs      = "ids"
)

var AuthorShape = shaping.NewShape(models.AuthorDtoShape,
	shaping.Prop("id", func(a models.AuthorDto) any { return a.ID }),
	shaping.Prop("name", func(a models.AuthorDto) any { return a.Name }),
	shaping.Prop("age", func(a models.AuthorDto) any { return a.Age }),
	shaping.Prop("mainCategory", func(a models.AuthorDto) any { return a.MainCategory }),
)

var CourseShape = shaping.NewShape(models.CourseDtoShape,
	shaping.Prop("id", func(c models.CourseDto) any { return c.ID }),
	shaping.Prop("title", func(c models.CourseDto) any { return c.Title }),
	shaping.Prop("description", func(c models.CourseDto) any { return c.Description }),
	shaping.Prop("authorId", func(c models.CourseDto) any { return c.AuthorID }),
)

func NewChecker() *shaping.Checker {
	return shaping.NewChecker(AuthorShape, CourseShape)
}

var AuthorLinks = hateoas.Template{
	SelfRoute: GetAuthor,
	Related: []hateoas.Relation{
		{Rel: "delete_author", Route: DeleteAuthor, Method: http.MethodDelete},
		{Rel: "create_course_for_author", Route: CreateCourseForAuthor, Method: http.MethodPost},
		{Rel: "courses", Route: GetCoursesForAuthor, Method: http.MethodGet},
	},
}

var CourseLinks = hateoas.Template{
	SelfRoute: GetCourseForAuthor,
	Related: []hateoas.Relation{
		{Rel: "update_course", Route: UpdateCourseForAuthor, Method: http.MethodPut},
		{Rel: "partially_update_course", Route: PartiallyUpdateCourseForAuthor, Method: http.MethodPatch},
		{Rel: "delete_course", Route: DeleteCourseForAuthor, Method: http.MethodDelete},
		{Rel: "syllabus", Route: GetCourseSyllabus, Method: http.MethodGet},
	},
}

// RootLinks is what GET /api advertises.
var RootLinks = []hateoas.Relation{
	{Rel: "self", Route: GetRoot, Method: http.MethodGet},
	{Rel: "authors", Route: GetAuthors, Method: http.MethodGet},
	{Rel: "create_author", Route: CreateAuthor, Method: http.MethodPost},
	{Rel: "create_author_collection", Route: CreateAuthorCollection, Method: http.MethodPost},
}

// AuthorPairs returns the route variables addressing one author.
func AuthorPairs(a models.AuthorDto) []string {
	return []string{VarAuthorID, a.ID.String()}
}

// CoursePairs returns the route variables addressing one course.
func CoursePairs(c models.CourseDto) []string {
	return []string{VarAuthorID, c.AuthorID.String(), VarCourseID, c.ID.String()}
}
