package resources

import (
	"github.com/5w1tchy/course-library-api/internal/hateoas"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/shaping"
)

// LinkedAuthor shapes dto to fields and attaches its links; the self link
// repeats fields.
func LinkedAuthor(l *hateoas.Linker, dto models.AuthorDto, fields string) (*shaping.Resource, error) {
	res, err := AuthorShape.Shape(dto, fields)
	if err != nil {
		return nil, err
	}
	links, err := l.ForResource(AuthorLinks, fields, AuthorPairs(dto)...)
	if err != nil {
		return nil, err
	}
	return hateoas.Attach(res, links), nil
}

// LinkedAuthors shapes a page of authors. Item self links do not repeat
// fields; the collection self link does.
func LinkedAuthors(l *hateoas.Linker, dtos []models.AuthorDto, fields string) ([]*shaping.Resource, error) {
	shaped, err := AuthorShape.ShapeAll(dtos, fields)
	if err != nil {
		return nil, err
	}
	for i, dto := range dtos {
		links, err := l.ForResource(AuthorLinks, "", AuthorPairs(dto)...)
		if err != nil {
			return nil, err
		}
		hateoas.Attach(shaped[i], links)
	}
	return shaped, nil
}

func LinkedCourse(l *hateoas.Linker, dto models.CourseDto, fields string) (*shaping.Resource, error) {
	res, err := CourseShape.Shape(dto, fields)
	if err != nil {
		return nil, err
	}
	links, err := l.ForResource(CourseLinks, fields, CoursePairs(dto)...)
	if err != nil {
		return nil, err
	}
	return hateoas.Attach(res, links), nil
}

func LinkedCourses(l *hateoas.Linker, dtos []models.CourseDto, fields string) ([]*shaping.Resource, error) {
	shaped, err := CourseShape.ShapeAll(dtos, fields)
	if err != nil {
		return nil, err
	}
	for i, dto := range dtos {
		links, err := l.ForResource(CourseLinks, "", CoursePairs(dto)...)
		if err != nil {
			return nil, err
		}
		hateoas.Attach(shaped[i], links)
	}
	return shaped, nil
}
