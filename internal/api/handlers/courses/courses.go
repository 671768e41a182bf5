package courses

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/api/handlers"
	"github.com/5w1tchy/course-library-api/internal/api/httpx"
	"github.com/5w1tchy/course-library-api/internal/api/resources"
	"github.com/5w1tchy/course-library-api/internal/hateoas"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/paging"
	"github.com/5w1tchy/course-library-api/internal/validate"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	authorPath = "/authors/{authorId}/courses"
	coursePath = authorPath + "/{courseId}"
)

func Register(r *mux.Router, d handlers.Deps) {
	r.Handle(authorPath, list(d)).Methods(http.MethodGet, http.MethodHead).Name(resources.GetCoursesForAuthor)
	r.Handle(authorPath, create(d)).Methods(http.MethodPost).Name(resources.CreateCourseForAuthor)
	r.Handle(coursePath, get(d)).Methods(http.MethodGet, http.MethodHead).Name(resources.GetCourseForAuthor)
	r.Handle(coursePath, put(d)).Methods(http.MethodPut).Name(resources.UpdateCourseForAuthor)
	r.Handle(coursePath, patch(d)).Methods(http.MethodPatch).Name(resources.PartiallyUpdateCourseForAuthor)
	r.Handle(coursePath, remove(d)).Methods(http.MethodDelete).Name(resources.DeleteCourseForAuthor)
	r.Handle(coursePath+"/syllabus", syllabusDownload(d)).Methods(http.MethodGet).Name(resources.GetCourseSyllabus)
	r.Handle(coursePath+"/syllabus", syllabusUpload(d)).Methods(http.MethodPut).Name(resources.UploadCourseSyllabus)
}

func authorID(r *http.Request) (uuid.UUID, error) {
	return validate.ParseID(resources.VarAuthorID, mux.Vars(r)[resources.VarAuthorID])
}

func ids(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	aid, err := authorID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	cid, err := validate.ParseID(resources.VarCourseID, mux.Vars(r)[resources.VarCourseID])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return aid, cid, nil
}

func list(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aid, err := authorID(r)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		q := r.URL.Query()
		orderBy, fields := q.Get(paging.KeyOrderBy), q.Get(paging.KeyFields)
		if err := d.CheckQuery(models.CourseShape, models.CourseDtoShape, orderBy, fields); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		repo := d.Repo()
		if err := repo.RequireAuthor(r.Context(), aid); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		courses, err := repo.GetCourses(r.Context(), aid, orderBy)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		l := d.Links.ForRequest(r)
		items, err := resources.LinkedCourses(l, d.Mapper.CourseDtos(courses), fields)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		selfQuery := url.Values{}
		for _, k := range []string{paging.KeyOrderBy, paging.KeyFields} {
			if v := q.Get(k); v != "" {
				selfQuery.Set(k, v)
			}
		}
		self, err := l.Self(resources.GetCoursesForAuthor, selfQuery, resources.VarAuthorID, aid.String())
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, hateoas.Collection{Value: items, Links: []hateoas.Link{self}})
	}
}

func get(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aid, cid, err := ids(r)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		fields, err := d.CheckFields(r, models.CourseDtoShape)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		repo := d.Repo()
		if err := repo.RequireAuthor(r.Context(), aid); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		course, err := repo.GetCourse(r.Context(), aid, cid)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		res, err := resources.LinkedCourse(d.Links.ForRequest(r), d.Mapper.CourseDto(course), fields)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, res)
	}
}

func create(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aid, err := authorID(r)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo := d.Repo()
		if err := repo.RequireAuthor(r.Context(), aid); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		var in models.CourseForCreation
		if err := httpx.DecodeJSON(r, &in); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if err := validate.Struct(in, ""); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		course, err := d.Mapper.CourseFromCreation(in, aid)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo.AddCourse(aid, &course)
		if err := repo.Save(r.Context()); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		writeCreated(w, r, d, course)
	}
}

// put replaces a course, creating it under the given id when absent.
func put(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aid, cid, err := ids(r)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo := d.Repo()
		if err := repo.RequireAuthor(r.Context(), aid); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		var in models.CourseForUpdate
		if err := httpx.DecodeJSON(r, &in); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if err := validate.Struct(in, ""); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		upsert(w, r, d, aid, cid, in)
	}
}

// patch applies an RFC 6902 document to the course, validating the result.
// A missing course is created from a patched empty course.
func patch(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aid, cid, err := ids(r)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo := d.Repo()
		if err := repo.RequireAuthor(r.Context(), aid); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		body, err := httpx.ReadBody(r)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		ops, err := jsonpatch.DecodePatch(body)
		if err != nil {
			apperr.Handle(w, r, apperr.BadRequest("invalid JSON Patch document: "+err.Error()))
			return
		}

		var current models.CourseForUpdate
		existing, err := repo.GetCourse(r.Context(), aid, cid)
		switch {
		case err == nil:
			current = d.Mapper.CourseForUpdate(existing)
		case errors.Is(err, apperr.ErrNotFound):
		default:
			apperr.Handle(w, r, err)
			return
		}

		patched, err := applyPatch(ops, current)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if err := validate.Struct(patched, ""); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		upsert(w, r, d, aid, cid, patched)
	}
}

func applyPatch(ops jsonpatch.Patch, current models.CourseForUpdate) (models.CourseForUpdate, error) {
	doc, err := json.Marshal(current)
	if err != nil {
		return models.CourseForUpdate{}, err
	}
	out, err := ops.Apply(doc)
	if err != nil {
		return models.CourseForUpdate{}, apperr.Unprocessable(apperr.FieldError{
			Field: "patch", Code: "invalid", Message: err.Error(),
		})
	}
	var patched models.CourseForUpdate
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patched); err != nil {
		return models.CourseForUpdate{}, apperr.Unprocessable(apperr.FieldError{
			Field: "patch", Code: "invalid", Message: "patched course is not valid: " + err.Error(),
		})
	}
	return patched, nil
}

// upsert updates course cid (204) or creates it with that id (201).
func upsert(w http.ResponseWriter, r *http.Request, d handlers.Deps, aid, cid uuid.UUID, in models.CourseForUpdate) {
	repo := d.Repo()
	course, err := repo.GetCourse(r.Context(), aid, cid)
	if errors.Is(err, apperr.ErrNotFound) {
		course = models.Course{ID: cid}
		if err := d.Mapper.ApplyCourseUpdate(&course, in); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo.AddCourse(aid, &course)
		if err := repo.Save(r.Context()); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		writeCreated(w, r, d, course)
		return
	}
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}

	if err := d.Mapper.ApplyCourseUpdate(&course, in); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	repo.UpdateCourse(course)
	if err := repo.Save(r.Context()); err != nil {
		apperr.Handle(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func writeCreated(w http.ResponseWriter, r *http.Request, d handlers.Deps, course models.Course) {
	l := d.Links.ForRequest(r)
	dto := d.Mapper.CourseDto(course)
	res, err := resources.LinkedCourse(l, dto, "")
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	location, err := l.Href(resources.GetCourseForAuthor, nil, resources.CoursePairs(dto)...)
	if err != nil {
		apperr.Handle(w, r, err)
		return
	}
	httpx.Created(w, location, res)
}

func remove(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		aid, cid, err := ids(r)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo := d.Repo()
		if err := repo.RequireAuthor(r.Context(), aid); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		course, err := repo.GetCourse(r.Context(), aid, cid)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo.DeleteCourse(course)
		if err := repo.Save(r.Context()); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		d.DeleteSyllabi(r.Context(), course)
		httpx.NoContent(w)
	}
}
