package courses

import (
	"net/http"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/api/handlers"
	"github.com/5w1tchy/course-library-api/internal/api/httpx"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/storage/s3"
)

const defaultSyllabusType = "application/pdf"

var syllabusTypes = map[string]bool{
	"application/pdf": true,
	"text/markdown":   true,
	"text/plain":      true,
}

func storageUnavailable(w http.ResponseWriter, r *http.Request) {
	apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "Service Unavailable", "syllabus storage is not configured")
}

func syllabusDownload(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Syllabi == nil {
			storageUnavailable(w, r)
			return
		}
		course, ok := loadCourse(w, r, d)
		if !ok {
			return
		}
		p, err := d.Syllabi.PresignDownload(r.Context(), s3.SyllabusKey(course.AuthorID, course.ID))
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

// syllabusUpload hands out a presigned PUT; the client uploads directly.
func syllabusUpload(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Syllabi == nil {
			storageUnavailable(w, r)
			return
		}
		contentType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("contentType")))
		if contentType == "" {
			contentType = defaultSyllabusType
		}
		if !syllabusTypes[contentType] {
			apperr.Handle(w, r, apperr.Query("contentType", "oneof", "contentType must be application/pdf, text/markdown or text/plain"))
			return
		}
		course, ok := loadCourse(w, r, d)
		if !ok {
			return
		}
		p, err := d.Syllabi.PresignUpload(r.Context(), s3.SyllabusKey(course.AuthorID, course.ID), contentType)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

func loadCourse(w http.ResponseWriter, r *http.Request, d handlers.Deps) (models.Course, bool) {
	aid, cid, err := ids(r)
	if err != nil {
		apperr.Handle(w, r, err)
		return models.Course{}, false
	}
	repo := d.Repo()
	if err := repo.RequireAuthor(r.Context(), aid); err != nil {
		apperr.Handle(w, r, err)
		return models.Course{}, false
	}
	course, err := repo.GetCourse(r.Context(), aid, cid)
	if err != nil {
		apperr.Handle(w, r, err)
		return models.Course{}, false
	}
	return course, true
}
