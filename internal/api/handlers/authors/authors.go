package authors

import (
	"net/http"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/api/handlers"
	"github.com/5w1tchy/course-library-api/internal/api/httpx"
	"github.com/5w1tchy/course-library-api/internal/api/resources"
	"github.com/5w1tchy/course-library-api/internal/hateoas"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/paging"
	"github.com/5w1tchy/course-library-api/internal/validate"
	"github.com/gorilla/mux"
)

const allowAuthors = "GET,OPTIONS,POST"

func Register(r *mux.Router, d handlers.Deps) {
	r.Handle("/authors", list(d)).Methods(http.MethodGet, http.MethodHead).Name(resources.GetAuthors)
	r.Handle("/authors", create(d)).Methods(http.MethodPost).Name(resources.CreateAuthor)
	r.Handle("/authors", options()).Methods(http.MethodOptions).Name(resources.OptionsAuthors)
	r.Handle("/authors/{authorId}", get(d)).Methods(http.MethodGet, http.MethodHead).Name(resources.GetAuthor)
	r.Handle("/authors/{authorId}", remove(d)).Methods(http.MethodDelete).Name(resources.DeleteAuthor)
}

func list(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paging.Parse(r.URL.Query())
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if err := d.CheckQuery(models.AuthorShape, models.AuthorDtoShape, params.OrderBy, params.Fields); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		page, err := d.Repo().GetAuthors(r.Context(), params)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		l := d.Links.ForRequest(r)
		items, err := resources.LinkedAuthors(l, d.Mapper.AuthorDtos(page.Items), params.Fields)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		links, err := l.ForCollection(resources.GetAuthors, params, page.HasNext(), page.HasPrevious())
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		paging.WriteHeader(w.Header(), page.Metadata())
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, hateoas.Collection{Value: items, Links: links})
	}
}

func get(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validate.ParseID(resources.VarAuthorID, mux.Vars(r)[resources.VarAuthorID])
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		fields, err := d.CheckFields(r, models.AuthorDtoShape)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		author, err := d.Repo().GetAuthor(r.Context(), id)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		res, err := resources.LinkedAuthor(d.Links.ForRequest(r), d.Mapper.AuthorDto(author), fields)
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
		var in models.AuthorForCreation
		if err := httpx.DecodeJSON(r, &in); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if err := validate.Struct(in, ""); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		author, err := d.Mapper.AuthorFromCreation(in)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		repo := d.Repo()
		repo.AddAuthor(&author)
		if err := repo.Save(r.Context()); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		l := d.Links.ForRequest(r)
		dto := d.Mapper.AuthorDto(author)
		res, err := resources.LinkedAuthor(l, dto, "")
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		location, err := l.Href(resources.GetAuthor, nil, resources.AuthorPairs(dto)...)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		httpx.Created(w, location, res)
	}
}

func remove(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validate.ParseID(resources.VarAuthorID, mux.Vars(r)[resources.VarAuthorID])
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}

		repo := d.Repo()
		author, err := repo.GetAuthor(r.Context(), id)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		// the cascade removes the rows, not the stored syllabi
		var courses []models.Course
		if d.Syllabi != nil {
			if courses, err = repo.GetCourses(r.Context(), author.ID, ""); err != nil {
				apperr.Handle(w, r, err)
				return
			}
		}
		repo.DeleteAuthor(author)
		if err := repo.Save(r.Context()); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		d.DeleteSyllabi(r.Context(), courses...)
		httpx.NoContent(w)
	}
}

func options() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowAuthors)
		w.WriteHeader(http.StatusOK)
	}
}
