// Package authorcollections reads and creates batches of authors.
package authorcollections

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/api/handlers"
	"github.com/5w1tchy/course-library-api/internal/api/httpx"
	"github.com/5w1tchy/course-library-api/internal/api/resources"
	"github.com/5w1tchy/course-library-api/internal/models"
	"github.com/5w1tchy/course-library-api/internal/shaping"
	"github.com/5w1tchy/course-library-api/internal/validate"
	"github.com/gorilla/mux"
)

func Register(r *mux.Router, d handlers.Deps) {
	r.Handle("/authorcollections/({ids})", get(d)).Methods(http.MethodGet).Name(resources.GetAuthorCollection)
	r.Handle("/authorcollections", create(d)).Methods(http.MethodPost).Name(resources.CreateAuthorCollection)
}

// get returns the authors in the order their ids were listed. Any unknown
// id makes the whole collection unknown.
func get(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := validate.ParseIDList(resources.VarIDs, mux.Vars(r)[resources.VarIDs])
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		authors, err := d.Repo().GetAuthorsByIDs(r.Context(), ids)
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if len(authors) != len(ids) {
			apperr.Handle(w, r, apperr.NotFound("%d of %d authors", len(ids)-len(authors), len(ids)))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, d.Mapper.AuthorDtos(authors))
	}
}

func create(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in []models.AuthorForCreation
		if err := httpx.DecodeJSON(r, &in); err != nil {
			apperr.Handle(w, r, err)
			return
		}
		if len(in) == 0 {
			apperr.Handle(w, r, apperr.BadRequest("at least one author is required"))
			return
		}
		var fields []apperr.FieldError
		for i, a := range in {
			err := validate.Struct(a, fmt.Sprintf("[%d].", i))
			if err == nil {
				continue
			}
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				apperr.Handle(w, r, err)
				return
			}
			fields = append(fields, ve.Fields...)
		}
		if len(fields) > 0 {
			apperr.Handle(w, r, apperr.Unprocessable(fields...))
			return
		}

		repo := d.Repo()
		authors := make([]models.Author, len(in))
		for i, a := range in {
			author, err := d.Mapper.AuthorFromCreation(a)
			if err != nil {
				apperr.Handle(w, r, err)
				return
			}
			authors[i] = author
			repo.AddAuthor(&authors[i])
		}
		if err := repo.Save(r.Context()); err != nil {
			apperr.Handle(w, r, err)
			return
		}

		l := d.Links.ForRequest(r)
		out := make([]*shaping.Resource, 0, len(authors))
		ids := make([]string, 0, len(authors))
		for _, a := range authors {
			dto := d.Mapper.AuthorDto(a)
			res, err := resources.LinkedAuthor(l, dto, "")
			if err != nil {
				apperr.Handle(w, r, err)
				return
			}
			out = append(out, res)
			ids = append(ids, dto.ID.String())
		}
		location, err := l.Href(resources.GetAuthorCollection, nil, resources.VarIDs, strings.Join(ids, ","))
		if err != nil {
			apperr.Handle(w, r, err)
			return
		}
		httpx.Created(w, location, out)
	}
}
