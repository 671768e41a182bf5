package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
	"github.com/5w1tchy/course-library-api/internal/api/httpx"
	"github.com/5w1tchy/course-library-api/internal/api/resources"
	"github.com/5w1tchy/course-library-api/internal/hateoas"
)

// Root advertises the API's entry points.
func Root(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := d.Links.ForRequest(r)
		links := make([]hateoas.Link, 0, len(resources.RootLinks))
		for _, rel := range resources.RootLinks {
			href, err := l.Href(rel.Route, nil)
			if err != nil {
				apperr.Handle(w, r, err)
				return
			}
			links = append(links, hateoas.Link{Href: href, Rel: rel.Rel, Method: rel.Method})
		}
		httpx.WriteJSON(w, http.StatusOK, links)
	}
}

// Health reports database reachability.
func Health(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
