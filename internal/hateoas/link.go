// Package hateoas builds navigational links for shaped resources and
// paged collections from named routes.
package hateoas

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/5w1tchy/course-library-api/internal/shaping"
	"github.com/gorilla/mux"
)

// Link is one hypermedia control.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// LinksKey is the field Attach adds to a shaped resource.
const LinksKey = "links"

// Collection is the envelope returned for collection reads.
type Collection struct {
	Value []*shaping.Resource `json:"value"`
	Links []Link              `json:"links"`
}

// Attach appends links to res as its last field.
func Attach(res *shaping.Resource, links []Link) *shaping.Resource {
	res.Set(LinksKey, links)
	return res
}

var ErrUnknownRoute = errors.New("unknown route")

// Routes reverses a route name plus variable pairs into a path.
type Routes interface {
	URL(name string, pairs ...string) (*url.URL, error)
}

// MuxRoutes reverses names registered on a gorilla/mux router, including
// routes declared on its subrouters.
type MuxRoutes struct {
	r *mux.Router
}

func NewMuxRoutes(r *mux.Router) MuxRoutes { return MuxRoutes{r: r} }

func (m MuxRoutes) URL(name string, pairs ...string) (*url.URL, error) {
	route := m.r.Get(name)
	if route == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	u, err := route.URL(pairs...)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", name, err)
	}
	return u, nil
}
