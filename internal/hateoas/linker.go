package hateoas

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/paging"
)

// PageIntent selects which page a collection URI points at.
type PageIntent int

const (
	Current PageIntent = iota
	Previous
	Next
)

// Relation is a related-action link declared for a resource type.
type Relation struct {
	Rel    string
	Route  string
	Method string
}

// Template lists the links every instance of a resource type gets: self
// (GET SelfRoute) followed by Related in order.
type Template struct {
	SelfRoute string
	Related   []Relation
}

// Linker renders absolute hrefs. The zero base yields host-relative hrefs.
type Linker struct {
	routes Routes
	base   url.URL
}

func NewLinker(routes Routes) *Linker {
	return &Linker{routes: routes}
}

// ForRequest returns a Linker whose hrefs use the scheme and host r was
// addressed to.
func (l *Linker) ForRequest(r *http.Request) *Linker {
	cp := *l
	cp.base = BaseURL(r)
	return &cp
}

// BaseURL derives scheme://host from r, honouring X-Forwarded-Proto.
func BaseURL(r *http.Request) url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fp := r.Header.Get("X-Forwarded-Proto"); fp != "" {
		p := strings.ToLower(strings.TrimSpace(strings.Split(fp, ",")[0]))
		if p == "http" || p == "https" {
			scheme = p
		}
	}
	return url.URL{Scheme: scheme, Host: r.Host}
}

// Href reverses route with pairs and attaches q.
func (l *Linker) Href(route string, q url.Values, pairs ...string) (string, error) {
	u, err := l.routes.URL(route, pairs...)
	if err != nil {
		return "", err
	}
	out := l.base
	out.Path = u.Path
	// keep sub-delimiters such as "(a,b)" literal; url.URL only uses
	// RawPath when it is a valid encoding of Path
	out.RawPath = u.RawPath
	if out.RawPath == "" {
		out.RawPath = u.Path
	}
	if len(q) > 0 {
		out.RawQuery = q.Encode()
	}
	return out.String(), nil
}

// PageURI rebuilds the collection URI for the page intent selects, keeping
// every other parameter. Callers guard Previous and Next with the page's
// HasPrevious/HasNext.
func (l *Linker) PageURI(route string, params paging.Parameters, intent PageIntent, pairs ...string) (string, error) {
	switch intent {
	case Previous:
		params = params.WithPageNumber(params.PageNumber - 1)
	case Next:
		params = params.WithPageNumber(params.PageNumber + 1)
	}
	return l.Href(route, params.Values(), pairs...)
}

// Self is a GET link to route with q.
func (l *Linker) Self(route string, q url.Values, pairs ...string) (Link, error) {
	href, err := l.Href(route, q, pairs...)
	if err != nil {
		return Link{}, err
	}
	return Link{Href: href, Rel: "self", Method: http.MethodGet}, nil
}

// ForResource renders t for one resource. Only the self link carries
// fields; related links are independent of the projection.
func (l *Linker) ForResource(t Template, fields string, pairs ...string) ([]Link, error) {
	var q url.Values
	if strings.TrimSpace(fields) != "" {
		q = url.Values{paging.KeyFields: {fields}}
	}
	self, err := l.Self(t.SelfRoute, q, pairs...)
	if err != nil {
		return nil, err
	}
	links := make([]Link, 0, len(t.Related)+1)
	links = append(links, self)
	for _, rel := range t.Related {
		href, err := l.Href(rel.Route, nil, pairs...)
		if err != nil {
			return nil, err
		}
		links = append(links, Link{Href: href, Rel: rel.Rel, Method: rel.Method})
	}
	return links, nil
}

// ForCollection returns self, then previousPage and nextPage when the
// page has them.
func (l *Linker) ForCollection(route string, params paging.Parameters, hasNext, hasPrevious bool, pairs ...string) ([]Link, error) {
	self, err := l.PageURI(route, params, Current, pairs...)
	if err != nil {
		return nil, err
	}
	links := []Link{{Href: self, Rel: "self", Method: http.MethodGet}}
	if hasPrevious {
		prev, err := l.PageURI(route, params, Previous, pairs...)
		if err != nil {
			return nil, err
		}
		links = append(links, Link{Href: prev, Rel: "previousPage", Method: http.MethodGet})
	}
	if hasNext {
		next, err := l.PageURI(route, params, Next, pairs...)
		if err != nil {
			return nil, err
		}
		links = append(links, Link{Href: next, Rel: "nextPage", Method: http.MethodGet})
	}
	return links, nil
}
