package hateoas_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/5w1tchy/course-library-api/internal/hateoas"
	"github.com/5w1tchy/course-library-api/internal/paging"
	"github.com/5w1tchy/course-library-api/internal/shaping"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorID = "d28888e9-2ba9-473a-a40f-e38cb54f9b35"

func noop(http.ResponseWriter, *http.Request) {}

func newLinker(t *testing.T) *hateoas.Linker {
	t.Helper()
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/authors", noop).Methods(http.MethodGet).Name("GetAuthors")
	api.HandleFunc("/authors/{authorId}", noop).Methods(http.MethodGet).Name("GetAuthor")
	api.HandleFunc("/authors/{authorId}", noop).Methods(http.MethodDelete).Name("DeleteAuthor")
	api.HandleFunc("/authors/{authorId}/courses", noop).Methods(http.MethodPost).Name("CreateCourseForAuthor")
	api.HandleFunc("/authors/{authorId}/courses", noop).Methods(http.MethodGet).Name("GetCoursesForAuthor")

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/api/authors", nil)
	return hateoas.NewLinker(hateoas.NewMuxRoutes(r)).ForRequest(req)
}

var authorTemplate = hateoas.Template{
	SelfRoute: "GetAuthor",
	Related: []hateoas.Relation{
		{Rel: "delete_author", Route: "DeleteAuthor", Method: http.MethodDelete},
		{Rel: "create_course_for_author", Route: "CreateCourseForAuthor", Method: http.MethodPost},
		{Rel: "courses", Route: "GetCoursesForAuthor", Method: http.MethodGet},
	},
}

func params(page int) paging.Parameters {
	p := paging.NewParameters()
	p.PageNumber = page
	p.SetPageSize(2)
	p.MainCategory = "Rum"
	p.SearchQuery = "sea"
	p.OrderBy = "name desc"
	p.Fields = "id,name"
	return p
}

func query(t *testing.T, href string) url.Values {
	t.Helper()
	u, err := url.Parse(href)
	require.NoError(t, err)
	return u.Query()
}

func TestPageURI_PreviousNextRoundTrip(t *testing.T) {
	l := newLinker(t)
	p := params(5)

	prev, err := l.PageURI("GetAuthors", p, hateoas.Previous)
	require.NoError(t, err)
	pq := query(t, prev)
	assert.Equal(t, "4", pq.Get("pageNumber"))

	back, err := paging.Parse(pq)
	require.NoError(t, err)
	next, err := l.PageURI("GetAuthors", back, hateoas.Next)
	require.NoError(t, err)

	cur, err := l.PageURI("GetAuthors", p, hateoas.Current)
	require.NoError(t, err)
	assert.Equal(t, cur, next)

	for _, k := range []string{"mainCategory", "searchQuery", "orderBy", "fields", "pageSize"} {
		assert.Equal(t, p.Values().Get(k), pq.Get(k), k)
	}
}

func TestPageURI_IsAbsolute(t *testing.T) {
	l := newLinker(t)
	href, err := l.PageURI("GetAuthors", paging.NewParameters(), hateoas.Current)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com/api/authors?pageNumber=1&pageSize=10", href)
}

func TestForCollection_Relations(t *testing.T) {
	l := newLinker(t)
	cases := []struct {
		name             string
		page             paging.PagedList[int]
		wantRels         []string
		wantPrev, wantNx string
	}{
		{"first of three", paging.NewPagedList[int](nil, 6, 1, 2), []string{"self", "nextPage"}, "", "2"},
		{"middle", paging.NewPagedList[int](nil, 6, 2, 2), []string{"self", "previousPage", "nextPage"}, "1", "3"},
		{"last of three", paging.NewPagedList[int](nil, 6, 3, 2), []string{"self", "previousPage"}, "2", ""},
		{"single", paging.NewPagedList[int](nil, 1, 1, 2), []string{"self"}, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			links, err := l.ForCollection("GetAuthors", params(tc.page.CurrentPage), tc.page.HasNext(), tc.page.HasPrevious())
			require.NoError(t, err)

			rels := make([]string, len(links))
			for i, lk := range links {
				rels[i] = lk.Rel
				assert.Equal(t, http.MethodGet, lk.Method)
				switch lk.Rel {
				case "previousPage":
					assert.Equal(t, tc.wantPrev, query(t, lk.Href).Get("pageNumber"))
				case "nextPage":
					assert.Equal(t, tc.wantNx, query(t, lk.Href).Get("pageNumber"))
				}
			}
			assert.Equal(t, tc.wantRels, rels)
		})
	}
}

func TestForResource_AuthorLinks(t *testing.T) {
	l := newLinker(t)

	plain, err := l.ForResource(authorTemplate, "", "authorId", authorID)
	require.NoError(t, err)
	shaped, err := l.ForResource(authorTemplate, "id,name", "authorId", authorID)
	require.NoError(t, err)

	require.Len(t, plain, 4)
	require.Len(t, shaped, 4)
	assert.Equal(t, []string{"self", "delete_author", "create_course_for_author", "courses"},
		[]string{plain[0].Rel, plain[1].Rel, plain[2].Rel, plain[3].Rel})
	assert.Equal(t, []string{"GET", "DELETE", "POST", "GET"},
		[]string{plain[0].Method, plain[1].Method, plain[2].Method, plain[3].Method})

	assert.Equal(t, "http://api.example.com/api/authors/"+authorID, plain[0].Href)
	assert.Equal(t, "id,name", query(t, shaped[0].Href).Get("fields"))
	assert.Equal(t, plain[1:], shaped[1:], "only self depends on fields")
}

func TestForResource_UnknownRoute(t *testing.T) {
	l := newLinker(t)
	_, err := l.ForResource(hateoas.Template{SelfRoute: "Nope"}, "")
	assert.ErrorIs(t, err, hateoas.ErrUnknownRoute)
}

func TestBaseURL_ForwardedProto(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https, http")
	u := hateoas.BaseURL(req)
	assert.Equal(t, "https://api.example.com", u.String())
}

func TestCollection_JSON(t *testing.T) {
	res := shaping.NewResource(2)
	res.Set("id", 1)
	hateoas.Attach(res, []hateoas.Link{{Href: "/x", Rel: "self", Method: "GET"}})

	b, err := json.Marshal(hateoas.Collection{
		Value: []*shaping.Resource{res},
		Links: []hateoas.Link{{Href: "/c", Rel: "self", Method: "GET"}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"value":[{"id":1,"links":[{"href":"/x","rel":"self","method":"GET"}]}],"links":[{"href":"/c","rel":"self","method":"GET"}]}`,
		string(b))
}

func TestHref_KeepsParenthesesLiteral(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/authorcollections/({ids})", noop).Name("GetAuthorCollection")
	l := hateoas.NewLinker(hateoas.NewMuxRoutes(r)).
		ForRequest(httptest.NewRequest(http.MethodGet, "http://api.example.com/", nil))

	href, err := l.Href("GetAuthorCollection", nil, "ids", "a,b")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com/api/authorcollections/(a,b)", href)
}
