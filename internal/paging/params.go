// Package paging holds collection query parameters and paged results.
package paging

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/api/apperr"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 20

	// MaxPageNumber keeps (PageNumber-1)*MaxPageSize inside an int64 OFFSET.
	MaxPageNumber = math.MaxInt32
)

// Query-string keys.
const (
	KeyMainCategory = "mainCategory"
	KeySearchQuery  = "searchQuery"
	KeyPageNumber   = "pageNumber"
	KeyPageSize     = "pageSize"
	KeyOrderBy      = "orderBy"
	KeyFields       = "fields"
)

// Parameters is the per-request state of a collection query.
type Parameters struct {
	MainCategory string
	SearchQuery  string
	PageNumber   int
	OrderBy      string
	Fields       string

	pageSize int
}

func NewParameters() Parameters {
	return Parameters{PageNumber: DefaultPageNumber, pageSize: DefaultPageSize}
}

// SetPageSize clamps n to MaxPageSize.
func (p *Parameters) SetPageSize(n int) {
	if n > MaxPageSize {
		n = MaxPageSize
	}
	p.pageSize = n
}

func (p Parameters) PageSize() int {
	if p.pageSize == 0 {
		return DefaultPageSize
	}
	return p.pageSize
}

// WithPageNumber returns a copy pointing at page n.
func (p Parameters) WithPageNumber(n int) Parameters {
	p.PageNumber = n
	return p
}

// Values renders the parameters as a query. Paging keys are always present;
// the others only when set.
func (p Parameters) Values() url.Values {
	q := url.Values{}
	if p.Fields != "" {
		q.Set(KeyFields, p.Fields)
	}
	if p.OrderBy != "" {
		q.Set(KeyOrderBy, p.OrderBy)
	}
	q.Set(KeyPageNumber, strconv.Itoa(p.PageNumber))
	q.Set(KeyPageSize, strconv.Itoa(p.PageSize()))
	if p.MainCategory != "" {
		q.Set(KeyMainCategory, p.MainCategory)
	}
	if p.SearchQuery != "" {
		q.Set(KeySearchQuery, p.SearchQuery)
	}
	return q
}

// Parse reads collection parameters from q. Non-numeric or non-positive
// paging values, and page numbers past MaxPageNumber, are rejected with a
// 400 validation error.
func Parse(q url.Values) (Parameters, error) {
	p := NewParameters()
	p.MainCategory = strings.TrimSpace(q.Get(KeyMainCategory))
	p.SearchQuery = strings.TrimSpace(q.Get(KeySearchQuery))
	p.OrderBy = strings.TrimSpace(q.Get(KeyOrderBy))
	p.Fields = strings.TrimSpace(q.Get(KeyFields))

	if raw := strings.TrimSpace(q.Get(KeyPageNumber)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Parameters{}, apperr.Query(KeyPageNumber, "invalid", "pageNumber must be a positive integer")
		}
		if n > MaxPageNumber {
			return Parameters{}, apperr.Query(KeyPageNumber, "max", "pageNumber is out of range")
		}
		p.PageNumber = n
	}
	if raw := strings.TrimSpace(q.Get(KeyPageSize)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Parameters{}, apperr.Query(KeyPageSize, "invalid", "pageSize must be a positive integer")
		}
		p.SetPageSize(n)
	}
	return p, nil
}
