package paging

import (
	"encoding/json"
	"net/http"
)

const HeaderName = "X-Pagination"

// PagedList is one page of T plus the counts needed to navigate the rest.
type PagedList[T any] struct {
	Items       []T
	TotalCount  int
	PageSize    int
	CurrentPage int
}

func NewPagedList[T any](items []T, totalCount, pageNumber, pageSize int) PagedList[T] {
	if items == nil {
		items = []T{}
	}
	return PagedList[T]{Items: items, TotalCount: totalCount, PageSize: pageSize, CurrentPage: pageNumber}
}

func (p PagedList[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

func (p PagedList[T]) HasPrevious() bool { return p.CurrentPage > 1 }

func (p PagedList[T]) HasNext() bool { return p.CurrentPage < p.TotalPages() }

func (p PagedList[T]) Metadata() Metadata {
	return Metadata{
		TotalCount:  p.TotalCount,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages(),
		CurrentPage: p.CurrentPage,
	}
}

type Metadata struct {
	TotalCount  int `json:"totalCount"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// WriteHeader sets the X-Pagination header to m as JSON.
func WriteHeader(h http.Header, m Metadata) {
	b, _ := json.Marshal(m)
	h.Set(HeaderName, string(b))
}
