// Package domain provides types shared by the domain packages.
package domain

import "strings"

// Pagination bounds for list operations.
const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// SortOrder is the direction of a list ordering.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder accepts asc or desc in any case. ok is false otherwise.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}

// PageRequest selects a page of a list.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize clamps the request into valid bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items       []T   `json:"data"`
	TotalCount  int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	LastPage    int   `json:"last_page"`
}

// NewListResult fills the page bookkeeping for items.
func NewListResult[T any](items []T, total int64, page PageRequest) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if page.PerPage > 0 && total > 0 {
		last = int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	}
	return ListResult[T]{
		Items:       items,
		TotalCount:  total,
		CurrentPage: page.Page,
		PerPage:     page.PerPage,
		LastPage:    last,
	}
}
