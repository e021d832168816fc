package jobpost

import (
	"context"

	"jobboard/internal/domain"
	"jobboard/internal/domain/predicate"
)

// Sortable columns of the list endpoint.
var SortFields = []string{"title", "company_name", "salary_min", "salary_max", "published_at", "created_at"}

// ListFilter is a compiled list request.
type ListFilter struct {
	Where     predicate.Predicate
	SortField string
	Order     domain.SortOrder
	Page      domain.PageRequest
}

// Repository reads job posts.
type Repository interface {
	// List returns the page of job posts matching the filter with their
	// relations and attribute values loaded.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[JobPost], error)
}
