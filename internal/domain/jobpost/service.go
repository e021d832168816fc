package jobpost

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"jobboard/internal/core/apperror"
	"jobboard/internal/core/tx"
	"jobboard/internal/domain"
	"jobboard/internal/domain/predicate"
	"jobboard/pkg/logger"
)

// FilterCompiler turns either filter form into a predicate tree.
type FilterCompiler interface {
	CompileString(ctx context.Context, text string) (predicate.Predicate, error)
	CompileStructured(ctx context.Context, input map[string]any) (predicate.Predicate, error)
}

// Query is a list request as received from a client.
type Query struct {
	// Filter is the textual form. Ignored when Structured is set.
	Filter     string
	Structured map[string]any
	Sort       string
	Order      string
	Page       int
	PerPage    int
}

// Service lists job posts through the filter compiler.
type Service struct {
	repo      Repository
	compiler  FilterCompiler
	txManager tx.ReadOnlyManager // Optional - reads run without a transaction when nil
}

// NewService creates a job post service.
func NewService(repo Repository, compiler FilterCompiler, txManager tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, compiler: compiler, txManager: txManager}
}

// Compile validates the query and compiles its filter.
func (s *Service) Compile(ctx context.Context, q Query) (ListFilter, error) {
	lf := ListFilter{
		SortField: "created_at",
		Order:     domain.Desc,
		Page:      domain.PageRequest{Page: q.Page, PerPage: q.PerPage},
	}

	if q.PerPage < 0 || q.PerPage > domain.MaxPerPage {
		return lf, apperror.NewValidation(fmt.Sprintf("per_page must be between 1 and %d", domain.MaxPerPage)).
			WithDetail("field", "per_page")
	}
	if q.Page < 0 {
		return lf, apperror.NewValidation("page must be at least 1").WithDetail("field", "page")
	}
	lf.Page = lf.Page.Normalize()

	if q.Sort != "" {
		if !slices.Contains(SortFields, q.Sort) {
			return lf, apperror.NewValidation("The selected sort is invalid.").
				WithDetail("field", "sort").
				WithDetail("allowed", SortFields)
		}
		lf.SortField = q.Sort
	}
	if q.Order != "" {
		order, ok := domain.ParseSortOrder(q.Order)
		if !ok {
			return lf, apperror.NewValidation("The selected order is invalid.").WithDetail("field", "order")
		}
		lf.Order = order
	}

	var err error
	switch {
	case q.Structured != nil:
		lf.Where, err = s.compiler.CompileStructured(ctx, q.Structured)
	case strings.TrimSpace(q.Filter) != "":
		lf.Where, err = s.compiler.CompileString(ctx, q.Filter)
	default:
		lf.Where = predicate.Pass{}
	}
	if err != nil {
		logger.Debug(ctx, "filter rejected", "error", err)
		return lf, err
	}
	return lf, nil
}

// List returns a page of job posts matching the query.
func (s *Service) List(ctx context.Context, q Query) (domain.ListResult[JobPost], error) {
	lf, err := s.Compile(ctx, q)
	if err != nil {
		return domain.ListResult[JobPost]{}, err
	}

	logger.Debug(ctx, "listing job posts",
		"where", predicate.Format(lf.Where),
		"sort", lf.SortField,
		"order", lf.Order,
		"page", lf.Page.Page,
	)

	var result domain.ListResult[JobPost]
	read := func(ctx context.Context) error {
		var err error
		result, err = s.repo.List(ctx, lf)
		if err != nil {
			return fmt.Errorf("list job posts: %w", err)
		}
		return nil
	}

	if s.txManager != nil {
		err = s.txManager.ReadOnly(ctx, read)
	} else {
		err = read(ctx)
	}
	if err != nil {
		return domain.ListResult[JobPost]{}, err
	}
	return result, nil
}
