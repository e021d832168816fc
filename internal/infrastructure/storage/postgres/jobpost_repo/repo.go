// Package jobpost_repo provides the PostgreSQL implementation of the job
// post repository and of the schema lookup used by the filter compiler.
package jobpost_repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"jobboard/internal/core/id"
	"jobboard/internal/domain"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/infrastructure/storage/postgres"
	"jobboard/internal/infrastructure/storage/postgres/sqlfilter"
)

var _ jobpost.Repository = (*Repo)(nil)

// Repo lists job posts with their relations and attribute values.
type Repo struct {
	txm        *postgres.TxManager
	translator *sqlfilter.Translator
	selectCols []string
}

// NewRepo creates a job post repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	cols := postgres.Columns[jobpost.JobPost]()
	for i, c := range cols {
		cols[i] = jobpost.Table + "." + c
	}
	return &Repo{
		txm:        txm,
		translator: sqlfilter.New(sqlfilter.JobPostSchema()),
		selectCols: cols,
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// List implements jobpost.Repository.
func (r *Repo) List(ctx context.Context, f jobpost.ListFilter) (domain.ListResult[jobpost.JobPost], error) {
	page := f.Page.Normalize()

	where, err := r.translator.Where(f.Where)
	if err != nil {
		return domain.ListResult[jobpost.JobPost]{}, fmt.Errorf("translate filter: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)

	countSQL, countArgs, err := Builder().Select("COUNT(*)").From(jobpost.Table).Where(where).ToSql()
	if err != nil {
		return domain.ListResult[jobpost.JobPost]{}, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return domain.ListResult[jobpost.JobPost]{}, fmt.Errorf("count: %w", err)
	}

	orderBy, err := orderClause(f.SortField, f.Order)
	if err != nil {
		return domain.ListResult[jobpost.JobPost]{}, err
	}

	sql, args, err := Builder().
		Select(r.selectCols...).
		From(jobpost.Table).
		Where(where).
		OrderBy(orderBy, jobpost.Table+".id ASC").
		Limit(uint64(page.PerPage)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return domain.ListResult[jobpost.JobPost]{}, fmt.Errorf("build query: %w", err)
	}

	var items []jobpost.JobPost
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return domain.ListResult[jobpost.JobPost]{}, fmt.Errorf("list: %w", err)
	}
	if err := r.loadRelations(ctx, querier, items); err != nil {
		return domain.ListResult[jobpost.JobPost]{}, err
	}
	return domain.NewListResult(items, total, page), nil
}

// orderClause renders a whitelisted sort. Nulls come first ascending, like
// the in-memory store.
func orderClause(field string, order domain.SortOrder) (string, error) {
	if field == "" {
		field = "created_at"
	}
	if !slices.Contains(jobpost.SortFields, field) {
		return "", fmt.Errorf("invalid sort field: %s", field)
	}
	if order == domain.Asc {
		return jobpost.Table + "." + field + " ASC NULLS FIRST", nil
	}
	return jobpost.Table + "." + field + " DESC NULLS LAST", nil
}

type languageRow struct {
	JobPostID id.ID `db:"job_post_id"`
	jobpost.Language
}

type locationRow struct {
	JobPostID id.ID `db:"job_post_id"`
	jobpost.Location
}

type categoryRow struct {
	JobPostID id.ID `db:"job_post_id"`
	jobpost.Category
}

// loadRelations fills relations and attribute values of a page in one query each.
func (r *Repo) loadRelations(ctx context.Context, querier postgres.Querier, items []jobpost.JobPost) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[id.ID]*jobpost.JobPost, len(items))
	ids := make([]id.ID, len(items))
	for i := range items {
		ids[i] = items[i].ID
		byID[items[i].ID] = &items[i]
	}

	var languages []languageRow
	if err := selectRows(ctx, querier, &languages, Builder().
		Select("p.job_post_id", "l.id", "l.name").
		From("job_post_language p").
		Join("languages l ON l.id = p.language_id").
		Where(squirrel.Eq{"p.job_post_id": ids}).
		OrderBy("l.name")); err != nil {
		return fmt.Errorf("load languages: %w", err)
	}
	for _, row := range languages {
		p := byID[row.JobPostID]
		p.Languages = append(p.Languages, row.Language)
	}

	var locations []locationRow
	if err := selectRows(ctx, querier, &locations, Builder().
		Select("p.job_post_id", "l.id", "l.city", "l.state", "l.country").
		From("job_post_location p").
		Join("locations l ON l.id = p.location_id").
		Where(squirrel.Eq{"p.job_post_id": ids}).
		OrderBy("l.city")); err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	for _, row := range locations {
		p := byID[row.JobPostID]
		p.Locations = append(p.Locations, row.Location)
	}

	var categories []categoryRow
	if err := selectRows(ctx, querier, &categories, Builder().
		Select("p.job_post_id", "c.id", "c.name").
		From("category_job_post p").
		Join("categories c ON c.id = p.category_id").
		Where(squirrel.Eq{"p.job_post_id": ids}).
		OrderBy("c.name")); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	for _, row := range categories {
		p := byID[row.JobPostID]
		p.Categories = append(p.Categories, row.Category)
	}

	var values []jobpost.AttributeValue
	if err := selectRows(ctx, querier, &values, Builder().
		Select("v.job_post_id", "v.attribute_id", "a.name", "v.value").
		From("job_attribute_values v").
		Join("attributes a ON a.id = v.attribute_id").
		Where(squirrel.Eq{"v.job_post_id": ids}).
		OrderBy("a.name", "v.value")); err != nil {
		return fmt.Errorf("load attribute values: %w", err)
	}
	for _, v := range values {
		p := byID[v.JobPostID]
		p.Attributes = append(p.Attributes, v)
	}
	return nil
}

func selectRows(ctx context.Context, querier postgres.Querier, dst any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, querier, dst, sql, args...)
}
