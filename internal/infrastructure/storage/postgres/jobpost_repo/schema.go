package jobpost_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"jobboard/internal/core/id"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/infrastructure/storage/postgres"
)

var _ jobpost.SchemaLookup = (*SchemaRepo)(nil)

// relationTable maps a relation to its entity table and matchable columns.
// The first column is the default.
var relationTable = map[string]struct {
	table   string
	columns []string
}{
	jobpost.RelationLanguages:  {"languages", []string{"name"}},
	jobpost.RelationCategories: {"categories", []string{"name"}},
	jobpost.RelationLocations:  {"locations", []string{jobpost.LocationCity, jobpost.LocationState, jobpost.LocationCountry}},
}

// SchemaRepo reads the attribute schema and relation entities.
type SchemaRepo struct {
	txm *postgres.TxManager
}

// NewSchemaRepo creates a schema repository.
func NewSchemaRepo(txm *postgres.TxManager) *SchemaRepo {
	return &SchemaRepo{txm: txm}
}

var attributeCols = []string{"id", "name", "type", "options"}

// ListAttributes returns every declared attribute ordered by name.
func (r *SchemaRepo) ListAttributes(ctx context.Context) ([]jobpost.Attribute, error) {
	sql, args, err := Builder().Select(attributeCols...).From("attributes").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var attrs []jobpost.Attribute
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &attrs, sql, args...); err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	return attrs, nil
}

// LookupAttribute implements jobpost.SchemaLookup. Names match case-insensitively.
func (r *SchemaRepo) LookupAttribute(ctx context.Context, name string) (jobpost.Attribute, bool, error) {
	sql, args, err := Builder().
		Select(attributeCols...).
		From("attributes").
		Where(squirrel.Expr("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))).
		Limit(1).
		ToSql()
	if err != nil {
		return jobpost.Attribute{}, false, fmt.Errorf("build query: %w", err)
	}

	var attr jobpost.Attribute
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &attr, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return jobpost.Attribute{}, false, nil
		}
		return jobpost.Attribute{}, false, fmt.Errorf("lookup attribute: %w", err)
	}
	return attr, true, nil
}

// ResolveRelation implements jobpost.SchemaLookup.
func (r *SchemaRepo) ResolveRelation(ctx context.Context, relation, field string, names []string) ([]id.ID, error) {
	q, err := resolveQuery(relation, field, names)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", relation, err)
	}
	return ids, nil
}

func resolveQuery(relation, field string, names []string) (squirrel.SelectBuilder, error) {
	rel, ok := relationTable[relation]
	if !ok {
		return squirrel.SelectBuilder{}, fmt.Errorf("unknown relation %q", relation)
	}
	column := rel.columns[0]
	for _, c := range rel.columns {
		if c == field {
			column = c
		}
	}

	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = strings.ToLower(strings.TrimSpace(n))
	}
	return Builder().
		Select("id").
		From(rel.table).
		Where(squirrel.Expr("LOWER("+column+") = ANY(?)", folded)).
		OrderBy("id"), nil
}
