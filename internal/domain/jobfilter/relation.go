package jobfilter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"jobboard/internal/core/apperror"
	"jobboard/internal/core/id"
	"jobboard/internal/core/types"
	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/predicate"
	"jobboard/pkg/logger"
)

// relationship builds a membership predicate.
//
// Names that resolve to nothing leave the query unfiltered. Only an unknown
// mode or match field is an error.
func (c *Compiler) relationship(ctx context.Context, rel Relation, n *filter.Relationship) (predicate.Predicate, error) {
	mode := strings.ToLower(strings.TrimSpace(n.Mode))
	if mode == "" {
		mode = filter.ModeHasAny
	}
	if !filter.IsMembershipMode(mode) {
		return nil, apperror.NewUnsupportedMode(rel.Name, n.Mode)
	}

	field := rel.DefaultField()
	if f := strings.ToLower(strings.TrimSpace(n.Field)); f != "" {
		if !slices.Contains(rel.Fields, f) {
			return nil, apperror.NewFilterValidation("relation_field", fmt.Sprintf("Invalid field: %s", f)).
				WithDetail("relation", rel.Name).
				WithDetail("allowed", rel.Fields)
		}
		field = f
	}

	if mode == filter.ModeExists {
		return predicate.RelationCount{Relation: rel.Name, Op: predicate.CountGe, N: 1}, nil
	}

	names := normalizeNames(n.Values)
	if len(names) == 0 {
		return predicate.Pass{}, nil
	}

	ids, err := c.schema.ResolveRelation(ctx, rel.Name, field, names)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rel.Name, err)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		logger.Debug(ctx, "relation names matched nothing, filter ignored", "relation", rel.Name, "names", names)
		return predicate.Pass{}, nil
	}

	matched := predicate.RelationCount{Relation: rel.Name, IDs: ids, Op: predicate.CountGe, N: 1}
	switch mode {
	case filter.ModeHasAny:
		return matched, nil
	case filter.ModeIsAny:
		return predicate.And{Terms: []predicate.Predicate{
			matched,
			predicate.RelationCount{Relation: rel.Name, Op: predicate.CountEq, N: 1},
		}}, nil
	case filter.ModeExact:
		return predicate.And{Terms: []predicate.Predicate{
			predicate.RelationCount{Relation: rel.Name, IDs: ids, Op: predicate.CountEq, N: len(ids)},
			predicate.RelationCount{Relation: rel.Name, IDs: ids, Outside: true, Op: predicate.CountEq, N: 0},
		}}, nil
	case filter.ModeNone:
		return predicate.RelationCount{Relation: rel.Name, IDs: ids, Op: predicate.CountEq, N: 0}, nil
	}
	return nil, apperror.NewUnsupportedMode(rel.Name, n.Mode)
}

// normalizeNames trims and case-folds names, dropping blanks and repeats.
func normalizeNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(ids []id.ID) []id.ID {
	out := make([]id.ID, 0, len(ids))
	for _, x := range ids {
		if !slices.Contains(out, x) {
			out = append(out, x)
		}
	}
	return out
}

// listValues flattens a scalar or list filter value into strings.
func listValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, types.Stringify(e))
		}
		return out
	}
	return []string{types.Stringify(v)}
}
