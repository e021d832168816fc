// Package jobfilter compiles job post filter trees into predicates.
package jobfilter

import (
	"context"
	"maps"
	"slices"

	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/predicate"
)

// FieldBuilder builds the predicate of a fixed-field condition.
type FieldBuilder interface {
	Build(ctx context.Context, cond *filter.Standard) (predicate.Predicate, error)
}

// FieldBuilderFunc adapts a function to FieldBuilder.
type FieldBuilderFunc func(ctx context.Context, cond *filter.Standard) (predicate.Predicate, error)

// Build implements FieldBuilder.
func (f FieldBuilderFunc) Build(ctx context.Context, cond *filter.Standard) (predicate.Predicate, error) {
	return f(ctx, cond)
}

// Relation declares a filterable many-to-many relation.
type Relation struct {
	Name string
	// Fields are the columns names may be matched against. The first is the default.
	Fields []string
}

// DefaultField returns the column names are matched against when none is given.
func (r Relation) DefaultField() string {
	if len(r.Fields) == 0 {
		return "name"
	}
	return r.Fields[0]
}

// Registry maps filter names to builders. It is immutable once built and safe
// for concurrent use.
type Registry struct {
	fields    map[string]FieldBuilder
	relations map[string]Relation
}

// RegistryOption adds entries to a registry under construction.
type RegistryOption func(*Registry)

// WithField registers a fixed-field builder under name.
func WithField(name string, b FieldBuilder) RegistryOption {
	return func(r *Registry) { r.fields[name] = b }
}

// WithRelation registers a relation filter.
func WithRelation(rel Relation) RegistryOption {
	return func(r *Registry) { r.relations[rel.Name] = rel }
}

// NewRegistry builds a registry. Later options override earlier ones.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		fields:    make(map[string]FieldBuilder),
		relations: make(map[string]Relation),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Field returns the builder registered under name.
func (r *Registry) Field(name string) (FieldBuilder, bool) {
	b, ok := r.fields[name]
	return b, ok
}

// Relation returns the relation registered under name.
func (r *Registry) Relation(name string) (Relation, bool) {
	rel, ok := r.relations[name]
	return rel, ok
}

// FieldNames lists the registered field filters in sorted order.
func (r *Registry) FieldNames() []string {
	return slices.Sorted(maps.Keys(r.fields))
}

// RelationNames lists the registered relations in sorted order.
func (r *Registry) RelationNames() []string {
	return slices.Sorted(maps.Keys(r.relations))
}
