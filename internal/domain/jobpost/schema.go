package jobpost

import (
	"context"

	"jobboard/internal/core/id"
)

// Relation names of the many-to-many associations of a job post.
const (
	RelationLanguages  = "languages"
	RelationLocations  = "locations"
	RelationCategories = "categories"
)

// Relations lists every relation name.
var Relations = []string{RelationLanguages, RelationLocations, RelationCategories}

// Location columns a name may be matched against.
const (
	LocationCity    = "city"
	LocationState   = "state"
	LocationCountry = "country"
)

// SchemaLookup resolves names used in filters. Implementations are read-only.
type SchemaLookup interface {
	// LookupAttribute returns the attribute with the given name. ok is false when none exists.
	LookupAttribute(ctx context.Context, name string) (attr Attribute, ok bool, err error)

	// ResolveRelation maps trimmed, case-folded names to ids of the relation's
	// entities. field selects the matched column and is only used for locations.
	// Unmatched names are dropped.
	ResolveRelation(ctx context.Context, relation, field string, names []string) ([]id.ID, error)
}
