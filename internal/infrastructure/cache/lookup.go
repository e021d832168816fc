package cache

import (
	"jobboard/internal/domain/jobpost"
)

var _ jobpost.SchemaLookup = (*Lookup)(nil)

// Lookup serves the filter compiler from both caches.
type Lookup struct {
	*AttributeCache
	*RelationCache
}

// NewLookup combines an attribute cache and a relation cache.
func NewLookup(attrs *AttributeCache, rels *RelationCache) *Lookup {
	return &Lookup{AttributeCache: attrs, RelationCache: rels}
}

// Stats reports both caches.
func (l *Lookup) Stats() map[string]any {
	return map[string]any{
		"attributes": l.AttributeCache.Stats(),
		"relations":  l.RelationCache.Stats(),
	}
}
