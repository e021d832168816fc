package cache

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"jobboard/internal/core/id"
	"jobboard/pkg/logger"
)

// RelationSource resolves relation entity names to ids.
type RelationSource interface {
	ResolveRelation(ctx context.Context, relation, field string, names []string) ([]id.ID, error)
}

// RelationCache memoizes name resolutions in an LRU keyed by relation, field
// and the normalized name set. It is purged on relations_changed.
type RelationCache struct {
	source RelationSource
	cache  *lru.Cache

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRelationCache creates a cache holding at most size resolutions.
func NewRelationCache(source RelationSource, size int) (*RelationCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &RelationCache{source: source, cache: c}, nil
}

func resolutionKey(relation, field string, names []string) string {
	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = strings.ToLower(strings.TrimSpace(n))
	}
	slices.Sort(folded)
	folded = slices.Compact(folded)
	return relation + "\x00" + field + "\x00" + strings.Join(folded, "\x1f")
}

// ResolveRelation implements the relation half of jobpost.SchemaLookup.
func (c *RelationCache) ResolveRelation(ctx context.Context, relation, field string, names []string) ([]id.ID, error) {
	key := resolutionKey(relation, field, names)
	if v, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return slices.Clone(v.([]id.ID)), nil
	}
	c.misses.Add(1)

	ids, err := c.source.ResolveRelation(ctx, relation, field, names)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, slices.Clone(ids))
	return ids, nil
}

// Purge drops every cached resolution.
func (c *RelationCache) Purge(ctx context.Context, payload string) {
	c.cache.Purge()
	logger.Info(ctx, "relation cache purged", "table", payload)
}

// Subscribe registers the cache on l.
func (c *RelationCache) Subscribe(l *Listener) {
	l.On(RelationsChannel, c.Purge)
}

// RelationStats describes the cache state.
type RelationStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Stats returns the cache state.
func (c *RelationCache) Stats() RelationStats {
	return RelationStats{Entries: c.cache.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
