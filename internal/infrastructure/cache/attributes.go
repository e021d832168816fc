package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"jobboard/internal/domain/jobpost"
	"jobboard/pkg/logger"
)

// AttributeSource lists the declared attributes.
type AttributeSource interface {
	ListAttributes(ctx context.Context) ([]jobpost.Attribute, error)
}

// AttributeCache holds every attribute keyed by lower-cased name. It loads
// lazily on first lookup and reloads on attributes_changed.
type AttributeCache struct {
	source AttributeSource
	clock  clock.Clock

	mu       sync.RWMutex
	byName   map[string]jobpost.Attribute
	loaded   bool
	loadedAt time.Time
	reloads  int
}

// NewAttributeCache creates an attribute cache over source.
func NewAttributeCache(source AttributeSource, clk clock.Clock) *AttributeCache {
	if clk == nil {
		clk = clock.New()
	}
	return &AttributeCache{source: source, clock: clk}
}

// Load replaces the cached attributes with the current ones.
func (c *AttributeCache) Load(ctx context.Context) error {
	attrs, err := c.source.ListAttributes(ctx)
	if err != nil {
		return fmt.Errorf("load attributes: %w", err)
	}
	byName := make(map[string]jobpost.Attribute, len(attrs))
	for _, a := range attrs {
		byName[strings.ToLower(a.Name)] = a
	}

	c.mu.Lock()
	if c.loaded {
		c.reloads++
	}
	c.byName = byName
	c.loaded = true
	c.loadedAt = c.clock.Now()
	c.mu.Unlock()

	logger.Debug(ctx, "attributes loaded", "count", len(byName))
	return nil
}

// LookupAttribute implements the attribute half of jobpost.SchemaLookup.
func (c *AttributeCache) LookupAttribute(ctx context.Context, name string) (jobpost.Attribute, bool, error) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if !loaded {
		if err := c.Load(ctx); err != nil {
			return jobpost.Attribute{}, false, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return a, ok, nil
}

// Attributes returns the cached attributes sorted by name.
func (c *AttributeCache) Attributes() []jobpost.Attribute {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]jobpost.Attribute, 0, len(c.byName))
	for _, a := range c.byName {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invalidate reloads the cache. The payload names the changed attribute and
// is only logged. On failure the cache is marked stale so the next lookup retries.
func (c *AttributeCache) Invalidate(ctx context.Context, payload string) {
	if err := c.Load(ctx); err != nil {
		logger.Error(ctx, "failed to reload attributes", "attribute", payload, "error", err)
		c.mu.Lock()
		c.loaded = false
		c.mu.Unlock()
		return
	}
	logger.Info(ctx, "attributes reloaded", "attribute", payload)
}

// Subscribe registers the cache on l.
func (c *AttributeCache) Subscribe(l *Listener) {
	l.On(AttributesChannel, c.Invalidate)
}

// AttributeStats describes the cache state.
type AttributeStats struct {
	Count    int       `json:"count"`
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loaded_at"`
	Reloads  int       `json:"reloads"`
}

// Stats returns the cache state.
func (c *AttributeCache) Stats() AttributeStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return AttributeStats{Count: len(c.byName), Loaded: c.loaded, LoadedAt: c.loadedAt, Reloads: c.reloads}
}

// ListAttributes returns the cached attributes, loading them first if needed.
func (c *AttributeCache) ListAttributes(ctx context.Context) ([]jobpost.Attribute, error) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if !loaded {
		if err := c.Load(ctx); err != nil {
			return nil, err
		}
	}
	return c.Attributes(), nil
}
