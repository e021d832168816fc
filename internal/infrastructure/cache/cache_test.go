package cache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/core/id"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/fixtures"
	"jobboard/internal/infrastructure/storage/memory"
)

type countingSource struct {
	store     *memory.Store
	listCalls int
	resolves  int
	failList  bool
}

func (c *countingSource) ListAttributes(ctx context.Context) ([]jobpost.Attribute, error) {
	c.listCalls++
	if c.failList {
		return nil, errors.New("connection refused")
	}
	return c.store.ListAttributes(ctx)
}

func (c *countingSource) ResolveRelation(ctx context.Context, relation, field string, names []string) ([]id.ID, error) {
	c.resolves++
	return c.store.ResolveRelation(ctx, relation, field, names)
}

func newSource(t *testing.T) *countingSource {
	t.Helper()
	s, _, err := memory.LoadFixture(bytes.NewReader(fixtures.Jobs))
	require.NoError(t, err)
	return &countingSource{store: s}
}

func TestAttributeCache_LazyLoad(t *testing.T) {
	src := newSource(t)
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	c := NewAttributeCache(src, mock)
	ctx := context.Background()

	assert.False(t, c.Stats().Loaded)

	a, ok, err := c.LookupAttribute(ctx, " Skills ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, jobpost.AttributeSelect, a.Type)

	_, ok, err = c.LookupAttribute(ctx, "salary_band")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, src.listCalls)
	stats := c.Stats()
	assert.True(t, stats.Loaded)
	assert.Equal(t, 6, stats.Count)
	assert.Equal(t, mock.Now(), stats.LoadedAt)
	assert.Equal(t, 0, stats.Reloads)
}

func TestAttributeCache_Invalidate(t *testing.T) {
	src := newSource(t)
	c := NewAttributeCache(src, clock.NewMock())
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	src.store.AddAttribute(jobpost.Attribute{Name: "visa_sponsorship", Type: jobpost.AttributeBoolean})
	_, ok, _ := c.LookupAttribute(ctx, "visa_sponsorship")
	assert.False(t, ok, "served from cache until invalidated")

	c.Invalidate(ctx, "visa_sponsorship")
	_, ok, _ = c.LookupAttribute(ctx, "visa_sponsorship")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Stats().Reloads)

	names := make([]string, 0)
	for _, a := range c.Attributes() {
		names = append(names, a.Name)
	}
	assert.IsIncreasing(t, names)
}

func TestAttributeCache_FailedReloadRetries(t *testing.T) {
	src := newSource(t)
	c := NewAttributeCache(src, clock.NewMock())
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	src.failList = true
	c.Invalidate(ctx, "skills")
	assert.False(t, c.Stats().Loaded)

	_, _, err := c.LookupAttribute(ctx, "skills")
	assert.ErrorContains(t, err, "load attributes")

	src.failList = false
	_, ok, err := c.LookupAttribute(ctx, "skills")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelationCache(t *testing.T) {
	src := newSource(t)
	c, err := NewRelationCache(src, 8)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := c.ResolveRelation(ctx, jobpost.RelationLanguages, "", []string{"PHP", "go"})
	require.NoError(t, err)
	assert.Len(t, first, 2)

	again, err := c.ResolveRelation(ctx, jobpost.RelationLanguages, "", []string{" Go", "php", "PHP"})
	require.NoError(t, err)
	assert.ElementsMatch(t, first, again)
	assert.Equal(t, 1, src.resolves)

	_, err = c.ResolveRelation(ctx, jobpost.RelationLocations, jobpost.LocationCountry, []string{"go"})
	require.NoError(t, err)
	assert.Equal(t, 2, src.resolves, "key includes relation and field")

	stats := c.Stats()
	assert.Equal(t, RelationStats{Entries: 2, Hits: 1, Misses: 2}, stats)

	c.Purge(ctx, "languages")
	assert.Equal(t, 0, c.Stats().Entries)
	_, err = c.ResolveRelation(ctx, jobpost.RelationLanguages, "", []string{"php", "go"})
	require.NoError(t, err)
	assert.Equal(t, 3, src.resolves)
}

func TestRelationCache_ReturnsCopies(t *testing.T) {
	src := newSource(t)
	c, err := NewRelationCache(src, 8)
	require.NoError(t, err)
	ctx := context.Background()

	ids, err := c.ResolveRelation(ctx, jobpost.RelationCategories, "", []string{"engineering"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	want := ids[0]
	ids[0] = id.ID{}

	cached, err := c.ResolveRelation(ctx, jobpost.RelationCategories, "", []string{"engineering"})
	require.NoError(t, err)
	assert.Equal(t, want, cached[0])
}

func TestNewRelationCache_InvalidSize(t *testing.T) {
	_, err := NewRelationCache(nil, 0)
	assert.Error(t, err)
}

func TestListener_Dispatch(t *testing.T) {
	src := newSource(t)
	attrs := NewAttributeCache(src, clock.NewMock())
	rels, err := NewRelationCache(src, 4)
	require.NoError(t, err)

	l := NewListener(nil)
	attrs.Subscribe(l)
	rels.Subscribe(l)

	var got []string
	l.On(RelationsChannel, func(_ context.Context, payload string) { panic("boom") })
	l.On(RelationsChannel, func(_ context.Context, payload string) { got = append(got, payload) })

	assert.Equal(t, []string{AttributesChannel, RelationsChannel}, l.channels())

	ctx := context.Background()
	l.dispatch(ctx, AttributesChannel, "skills")
	assert.True(t, attrs.Stats().Loaded)

	l.dispatch(ctx, RelationsChannel, "languages")
	assert.Equal(t, []string{"languages"}, got)

	l.dispatch(ctx, "unknown", "x")
	l.Stop()
}

func TestLookup_SatisfiesSchemaLookup(t *testing.T) {
	src := newSource(t)
	rels, err := NewRelationCache(src, 4)
	require.NoError(t, err)
	var lookup jobpost.SchemaLookup = NewLookup(NewAttributeCache(src, nil), rels)

	_, ok, err := lookup.LookupAttribute(context.Background(), "benefits")
	require.NoError(t, err)
	assert.True(t, ok)

	stats := NewLookup(NewAttributeCache(src, nil), rels).Stats()
	assert.Contains(t, stats, "attributes")
	assert.Contains(t, stats, "relations")
}
