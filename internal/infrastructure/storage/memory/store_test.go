package memory

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/core/id"
	"jobboard/internal/core/types"
	"jobboard/internal/domain"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/domain/predicate"
	"jobboard/internal/fixtures"
)

func loadJobs(t *testing.T) (*Store, map[string]jobpost.JobPost) {
	t.Helper()
	s, posts, err := LoadFixture(bytes.NewReader(fixtures.Jobs))
	require.NoError(t, err)
	return s, posts
}

func TestLoadFixture(t *testing.T) {
	s, posts := loadJobs(t)

	assert.Len(t, posts, 5)
	assert.Len(t, s.Posts(), 5)
	assert.Len(t, s.Attributes(), 6)

	e4 := posts["E4"]
	assert.Len(t, e4.Languages, 2)
	assert.Len(t, e4.Locations, 2)
	assert.Equal(t, jobpost.JobTypeContract, e4.JobType)
	for _, v := range e4.Attributes {
		assert.False(t, id.IsNil(v.AttributeID), v.Name)
		assert.Equal(t, e4.ID, v.JobPostID)
	}
	assert.Equal(t, jobpost.StatusDraft, posts["E3"].Status)
	assert.Nil(t, posts["E3"].PublishedAt)
}

func TestLoadFixture_Rejects(t *testing.T) {
	_, _, err := LoadFixture(strings.NewReader(`{"attributes":[{"name":"x","type":"json"}]}`))
	assert.ErrorContains(t, err, "unknown type")

	_, _, err = LoadFixture(strings.NewReader(`{"job_posts":[{"title":"a","locations":["Atlantis"]}]}`))
	assert.ErrorContains(t, err, "unknown location")

	_, _, err = LoadFixture(strings.NewReader(`{"colour":"blue"}`))
	assert.ErrorContains(t, err, "decode fixture")
}

func TestStore_LookupAttribute(t *testing.T) {
	s, _ := loadJobs(t)
	ctx := context.Background()

	attr, ok, err := s.LookupAttribute(ctx, " Years_Experience ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, jobpost.AttributeNumber, attr.Type)

	_, ok, err = s.LookupAttribute(ctx, "salary_band")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ResolveRelation(t *testing.T) {
	s, _ := loadJobs(t)
	ctx := context.Background()

	ids, err := s.ResolveRelation(ctx, jobpost.RelationLanguages, "name", []string{"php", "cobol"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	ids, err = s.ResolveRelation(ctx, jobpost.RelationLocations, jobpost.LocationCountry, []string{"germany", "usa"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	ids, err = s.ResolveRelation(ctx, jobpost.RelationLocations, "", []string{"berlin"})
	require.NoError(t, err)
	assert.Len(t, ids, 1, "city is the default column")

	ids, err = s.ResolveRelation(ctx, "widgets", "", []string{"x"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_List(t *testing.T) {
	s, _ := loadJobs(t)
	ctx := context.Background()

	result, err := s.List(ctx, jobpost.ListFilter{
		Where:     predicate.Pass{},
		SortField: "salary_min",
		Order:     domain.Desc,
		Page:      domain.PageRequest{Page: 1, PerPage: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.TotalCount)
	assert.Equal(t, 3, result.LastPage)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Platform Engineer", result.Items[0].Title)
	assert.Equal(t, "Senior PHP Developer", result.Items[1].Title)

	result, err = s.List(ctx, jobpost.ListFilter{
		Where:     predicate.Compare{Field: "salary_max", Op: predicate.Le, Value: types.MustMoney("60000")},
		SortField: "published_at",
		Order:     domain.Asc,
		Page:      domain.PageRequest{Page: 1},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, int64(2), result.TotalCount)

	result, err = s.List(ctx, jobpost.ListFilter{Where: predicate.Never{}, Page: domain.PageRequest{Page: 3}})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, int64(0), result.TotalCount)
}

func TestRecord_Field(t *testing.T) {
	_, posts := loadJobs(t)
	r := Record{Post: ptr(posts["E2"])}

	v, ok := r.Field("is_remote")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = r.Field("job_type")
	assert.True(t, ok)
	assert.Equal(t, "full-time", v)

	_, ok = r.Field("salary")
	assert.False(t, ok)

	e3 := Record{Post: ptr(posts["E3"])}
	v, ok = e3.Field("published_at")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func ptr[T any](v T) *T { return &v }
