package jobpost_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/core/apperror"
	"jobboard/internal/domain"
	"jobboard/internal/domain/jobfilter"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/domain/predicate"
	"jobboard/internal/fixtures"
	"jobboard/internal/infrastructure/storage/memory"
)

func newService(t *testing.T, txm *recordingTx) *jobpost.Service {
	t.Helper()
	store, _, err := memory.LoadFixture(bytes.NewReader(fixtures.Jobs))
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	compiler := jobfilter.NewCompiler(jobfilter.DefaultRegistry(), store, jobfilter.WithClock(mock))

	if txm == nil {
		return jobpost.NewService(store, compiler, nil)
	}
	return jobpost.NewService(store, compiler, txm)
}

type recordingTx struct {
	calls int
	err   error
}

func (r *recordingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.ReadOnly(ctx, fn)
}

func (r *recordingTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return fn(ctx)
}

func titles(posts []jobpost.JobPost) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestService_List(t *testing.T) {
	svc := newService(t, nil)

	result, err := svc.List(context.Background(), jobpost.Query{
		Filter: "(job_type=full-time AND languages HAS_ANY (PHP,JavaScript)) AND locations IS_ANY (New York,Remote) AND attribute:years_experience>=3",
		Sort:   "title",
		Order:  "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Frontend Engineer", "Senior PHP Developer"}, titles(result.Items))
	assert.Equal(t, int64(2), result.TotalCount)
	assert.Equal(t, domain.DefaultPerPage, result.PerPage)
}

func TestService_StructuredWins(t *testing.T) {
	svc := newService(t, nil)

	result, err := svc.List(context.Background(), jobpost.Query{
		Filter:     "status=draft",
		Structured: map[string]any{"status": "archived"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Freelancer"}, titles(result.Items))
}

func TestService_DefaultOrder(t *testing.T) {
	svc := newService(t, nil)

	result, err := svc.List(context.Background(), jobpost.Query{})
	require.NoError(t, err)
	require.Len(t, result.Items, 5)
	assert.Equal(t, "Go Freelancer", result.Items[0].Title, "newest first")
}

func TestService_Validation(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		query jobpost.Query
		field string
	}{
		{"per page too large", jobpost.Query{PerPage: 101}, "per_page"},
		{"negative page", jobpost.Query{Page: -1}, "page"},
		{"unknown sort", jobpost.Query{Sort: "salary"}, "sort"},
		{"unknown order", jobpost.Query{Order: "sideways"}, "order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.List(ctx, tt.query)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}

	_, err := svc.List(ctx, jobpost.Query{Structured: map[string]any{"or": []any{map[string]any{"status": "draft"}}}})
	assert.True(t, apperror.IsFilterValidation(err))
}

func TestService_Compile(t *testing.T) {
	svc := newService(t, nil)

	lf, err := svc.Compile(context.Background(), jobpost.Query{Filter: "  "})
	require.NoError(t, err)
	assert.Equal(t, predicate.Pass{}, lf.Where)
	assert.Equal(t, "created_at", lf.SortField)
	assert.Equal(t, domain.Desc, lf.Order)
	assert.Equal(t, domain.PageRequest{Page: 1, PerPage: domain.DefaultPerPage}, lf.Page)
}

func TestService_ReadOnlyTransaction(t *testing.T) {
	txm := &recordingTx{}
	svc := newService(t, txm)

	_, err := svc.List(context.Background(), jobpost.Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, txm.calls)

	txm.err = errors.New("connection refused")
	_, err = svc.List(context.Background(), jobpost.Query{})
	assert.ErrorContains(t, err, "connection refused")
}
