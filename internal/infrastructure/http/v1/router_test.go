package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/core/apperror"
	"jobboard/internal/domain/jobfilter"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/fixtures"
	"jobboard/internal/infrastructure/http/v1/dto"
	"jobboard/internal/infrastructure/http/v1/handlers"
	"jobboard/internal/infrastructure/storage/memory"
	"jobboard/internal/infrastructure/storage/postgres/sqlfilter"
	"jobboard/internal/metadata"
	"jobboard/pkg/logger"
)

type listBody struct {
	Data []struct {
		Title string `json:"title"`
	} `json:"data"`
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	LastPage    int   `json:"last_page"`
}

func (b listBody) titles() []string {
	out := make([]string, len(b.Data))
	for i, d := range b.Data {
		out[i] = d.Title
	}
	return out
}

type failingPinger struct{}

func (failingPinger) Ping(_ context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T, mutate func(*RouterConfig)) *gin.Engine {
	t.Helper()
	store, _, err := memory.LoadFixture(bytes.NewReader(fixtures.Jobs))
	require.NoError(t, err)

	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	compiler := jobfilter.NewCompiler(jobfilter.DefaultRegistry(), store, jobfilter.WithClock(mock))

	reg := metadata.NewRegistry()
	reg.Register(jobpost.Definition())

	cfg := RouterConfig{
		Logger:           logger.Nop(),
		JobPosts:         jobpost.NewService(store, compiler, nil),
		Compiler:         compiler,
		SQL:              sqlfilter.New(sqlfilter.JobPostSchema()),
		MetadataRegistry: reg,
		Attributes:       store,
		Health: handlers.NewHealthHandler("jobboard", "test", nil, map[string]handlers.StatsFunc{
			"posts": func() any { return len(store.Posts()) },
		}),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := NewRouter(cfg)
	require.NoError(t, err)
	return r
}

func do(r http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListJobPosts_TextFilter(t *testing.T) {
	r := newTestRouter(t, nil)
	q := url.Values{
		"filter": {"(job_type=full-time AND languages HAS_ANY (PHP,JavaScript)) AND locations IS_ANY (New York,Remote) AND attribute:years_experience>=3"},
		"sort":   {"title"},
		"order":  {"asc"},
	}
	w := do(r, http.MethodGet, "/api/v1/job-posts?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[listBody](t, w)
	assert.Equal(t, []string{"Frontend Engineer", "Senior PHP Developer"}, body.titles())
	assert.Equal(t, int64(2), body.Total)
	assert.Equal(t, 1, body.CurrentPage)
	assert.Equal(t, 15, body.PerPage)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListJobPosts_Pagination(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(r, http.MethodGet, "/api/v1/job-posts?per_page=2&page=3&sort=title", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[listBody](t, w)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, int64(5), body.Total)
	assert.Equal(t, 3, body.LastPage)
}

func TestListJobPosts_ValidationErrors(t *testing.T) {
	r := newTestRouter(t, nil)
	tests := []struct {
		query string
		code  string
		field string
	}{
		{"sort=salary", apperror.CodeValidation, "sort"},
		{"order=sideways", apperror.CodeValidation, "order"},
		{"per_page=500", apperror.CodeValidation, "per_page"},
		{"page=abc", apperror.CodeValidation, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/v1/job-posts?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, tt.code, body.Code)
			if tt.field != "" {
				assert.Equal(t, tt.field, body.Details["field"])
			}
		})
	}
}

func TestSearchJobPosts_Structured(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(r, http.MethodPost, "/api/v1/job-posts/search", map[string]any{
		"filter": map[string]any{
			"or": []any{
				map[string]any{"status": "draft"},
				map[string]any{"status": "archived"},
			},
		},
		"sort":  "title",
		"order": "asc",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[listBody](t, w)
	assert.NotEmpty(t, body.Data)
	assert.IsNonDecreasing(t, body.titles())
}

func TestSearchJobPosts_FilterErrors(t *testing.T) {
	r := newTestRouter(t, nil)
	tests := []struct {
		name   string
		filter map[string]any
		code   string
	}{
		{
			name:   "single entry group",
			filter: map[string]any{"and": []any{map[string]any{"status": "draft"}}},
			code:   apperror.CodeInvalidFilter,
		},
		{
			name:   "unsupported relationship mode",
			filter: map[string]any{"languages": map[string]any{"mode": "some_of", "values": []any{"PHP"}}},
			code:   apperror.CodeUnsupportedMode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/job-posts/search", map[string]any{"filter": tt.filter})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, w).Code)
		})
	}

	w := do(r, http.MethodPost, "/api/v1/job-posts/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExplain(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(r, http.MethodPost, "/api/v1/filters/explain", map[string]any{
		"filter": "status=published AND attribute:years_experience>=3",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[dto.ExplainResponse](t, w)
	assert.NotEmpty(t, body.Tree)
	assert.NotEmpty(t, body.Predicate)
	assert.True(t, strings.HasPrefix(body.SQL, "SELECT job_posts.id FROM job_posts WHERE "), body.SQL)
	assert.Contains(t, body.SQL, "jobboard_try_numeric(v.value) >= $")
	assert.NotEmpty(t, body.Args)
}

func TestExplain_WithoutSQL(t *testing.T) {
	r := newTestRouter(t, func(cfg *RouterConfig) { cfg.SQL = nil })
	w := do(r, http.MethodPost, "/api/v1/filters/explain", map[string]any{
		"structured": map[string]any{"is_remote": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[dto.ExplainResponse](t, w)
	assert.Empty(t, body.SQL)
	assert.NotEmpty(t, body.Predicate)

	w = do(r, http.MethodPost, "/api/v1/filters/explain", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeta(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/v1/meta/job-posts", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	meta := decode[dto.JobPostMetaResponse](t, w)
	assert.Equal(t, jobpost.Relations, meta.Relations)
	assert.Equal(t, jobpost.SortFields, meta.Sortable)
	names := make([]string, len(meta.Attributes))
	for i, a := range meta.Attributes {
		names[i] = a.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{"benefits", "job_type", "requires_degree", "skills", "start_date", "years_experience"}, names)

	w = do(r, http.MethodGet, "/api/v1/meta", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/meta/invoices", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, decode[dto.ErrorResponse](t, w).Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "in-memory")

	w = do(r, http.MethodGet, "/health/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"posts":5`)

	down := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Health = handlers.NewHealthHandler("jobboard", "test", failingPinger{}, nil)
	})
	w = do(down, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCompression(t *testing.T) {
	r := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Compression = true
		cfg.CompressThreshold = 64
	})

	w := do(r, http.MethodGet, "/api/v1/job-posts", nil, "Accept-Encoding", "gzip, zstd")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "zstd", w.Header().Get("Content-Encoding"))

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := dec.DecodeAll(w.Body.Bytes(), nil)
	require.NoError(t, err)

	var body listBody
	require.NoError(t, json.Unmarshal(plain, &body))
	assert.Equal(t, int64(5), body.Total)

	w = do(r, http.MethodGet, "/api/v1/job-posts", nil)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.True(t, json.Valid(w.Body.Bytes()))

	// errors go through the same writer
	w = do(r, http.MethodGet, "/api/v1/job-posts?sort=bogus", nil, "Accept-Encoding", "zstd;q=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

func TestRecovery(t *testing.T) {
	r := newTestRouter(t, nil)
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decode[dto.ErrorResponse](t, w).Code)
}
