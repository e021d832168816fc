package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/core/apperror"
	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/predicate"
	"jobboard/internal/infrastructure/http/v1/dto"
)

// FilterCompiler compiles a parsed condition tree.
type FilterCompiler interface {
	Compile(ctx context.Context, node filter.Node) (predicate.Predicate, error)
	NormalizeOptions() []filter.NormalizeOption
}

// SQLRenderer renders a predicate as the SQL the repository would run.
type SQLRenderer interface {
	SelectIDs(p predicate.Predicate) (string, []any, error)
}

// FilterHandler exposes filter compilation for debugging clients.
type FilterHandler struct {
	*BaseHandler
	compiler FilterCompiler
	sql      SQLRenderer // Optional
}

// NewFilterHandler creates a filter handler. sql may be nil.
func NewFilterHandler(base *BaseHandler, compiler FilterCompiler, sql SQLRenderer) *FilterHandler {
	return &FilterHandler{BaseHandler: base, compiler: compiler, sql: sql}
}

// Explain shows the condition tree, the predicate and the SQL of a filter.
// POST /api/v1/filters/explain
func (h *FilterHandler) Explain(c *gin.Context) {
	var req dto.ExplainRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	var (
		node filter.Node
		err  error
	)
	switch {
	case req.Structured != nil:
		node, err = filter.Normalize(req.Structured, h.compiler.NormalizeOptions()...)
	case strings.TrimSpace(req.Filter) != "":
		node, err = filter.Parse(req.Filter)
	default:
		err = apperror.NewValidation("filter or structured is required").WithDetail("field", "filter")
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.compiler.Compile(ctx, node)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.ExplainResponse{
		Tree:      filter.Describe(node),
		Predicate: predicate.Format(p),
	}
	if h.sql != nil {
		resp.SQL, resp.Args, err = h.sql.SelectIDs(p)
		if err != nil {
			h.Error(c, apperror.NewInternal(err))
			return
		}
	}
	h.OK(c, resp)
}
