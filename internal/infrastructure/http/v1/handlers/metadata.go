package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/core/apperror"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/infrastructure/http/v1/dto"
	"jobboard/internal/metadata"
)

// AttributeLister lists the declared dynamic attributes.
type AttributeLister interface {
	ListAttributes(ctx context.Context) ([]jobpost.Attribute, error)
}

// MetadataHandler describes the filterable entities.
type MetadataHandler struct {
	*BaseHandler
	registry   *metadata.Registry
	attributes AttributeLister
}

// NewMetadataHandler creates a metadata handler.
func NewMetadataHandler(base *BaseHandler, registry *metadata.Registry, attributes AttributeLister) *MetadataHandler {
	return &MetadataHandler{BaseHandler: base, registry: registry, attributes: attributes}
}

// ListEntities returns every registered entity definition.
// GET /api/v1/meta
func (h *MetadataHandler) ListEntities(c *gin.Context) {
	h.OK(c, h.registry.List())
}

// GetEntity returns one entity definition.
// GET /api/v1/meta/:name
func (h *MetadataHandler) GetEntity(c *gin.Context) {
	def, ok := h.registry.Get(c.Param("name"))
	if !ok {
		h.Error(c, apperror.NewNotFound("entity", c.Param("name")))
		return
	}
	c.JSON(http.StatusOK, def)
}

// JobPosts returns what a job post filter may reference: columns,
// relations, declared attributes and sort fields.
// GET /api/v1/meta/job-posts
func (h *MetadataHandler) JobPosts(c *gin.Context) {
	attrs, err := h.attributes.ListAttributes(c.Request.Context())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	def, ok := h.registry.Get(jobpost.Definition().Name)
	if !ok {
		def = jobpost.Definition()
	}
	h.OK(c, dto.JobPostMetaResponse{
		Entity:     def,
		Relations:  jobpost.Relations,
		Attributes: attrs,
		Sortable:   jobpost.SortFields,
	})
}
