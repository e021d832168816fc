package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"jobboard/internal/domain"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/infrastructure/http/v1/dto"
)

// JobPostLister is the part of jobpost.Service the handler needs.
type JobPostLister interface {
	List(ctx context.Context, q jobpost.Query) (domain.ListResult[jobpost.JobPost], error)
}

// JobPostHandler serves job post listing and search.
type JobPostHandler struct {
	*BaseHandler
	service JobPostLister
}

// NewJobPostHandler creates a job post handler.
func NewJobPostHandler(base *BaseHandler, service JobPostLister) *JobPostHandler {
	return &JobPostHandler{BaseHandler: base, service: service}
}

// List filters job posts with the textual filter language.
// GET /api/v1/job-posts?filter=...&sort=...&order=...&page=...&per_page=...
func (h *JobPostHandler) List(c *gin.Context) {
	var q dto.ListJobPostsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	h.respond(c, q.ToQuery())
}

// Search filters job posts with the structured filter form.
// POST /api/v1/job-posts/search
func (h *JobPostHandler) Search(c *gin.Context) {
	var req dto.SearchJobPostsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.respond(c, req.ToQuery())
}

func (h *JobPostHandler) respond(c *gin.Context, q jobpost.Query) {
	result, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
