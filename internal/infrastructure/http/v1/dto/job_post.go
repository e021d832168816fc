package dto

import (
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/metadata"
)

// ListJobPostsQuery is the query string of GET /job-posts.
type ListJobPostsQuery struct {
	Filter  string `form:"filter"`
	Sort    string `form:"sort"`
	Order   string `form:"order"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// ToQuery converts the query string into a service query.
func (q ListJobPostsQuery) ToQuery() jobpost.Query {
	return jobpost.Query{
		Filter:  q.Filter,
		Sort:    q.Sort,
		Order:   q.Order,
		Page:    q.Page,
		PerPage: q.PerPage,
	}
}

// SearchJobPostsRequest is the body of POST /job-posts/search. Filter is the
// structured form; FilterText is used when Filter is absent.
type SearchJobPostsRequest struct {
	Filter     map[string]any `json:"filter"`
	FilterText string         `json:"filter_text"`
	Sort       string         `json:"sort"`
	Order      string         `json:"order"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
}

// ToQuery converts the body into a service query.
func (r SearchJobPostsRequest) ToQuery() jobpost.Query {
	return jobpost.Query{
		Filter:     r.FilterText,
		Structured: r.Filter,
		Sort:       r.Sort,
		Order:      r.Order,
		Page:       r.Page,
		PerPage:    r.PerPage,
	}
}

// ExplainRequest is the body of POST /filters/explain. Exactly one of the
// two forms is expected; Structured wins when both are sent.
type ExplainRequest struct {
	Filter     string         `json:"filter"`
	Structured map[string]any `json:"structured"`
}

// ExplainResponse shows each compilation stage of a filter.
type ExplainResponse struct {
	Tree      string `json:"tree"`
	Predicate string `json:"predicate"`
	SQL       string `json:"sql,omitempty"`
	Args      []any  `json:"args,omitempty"`
}

// JobPostMetaResponse describes what a job post filter can reference.
type JobPostMetaResponse struct {
	Entity     metadata.EntityDef  `json:"entity"`
	Relations  []string            `json:"relations"`
	Attributes []jobpost.Attribute `json:"attributes"`
	Sortable   []string            `json:"sortable"`
}
