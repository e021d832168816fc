package jobpost

import (
	"jobboard/internal/metadata"
)

// Table is the primary table of job posts.
const Table = "job_posts"

// Definition describes the filterable columns and relations of a job post.
func Definition() metadata.EntityDef {
	statuses := make([]string, len(Statuses))
	for i, s := range Statuses {
		statuses[i] = string(s)
	}
	jobTypes := make([]string, len(JobTypes))
	for i, t := range JobTypes {
		jobTypes[i] = string(t)
	}
	return metadata.Inspect(JobPost{}, "job-posts", Table).
		WithOptions("status", statuses...).
		WithOptions("job_type", jobTypes...)
}
