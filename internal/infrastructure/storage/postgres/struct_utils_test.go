package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobboard/internal/core/id"
	"jobboard/internal/core/types"
	"jobboard/internal/domain/jobpost"
)

func TestColumns_JobPost(t *testing.T) {
	cols := Columns[jobpost.JobPost]()

	assert.Equal(t, []string{
		"id", "title", "description", "company_name", "salary_min", "salary_max",
		"is_remote", "job_type", "status", "published_at", "created_at", "updated_at",
	}, cols)
	assert.NotContains(t, cols, "languages")
	assert.NotContains(t, cols, "attributes")
}

type Stamped struct {
	CreatedAt time.Time `db:"created_at"`
}

type withEmbedded struct {
	Stamped
	Name  string `db:"name"`
	Notes string
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	post := jobpost.JobPost{
		ID:        id.New(),
		Title:     "Go Freelancer",
		SalaryMin: types.MustMoney("50000"),
		JobType:   jobpost.JobTypeFreelance,
		Languages: []jobpost.Language{{Name: "Go"}},
	}

	m := StructToMap(&post)
	assert.Equal(t, post.ID, m["id"])
	assert.Equal(t, "Go Freelancer", m["title"])
	assert.Equal(t, jobpost.JobTypeFreelance, m["job_type"])
	assert.True(t, types.MustMoney("50000").Equal(m["salary_min"].(types.Money)))
	assert.NotContains(t, m, "languages")

	e := StructToMap(withEmbedded{Stamped: Stamped{CreatedAt: now}, Name: "x", Notes: "ignored"})
	assert.Equal(t, map[string]any{"created_at": now, "name": "x"}, e)

	assert.Nil(t, StructToMap(42))
}
