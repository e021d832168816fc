// Package jobpost holds the job post aggregate, its dynamic attribute schema
// and the list service.
package jobpost

import (
	"time"

	"github.com/shopspring/decimal"

	"jobboard/internal/core/id"
)

// Status is the publication state of a job post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusDraft, StatusPublished, StatusArchived}

// JobType is the employment type of a job post.
type JobType string

const (
	JobTypeFullTime  JobType = "full-time"
	JobTypePartTime  JobType = "part-time"
	JobTypeContract  JobType = "contract"
	JobTypeFreelance JobType = "freelance"
)

// JobTypes lists every valid job type.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeFreelance}

// JobPost is the primary filtered entity.
type JobPost struct {
	ID          id.ID           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	CompanyName string          `db:"company_name" json:"company_name"`
	SalaryMin   decimal.Decimal `db:"salary_min" json:"salary_min"`
	SalaryMax   decimal.Decimal `db:"salary_max" json:"salary_max"`
	IsRemote    bool            `db:"is_remote" json:"is_remote"`
	JobType     JobType         `db:"job_type" json:"job_type"`
	Status      Status          `db:"status" json:"status"`
	PublishedAt *time.Time      `db:"published_at" json:"published_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	Languages  []Language       `db:"-" json:"languages"`
	Locations  []Location       `db:"-" json:"locations"`
	Categories []Category       `db:"-" json:"categories"`
	Attributes []AttributeValue `db:"-" json:"attributes" meta:"-"`
}

// Language is a programming language a job post asks for.
type Language struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Location is a place a job post is offered in.
type Location struct {
	ID      id.ID  `db:"id" json:"id"`
	City    string `db:"city" json:"city"`
	State   string `db:"state" json:"state"`
	Country string `db:"country" json:"country"`
}

// Category groups job posts by discipline.
type Category struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// AttributeType is the declared type of a dynamic attribute.
type AttributeType string

const (
	AttributeText    AttributeType = "text"
	AttributeNumber  AttributeType = "number"
	AttributeBoolean AttributeType = "boolean"
	AttributeSelect  AttributeType = "select"
	AttributeDate    AttributeType = "date"
)

// Valid reports whether t is one of the declared attribute types.
func (t AttributeType) Valid() bool {
	switch t {
	case AttributeText, AttributeNumber, AttributeBoolean, AttributeSelect, AttributeDate:
		return true
	}
	return false
}

// Attribute is a user-defined field stored in the EAV side table.
type Attribute struct {
	ID      id.ID         `db:"id" json:"id"`
	Name    string        `db:"name" json:"name"`
	Type    AttributeType `db:"type" json:"type"`
	Options []string      `db:"options" json:"options,omitempty"`
}

// AttributeValue is one stored value. Values are strings whatever the declared type.
type AttributeValue struct {
	JobPostID   id.ID  `db:"job_post_id" json:"-"`
	AttributeID id.ID  `db:"attribute_id" json:"attribute_id"`
	Name        string `db:"name" json:"name"`
	Value       string `db:"value" json:"value"`
}
