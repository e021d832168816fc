// Package sqlfilter translates predicate trees into squirrel conditions over
// the job post tables.
package sqlfilter

import (
	"jobboard/internal/domain/jobpost"
)

// Pivot describes the join table of a many-to-many relation.
type Pivot struct {
	Table      string
	OwnerKey   string
	RelatedKey string
}

// Schema names the tables and columns a translation targets.
type Schema struct {
	Table       string
	Key         string
	Columns     map[string]string
	Pivots      map[string]Pivot
	ValuesTable string
}

// JobPostSchema is the schema created by the job post migrations.
func JobPostSchema() Schema {
	def := jobpost.Definition()
	columns := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		columns[f.Name] = f.Column
	}
	return Schema{
		Table:   def.TableName,
		Key:     "id",
		Columns: columns,
		Pivots: map[string]Pivot{
			jobpost.RelationLanguages:  {Table: "job_post_language", OwnerKey: "job_post_id", RelatedKey: "language_id"},
			jobpost.RelationLocations:  {Table: "job_post_location", OwnerKey: "job_post_id", RelatedKey: "location_id"},
			jobpost.RelationCategories: {Table: "category_job_post", OwnerKey: "job_post_id", RelatedKey: "category_id"},
		},
		ValuesTable: "job_attribute_values",
	}
}

func (s Schema) column(field string) (string, bool) {
	c, ok := s.Columns[field]
	if !ok {
		return "", false
	}
	return s.Table + "." + c, true
}

func (s Schema) key() string {
	return s.Table + "." + s.Key
}
