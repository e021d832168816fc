package jobpost_repo

import (
	"context"
	"fmt"

	"jobboard/internal/core/id"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/infrastructure/storage/memory"
	"jobboard/internal/infrastructure/storage/postgres"
	"jobboard/pkg/logger"
)

// SeedStats counts the rows written by a seed run.
type SeedStats struct {
	Attributes int   `json:"attributes"`
	Languages  int   `json:"languages"`
	Locations  int   `json:"locations"`
	Categories int   `json:"categories"`
	JobPosts   int   `json:"job_posts"`
	Links      int64 `json:"links"`
	Values     int64 `json:"values"`
}

// Seeder copies the content of an in-memory store into the database.
type Seeder struct {
	txm    *postgres.TxManager
	loader *postgres.BulkLoader
}

// NewSeeder creates a seeder.
func NewSeeder(txm *postgres.TxManager) *Seeder {
	return &Seeder{txm: txm, loader: postgres.NewBulkLoader(txm)}
}

var resetTables = []string{"job_posts", "languages", "locations", "categories", "attributes"}

// Seed writes every entity of src in one transaction. With reset set the
// job post tables are truncated first.
func (s *Seeder) Seed(ctx context.Context, src *memory.Store, reset bool) (SeedStats, error) {
	var stats SeedStats
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if reset {
			stmts := make([]postgres.Statement, 0, len(resetTables))
			for _, t := range resetTables {
				stmts = append(stmts, postgres.Statement{SQL: "TRUNCATE TABLE " + t + " CASCADE"})
			}
			if err := s.loader.ExecBatch(ctx, stmts); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}

		var err error
		if stats, err = s.write(ctx, src); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return SeedStats{}, err
	}
	logger.Info(ctx, "seed complete",
		"job_posts", stats.JobPosts,
		"attributes", stats.Attributes,
		"links", stats.Links,
		"values", stats.Values,
	)
	return stats, nil
}

func (s *Seeder) write(ctx context.Context, src *memory.Store) (SeedStats, error) {
	var stats SeedStats

	attrs := src.Attributes()
	stmts := make([]postgres.Statement, 0, len(attrs))
	for _, a := range attrs {
		sql, args, err := Builder().Insert("attributes").
			Columns(attributeCols...).
			Values(a.ID, a.Name, string(a.Type), nonNil(a.Options)).
			ToSql()
		if err != nil {
			return stats, fmt.Errorf("build attribute insert: %w", err)
		}
		stmts = append(stmts, postgres.Statement{SQL: sql, Args: args})
	}
	stats.Attributes = len(attrs)

	var langRows, locRows, catRows [][]any
	for _, l := range src.Languages() {
		langRows = append(langRows, []any{l.ID, l.Name})
	}
	for _, l := range src.Locations() {
		locRows = append(locRows, []any{l.ID, l.City, l.State, l.Country})
	}
	for _, c := range src.Categories() {
		catRows = append(catRows, []any{c.ID, c.Name})
	}
	stats.Languages, stats.Locations, stats.Categories = len(langRows), len(locRows), len(catRows)

	posts := src.Posts()
	var postLangs, postLocs, postCats, values [][]any
	for _, p := range posts {
		sql, args, err := Builder().Insert(jobpost.Table).SetMap(postgres.StructToMap(p)).ToSql()
		if err != nil {
			return stats, fmt.Errorf("build job post insert: %w", err)
		}
		stmts = append(stmts, postgres.Statement{SQL: sql, Args: args})

		for _, l := range p.Languages {
			postLangs = append(postLangs, []any{p.ID, l.ID})
		}
		for _, l := range p.Locations {
			postLocs = append(postLocs, []any{p.ID, l.ID})
		}
		for _, c := range p.Categories {
			postCats = append(postCats, []any{p.ID, c.ID})
		}
		for _, v := range p.Attributes {
			if id.IsNil(v.AttributeID) {
				// value of an undeclared attribute
				continue
			}
			values = append(values, []any{p.ID, v.AttributeID, v.Value})
		}
	}
	stats.JobPosts = len(posts)

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"languages", []string{"id", "name"}, langRows},
		{"locations", []string{"id", "city", "state", "country"}, locRows},
		{"categories", []string{"id", "name"}, catRows},
	}
	for _, c := range copies {
		if _, err := s.loader.Copy(ctx, c.table, c.columns, c.rows); err != nil {
			return stats, err
		}
	}

	if err := s.loader.ExecBatch(ctx, stmts); err != nil {
		return stats, fmt.Errorf("insert attributes and job posts: %w", err)
	}

	links := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"job_post_language", []string{"job_post_id", "language_id"}, postLangs},
		{"job_post_location", []string{"job_post_id", "location_id"}, postLocs},
		{"category_job_post", []string{"job_post_id", "category_id"}, postCats},
	}
	for _, l := range links {
		n, err := s.loader.Copy(ctx, l.table, l.columns, l.rows)
		if err != nil {
			return stats, err
		}
		stats.Links += n
	}

	n, err := s.loader.Copy(ctx, "job_attribute_values", []string{"job_post_id", "attribute_id", "value"}, values)
	if err != nil {
		return stats, err
	}
	stats.Values = n
	return stats, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
