package postgres

import (
	"io/fs"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	first := migrations[0]
	assert.Equal(t, int64(1), first.Version)
	assert.Contains(t, first.Source, "00001_job_posts.sql")
	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version)
	}
}

func TestMigrationSQL(t *testing.T) {
	body, err := fs.ReadFile(migrationFS, "migrations/00001_job_posts.sql")
	require.NoError(t, err)
	sql := string(body)

	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS job_posts")
	assert.Contains(t, sql, "jobboard_try_numeric")
	assert.Contains(t, sql, "pg_notify('attributes_changed'")
	assert.NotContains(t, sql, "jobboard_schema_migrations")
}

func TestMigrationSQL_MultiValuedAttributes(t *testing.T) {
	body, err := fs.ReadFile(migrationFS, "migrations/00001_job_posts.sql")
	require.NoError(t, err)
	sql := string(body)

	table := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS job_attribute_values \((.*?)\n\);`).FindStringSubmatch(sql)
	require.Len(t, table, 2)
	// several rows per (job post, attribute) must be accepted
	assert.NotContains(t, table[1], "PRIMARY KEY")
	assert.NotContains(t, table[1], "UNIQUE")

	assert.Contains(t, sql, "ON job_attribute_values (job_post_id, attribute_id)")
	assert.Contains(t, sql, "ON job_attribute_values (attribute_id, value)")
	assert.NotRegexp(t, `UNIQUE INDEX[^;]*ON job_attribute_values`, sql)
}
