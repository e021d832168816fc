package metadata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/core/id"
)

type tag struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type sample struct {
	ID        id.ID           `db:"id" json:"id"`
	Title     string          `db:"title" json:"title"`
	Salary    decimal.Decimal `db:"salary" json:"salary"`
	Remote    bool            `db:"is_remote" json:"is_remote"`
	Seen      *time.Time      `db:"seen_at" json:"seen_at"`
	Count     int             `db:"count"`
	Computed  string          `json:"computed"`
	Tags      []tag           `db:"-" json:"tags"`
	Hidden    []tag           `db:"-" json:"hidden" meta:"-"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

func TestInspect(t *testing.T) {
	def := Inspect(sample{}, "samples", "sample_table")

	assert.Equal(t, "samples", def.Name)
	assert.Equal(t, "sample_table", def.TableName)

	names := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "title", "salary", "is_remote", "seen_at", "count", "created_at"}, names)

	f, ok := def.Field("salary")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, f.Type)

	f, _ = def.Field("seen_at")
	assert.Equal(t, TypeDate, f.Type)
	assert.True(t, f.Nullable)

	f, _ = def.Field("id")
	assert.Equal(t, TypeID, f.Type)
	assert.True(t, f.ReadOnly)

	f, _ = def.Field("count")
	assert.Equal(t, TypeInteger, f.Type)
	assert.Equal(t, "count", f.Column)

	require.Len(t, def.Relations, 1)
	assert.Equal(t, "tags", def.Relations[0].Name)
	assert.Len(t, def.Relations[0].Columns, 2)
}

func TestEntityDef_WithOptions(t *testing.T) {
	def := Inspect(sample{}, "samples", "sample_table")
	enum := def.WithOptions("title", "a", "b")

	f, _ := enum.Field("title")
	assert.Equal(t, TypeEnum, f.Type)
	assert.Equal(t, []string{"a", "b"}, f.Options)

	orig, _ := def.Field("title")
	assert.Equal(t, TypeString, orig.Type, "original definition is untouched")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(EntityDef{Name: "b"})
	r.Register(EntityDef{Name: "a"})

	_, ok := r.Get("a")
	assert.True(t, ok)
	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
}
