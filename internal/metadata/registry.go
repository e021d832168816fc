// Package metadata describes the filterable shape of entities. It backs the
// meta endpoint and the generic column filters.
package metadata

import (
	"slices"
	"sync"
)

// FieldType defines the data type of a field.
type FieldType string

const (
	TypeID      FieldType = "id"
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number" // decimal
	TypeBoolean FieldType = "boolean"
	TypeDate    FieldType = "date"
	TypeEnum    FieldType = "enum"
)

// EntityDef describes a business entity.
type EntityDef struct {
	Name      string        `json:"name"`
	TableName string        `json:"-"`
	Fields    []FieldDef    `json:"fields"`
	Relations []RelationDef `json:"relations,omitempty"`
}

// RelationDef describes a many-to-many association.
type RelationDef struct {
	Name    string     `json:"name"`
	Columns []FieldDef `json:"columns"`
}

// FieldDef describes a field.
type FieldDef struct {
	Name     string    `json:"name"`
	Column   string    `json:"-"`
	Type     FieldType `json:"type"`
	Nullable bool      `json:"nullable,omitempty"`
	ReadOnly bool      `json:"readOnly,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// Field returns the definition of a field by name.
func (d EntityDef) Field(name string) (FieldDef, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// WithOptions returns a copy of d where the named field is an enum over options.
func (d EntityDef) WithOptions(field string, options ...string) EntityDef {
	fields := slices.Clone(d.Fields)
	for i := range fields {
		if fields[i].Name == field {
			fields[i].Type = TypeEnum
			fields[i].Options = slices.Clone(options)
		}
	}
	d.Fields = fields
	return d
}

// Registry stores entity definitions.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]EntityDef
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]EntityDef),
	}
}

func (r *Registry) Register(def EntityDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[def.Name] = def
}

func (r *Registry) Get(name string) (EntityDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.entities[name]
	return d, ok
}

func (r *Registry) List() []EntityDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]EntityDef, 0, len(r.entities))
	for _, def := range r.entities {
		list = append(list, def)
	}
	slices.SortFunc(list, func(a, b EntityDef) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return list
}
