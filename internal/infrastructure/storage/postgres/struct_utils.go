package postgres

import (
	"reflect"
	"sync"
)

// columnIndex maps a struct type to its db-tagged fields.
type columnIndex struct {
	names   []string
	indices [][]int
}

var columnCache sync.Map // map[reflect.Type]*columnIndex

func indexOf(t reflect.Type) *columnIndex {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.(*columnIndex)
	}

	idx := &columnIndex{}
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if f.Anonymous {
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" || !f.IsExported() {
				continue
			}
			idx.names = append(idx.names, tag)
			idx.indices = append(idx.indices, f.Index)
		}
	}
	actual, _ := columnCache.LoadOrStore(t, idx)
	return actual.(*columnIndex)
}

// Columns returns the db column names of T in field order. Fields tagged
// db:"-" (loaded relations) are skipped.
func Columns[T any]() []string {
	var zero T
	return append([]string(nil), indexOf(reflect.TypeOf(zero)).names...)
}

// StructToMap converts a struct to a column → value map using db tags.
// Embedded structs are flattened.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	idx := indexOf(rv.Type())
	out := make(map[string]any, len(idx.names))
	for i, name := range idx.names {
		out[name] = rv.FieldByIndex(idx.indices[i]).Interface()
	}
	return out
}
