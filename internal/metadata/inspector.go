package metadata

import (
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"jobboard/internal/core/id"
)

var (
	idType      = reflect.TypeOf(id.ID{})
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// Inspect analyzes a struct and returns its EntityDef.
//
// Fields with a db tag become columns. Slices of structs tagged db:"-" become
// relations unless they carry meta:"-".
func Inspect(entity any, name, table string) EntityDef {
	t := reflect.TypeOf(entity)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if name == "" {
		name = t.Name()
	}

	def := EntityDef{
		Name:      name,
		TableName: table,
		Fields:    make([]FieldDef, 0),
	}

	inspectStruct(t, &def)

	return def
}

func inspectStruct(t reflect.Type, def *EntityDef) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.PkgPath != "" { // unexported
			continue
		}
		if field.Tag.Get("meta") == "-" {
			continue
		}

		// Handle embedded structs (flattening)
		if field.Anonymous {
			inspectStruct(field.Type, def)
			continue
		}

		if field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.Struct {
			def.Relations = append(def.Relations, RelationDef{
				Name:    jsonName(field),
				Columns: inspectColumns(field.Type.Elem()),
			})
			continue
		}

		if fDef, ok := fieldDef(field); ok {
			def.Fields = append(def.Fields, fDef)
		}
	}
}

func inspectColumns(t reflect.Type) []FieldDef {
	cols := make([]FieldDef, 0)
	for i := 0; i < t.NumField(); i++ {
		if fDef, ok := fieldDef(t.Field(i)); ok {
			cols = append(cols, fDef)
		}
	}
	return cols
}

func fieldDef(field reflect.StructField) (FieldDef, bool) {
	if field.PkgPath != "" {
		return FieldDef{}, false
	}
	column := dbName(field)
	if column == "" || column == "-" {
		return FieldDef{}, false
	}
	fDef := FieldDef{
		Name:     jsonName(field),
		Column:   column,
		ReadOnly: isReadOnly(field),
	}
	mapFieldType(&fDef, field)
	if fDef.Name == "-" {
		fDef.Name = column
	}
	return fDef, true
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		def.Nullable = true
		t = t.Elem()
	}

	switch t {
	case idType:
		def.Type = TypeID
		return
	case timeType:
		def.Type = TypeDate
		return
	case decimalType:
		def.Type = TypeNumber
		return
	}

	switch t.Kind() {
	case reflect.String:
		def.Type = TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
	case reflect.Bool:
		def.Type = TypeBoolean
	default:
		def.Type = TypeString // fallback
	}
}

func dbName(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("db")
	if !ok {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}
	return strings.ToLower(field.Name)
}

func isReadOnly(field reflect.StructField) bool {
	// Heuristic: ids and timestamps are generated
	return field.Name == "ID" || field.Name == "CreatedAt" || field.Name == "UpdatedAt"
}
