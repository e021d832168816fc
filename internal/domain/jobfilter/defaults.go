package jobfilter

import (
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/metadata"
)

// DefaultRegistry registers a builder for every filterable job post column,
// the salary range filter and the three relations.
//
// Column builders are derived from the job post definition, so a new column
// is filterable without further wiring. Date columns resolve relative terms
// with the clock and time zone of the compiler that uses the registry.
func DefaultRegistry() *Registry {
	def := jobpost.Definition()

	var opts []RegistryOption
	for _, f := range def.Fields {
		if b := columnBuilder(f); b != nil {
			opts = append(opts, WithField(f.Name, b))
		}
	}

	opts = append(opts,
		WithField("salary", SalaryRange{MinColumn: "salary_min", MaxColumn: "salary_max"}),
		WithRelation(Relation{Name: jobpost.RelationLanguages, Fields: []string{"name"}}),
		WithRelation(Relation{Name: jobpost.RelationCategories, Fields: []string{"name"}}),
		WithRelation(Relation{
			Name:   jobpost.RelationLocations,
			Fields: []string{jobpost.LocationCity, jobpost.LocationState, jobpost.LocationCountry},
		}),
	)
	return NewRegistry(opts...)
}

func columnBuilder(f metadata.FieldDef) FieldBuilder {
	switch f.Type {
	case metadata.TypeEnum:
		return EnumField{Column: f.Column, Allowed: f.Options}
	case metadata.TypeBoolean:
		return BoolField{Column: f.Column}
	case metadata.TypeString:
		return TextField{Column: f.Column}
	case metadata.TypeNumber, metadata.TypeInteger:
		return NumberField{Column: f.Column}
	case metadata.TypeDate:
		return DateField{Column: f.Column}
	}
	// ids are not filterable
	return nil
}
