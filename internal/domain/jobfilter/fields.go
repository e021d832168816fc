package jobfilter

import (
	"context"
	"slices"
	"strings"
	"time"

	"jobboard/internal/core/types"
	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/predicate"
)

// EnumField matches a column against a closed set of values. Values outside
// the set are dropped; when none is left the condition is ignored.
type EnumField struct {
	Column  string
	Allowed []string
}

// Build implements FieldBuilder.
func (f EnumField) Build(_ context.Context, cond *filter.Standard) (predicate.Predicate, error) {
	var values []any
	for _, v := range listValues(cond.Value) {
		v = strings.ToLower(strings.TrimSpace(v))
		if slices.Contains(f.Allowed, v) && !slices.Contains(values, any(v)) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return predicate.Pass{}, nil
	}

	switch cond.Operator {
	case filter.Equal, filter.InList:
		return predicate.FieldIn{Field: f.Column, Values: values}, nil
	case filter.NotEqual, filter.NotInList:
		return predicate.FieldIn{Field: f.Column, Values: values, Negate: true}, nil
	}
	return predicate.Pass{}, nil
}

// BoolField matches a boolean column. Values that are not boolean are ignored.
type BoolField struct {
	Column string
}

// Build implements FieldBuilder.
func (f BoolField) Build(_ context.Context, cond *filter.Standard) (predicate.Predicate, error) {
	v, ok := types.ParseBool(cond.Value)
	if !ok {
		return predicate.Pass{}, nil
	}
	switch cond.Operator {
	case filter.Equal:
		return predicate.Compare{Field: f.Column, Op: predicate.Eq, Value: v}, nil
	case filter.NotEqual:
		return predicate.Compare{Field: f.Column, Op: predicate.Ne, Value: v}, nil
	}
	return predicate.Pass{}, nil
}

// TextField is a case-insensitive substring search on a text column.
type TextField struct {
	Column string
}

// Build implements FieldBuilder.
func (f TextField) Build(_ context.Context, cond *filter.Standard) (predicate.Predicate, error) {
	s := strings.TrimSpace(types.Stringify(cond.Value))
	if s == "" {
		return predicate.Pass{}, nil
	}
	like := predicate.FieldLike{Field: f.Column, Substring: s}
	switch cond.Operator {
	case filter.Equal, filter.Like:
		return like, nil
	case filter.NotEqual:
		return predicate.Not{Term: like}, nil
	}
	return predicate.Pass{}, nil
}

// NumberField compares a decimal column. A {min, max} object is an inclusive range.
type NumberField struct {
	Column string
}

// Build implements FieldBuilder.
func (f NumberField) Build(_ context.Context, cond *filter.Standard) (predicate.Predicate, error) {
	if obj, ok := cond.Value.(map[string]any); ok {
		var terms []predicate.Predicate
		for _, bound := range rangeBounds {
			if d, ok := types.ParseDecimal(obj[bound.key]); ok {
				terms = append(terms, predicate.Compare{Field: f.Column, Op: bound.op, Value: d})
			}
		}
		return predicate.AllOf(terms...), nil
	}

	d, ok := types.ParseDecimal(cond.Value)
	if !ok {
		return predicate.Pass{}, nil
	}
	op, ok := scalarOp(cond.Operator)
	if !ok {
		return predicate.Pass{}, nil
	}
	return predicate.Compare{Field: f.Column, Op: op, Value: d}, nil
}

// SalaryRange reads {min, max} as salary_min >= min and salary_max <= max.
type SalaryRange struct {
	MinColumn string
	MaxColumn string
}

// Build implements FieldBuilder.
func (f SalaryRange) Build(_ context.Context, cond *filter.Standard) (predicate.Predicate, error) {
	obj, ok := cond.Value.(map[string]any)
	if !ok {
		return predicate.Pass{}, nil
	}
	var terms []predicate.Predicate
	if d, ok := types.ParseDecimal(obj["min"]); ok {
		terms = append(terms, predicate.Compare{Field: f.MinColumn, Op: predicate.Ge, Value: d})
	}
	if d, ok := types.ParseDecimal(obj["max"]); ok {
		terms = append(terms, predicate.Compare{Field: f.MaxColumn, Op: predicate.Le, Value: d})
	}
	return predicate.AllOf(terms...), nil
}

// DateField compares a timestamp column by calendar day. Relative terms are
// resolved with the compiler clock and time zone unless Now or Location is set.
// Unparseable values are ignored.
type DateField struct {
	Column   string
	Now      func() time.Time
	Location *time.Location
}

// Build implements FieldBuilder.
func (f DateField) Build(ctx context.Context, cond *filter.Standard) (predicate.Predicate, error) {
	now, loc := time.Now, time.UTC
	if cal, ok := calendarFrom(ctx); ok {
		now, loc = cal.now, cal.loc
	}
	if f.Now != nil {
		now = f.Now
	}
	if f.Location != nil {
		loc = f.Location
	}

	r, ok := resolveDay(types.Stringify(cond.Value), now().In(loc), loc)
	if !ok {
		return predicate.Pass{}, nil
	}
	dayAfter := r.end.AddDate(0, 0, 1)
	atOrAfterStart := predicate.Compare{Field: f.Column, Op: predicate.Ge, Value: r.start}
	beforeNextDay := predicate.Compare{Field: f.Column, Op: predicate.Lt, Value: dayAfter}

	switch cond.Operator {
	case filter.Equal:
		return predicate.And{Terms: []predicate.Predicate{atOrAfterStart, beforeNextDay}}, nil
	case filter.NotEqual:
		return predicate.Not{Term: predicate.And{Terms: []predicate.Predicate{atOrAfterStart, beforeNextDay}}}, nil
	case filter.Greater:
		return predicate.Compare{Field: f.Column, Op: predicate.Ge, Value: dayAfter}, nil
	case filter.GreaterOrEqual:
		return atOrAfterStart, nil
	case filter.Less:
		return predicate.Compare{Field: f.Column, Op: predicate.Lt, Value: r.start}, nil
	case filter.LessOrEqual:
		return beforeNextDay, nil
	}
	return predicate.Pass{}, nil
}
