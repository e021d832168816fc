package jobfilter

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"jobboard/internal/core/types"
	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/domain/predicate"
	"jobboard/pkg/logger"
)

var (
	trueLiterals  = []string{"true", "1", "yes"}
	falseLiterals = []string{"false", "0", "no"}
)

// rangeBounds maps {min, max} keys to inclusive comparisons.
var rangeBounds = []struct {
	key string
	op  predicate.Op
}{
	{"min", predicate.Ge},
	{"max", predicate.Le},
}

// attribute builds an EAV predicate.
//
// Unknown attributes leave the query unfiltered. Known attributes with a value
// that can never match (no valid select option, unparseable date) force an
// empty result instead.
func (c *Compiler) attribute(ctx context.Context, n *filter.Attribute) (predicate.Predicate, error) {
	attr, ok, err := c.schema.LookupAttribute(ctx, n.Name)
	if err != nil {
		return nil, fmt.Errorf("lookup attribute %q: %w", n.Name, err)
	}
	if !ok {
		logger.Debug(ctx, "unknown attribute ignored", "attribute", n.Name)
		return predicate.Pass{}, nil
	}
	if isBlank(n.Value) {
		return predicate.Pass{}, nil
	}

	switch attr.Type {
	case jobpost.AttributeText:
		return c.textAttribute(attr, n), nil
	case jobpost.AttributeNumber:
		return c.numberAttribute(attr, n), nil
	case jobpost.AttributeBoolean:
		return c.booleanAttribute(attr, n), nil
	case jobpost.AttributeSelect:
		return c.selectAttribute(attr, n), nil
	case jobpost.AttributeDate:
		return c.dateAttribute(attr, n), nil
	}
	return nil, fmt.Errorf("attribute %q has unknown type %q", attr.Name, attr.Type)
}

func match(attr jobpost.Attribute, cond predicate.ValueCond) predicate.Predicate {
	return predicate.AttrMatch{AttributeID: attr.ID, Cond: cond}
}

func (c *Compiler) textAttribute(attr jobpost.Attribute, n *filter.Attribute) predicate.Predicate {
	value, mode := n.Value, n.Mode
	if obj, ok := value.(map[string]any); ok {
		// {text, mode} object form
		if t, has := obj["text"]; has {
			value = t
		} else {
			value = obj["value"]
		}
		if m, has := obj["mode"]; has && mode == "" {
			mode = strings.ToLower(types.Stringify(m))
		}
	}
	text := types.Stringify(value)
	if text == "" {
		return predicate.Pass{}
	}

	switch n.Operator {
	case filter.NotEqual:
		// entities without any value count as not equal
		return predicate.Not{Term: match(attr, predicate.TextCond{Mode: predicate.TextExact, Value: text})}
	case filter.Like:
		if mode == "" {
			mode = string(predicate.TextContains)
		}
	case filter.Equal:
		if mode == "" {
			if _, structured := n.Value.(map[string]any); structured || n.Mode != "" {
				mode = string(predicate.TextContains)
			} else {
				mode = string(predicate.TextExact)
			}
		}
	default:
		return predicate.Pass{}
	}

	switch mode {
	case "not_contains":
		return predicate.Not{Term: match(attr, predicate.TextCond{Mode: predicate.TextContains, Value: text})}
	case string(predicate.TextStartsWith), string(predicate.TextEndsWith), string(predicate.TextExact), string(predicate.TextContains):
		return match(attr, predicate.TextCond{Mode: predicate.TextMode(mode), Value: text})
	}
	return match(attr, predicate.TextCond{Mode: predicate.TextContains, Value: text})
}

// numberAttribute compares numerically. A bound or value that is not a number
// can never match.
func (c *Compiler) numberAttribute(attr jobpost.Attribute, n *filter.Attribute) predicate.Predicate {
	if obj, ok := n.Value.(map[string]any); ok {
		var terms []predicate.Predicate
		for _, bound := range rangeBounds {
			raw, has := obj[bound.key]
			if !has || isBlank(raw) {
				continue
			}
			d, ok := types.ParseDecimal(raw)
			if !ok {
				return predicate.Never{}
			}
			terms = append(terms, match(attr, predicate.NumberCond{Op: bound.op, Value: d}))
		}
		return predicate.AllOf(terms...)
	}

	d, ok := types.ParseDecimal(n.Value)
	if !ok {
		return predicate.Never{}
	}
	op, ok := scalarOp(n.Operator)
	if !ok {
		return predicate.Pass{}
	}
	return match(attr, predicate.NumberCond{Op: op, Value: d})
}

func (c *Compiler) booleanAttribute(attr jobpost.Attribute, n *filter.Attribute) predicate.Predicate {
	value, ok := types.ParseBool(n.Value)
	if !ok {
		if _, isString := n.Value.(string); !isString {
			return predicate.Pass{}
		}
		// unrecognized words read as false
		value = false
	}
	literals := falseLiterals
	if value {
		literals = trueLiterals
	}

	switch n.Operator {
	case filter.Equal:
		return match(attr, predicate.SetCond{Values: literals})
	case filter.NotEqual:
		return match(attr, predicate.SetCond{Values: literals, Negate: true})
	}
	return predicate.Pass{}
}

// selectAttribute validates candidates against the declared options. When no
// candidate survives the predicate never matches.
func (c *Compiler) selectAttribute(attr jobpost.Attribute, n *filter.Attribute) predicate.Predicate {
	value, mode := n.Value, n.Mode
	if obj, ok := value.(map[string]any); ok {
		if vs, has := obj["values"]; has {
			value = vs
		} else {
			value = obj["value"]
		}
		if m, has := obj["mode"]; has && mode == "" {
			mode = strings.ToLower(types.Stringify(m))
		}
	}

	options := make(map[string]struct{}, len(attr.Options))
	for _, o := range attr.Options {
		options[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}
	var valid []string
	for _, v := range listValues(value) {
		v = strings.ToLower(strings.TrimSpace(v))
		if _, ok := options[v]; ok && !slices.Contains(valid, v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return predicate.Never{}
	}

	switch n.Operator {
	case filter.NotEqual, filter.NotInList:
		mode = "none"
	case filter.InList:
		mode = "in"
	}
	if mode == "" {
		mode = "any"
	}

	each := func() []predicate.Predicate {
		terms := make([]predicate.Predicate, len(valid))
		for i, v := range valid {
			terms[i] = match(attr, predicate.SelectCond{Value: v})
		}
		return terms
	}

	switch mode {
	case "any":
		return predicate.AnyOf(each()...)
	case "all":
		return predicate.AllOf(each()...)
	case "none", "not_in":
		return predicate.Not{Term: predicate.AnyOf(each()...)}
	case "in":
		return match(attr, predicate.SetCond{Values: valid})
	default:
		return match(attr, predicate.SetCond{Values: valid[:1]})
	}
}

// dateAttribute compares calendar dates. Unparseable values never match.
func (c *Compiler) dateAttribute(attr jobpost.Attribute, n *filter.Attribute) predicate.Predicate {
	if obj, ok := n.Value.(map[string]any); ok {
		cond, ok := c.dateRange(obj)
		if !ok {
			return predicate.Never{}
		}
		if cond.From == nil && cond.To == nil {
			return predicate.Pass{}
		}
		return match(attr, cond)
	}

	if t, ok := n.Value.(time.Time); ok {
		d := startOfDay(t)
		return c.dayPredicate(attr, n.Operator, dayRange{d, d})
	}

	r, ok := resolveDay(types.Stringify(n.Value), c.now(), c.location)
	if !ok {
		return predicate.Never{}
	}
	return c.dayPredicate(attr, n.Operator, r)
}

// dayPredicate compares stored dates against an inclusive day range.
func (c *Compiler) dayPredicate(attr jobpost.Attribute, op filter.ComparisonType, r dayRange) predicate.Predicate {
	within := func() predicate.Predicate {
		if r.start.Equal(r.end) {
			return match(attr, predicate.DateCond{Op: predicate.Eq, Date: r.start})
		}
		start, end := r.start, r.end
		return match(attr, predicate.DateRangeCond{From: &start, To: &end})
	}

	switch op {
	case filter.Equal, filter.Like:
		return within()
	case filter.NotEqual:
		return predicate.Not{Term: within()}
	case filter.Greater:
		return match(attr, predicate.DateCond{Op: predicate.Gt, Date: r.end})
	case filter.GreaterOrEqual:
		return match(attr, predicate.DateCond{Op: predicate.Ge, Date: r.start})
	case filter.Less:
		return match(attr, predicate.DateCond{Op: predicate.Lt, Date: r.start})
	case filter.LessOrEqual:
		return match(attr, predicate.DateCond{Op: predicate.Le, Date: r.end})
	}
	return predicate.Pass{}
}

// dateRange reads {from|after, to|before}. Relative terms widen to their whole span.
func (c *Compiler) dateRange(obj map[string]any) (predicate.DateRangeCond, bool) {
	var cond predicate.DateRangeCond
	now := c.now()
	for _, key := range []string{"from", "after"} {
		if raw, has := obj[key]; has && !isBlank(raw) {
			r, ok := resolveDay(types.Stringify(raw), now, c.location)
			if !ok {
				return cond, false
			}
			cond.From = &r.start
			break
		}
	}
	for _, key := range []string{"to", "before"} {
		if raw, has := obj[key]; has && !isBlank(raw) {
			r, ok := resolveDay(types.Stringify(raw), now, c.location)
			if !ok {
				return cond, false
			}
			cond.To = &r.end
			break
		}
	}
	return cond, true
}

// scalarOp maps a comparison to a predicate operator. Like and list operators have no scalar form.
func scalarOp(op filter.ComparisonType) (predicate.Op, bool) {
	switch op {
	case filter.Equal:
		return predicate.Eq, true
	case filter.NotEqual:
		return predicate.Ne, true
	case filter.Greater:
		return predicate.Gt, true
	case filter.Less:
		return predicate.Lt, true
	case filter.GreaterOrEqual:
		return predicate.Ge, true
	case filter.LessOrEqual:
		return predicate.Le, true
	}
	return "", false
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

