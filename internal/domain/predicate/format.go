package predicate

import (
	"fmt"
	"strings"
	"time"

	"jobboard/internal/core/types"
)

// Format renders a predicate tree for logs and the explain endpoint.
func Format(p Predicate) string {
	var b strings.Builder
	format(&b, p)
	return b.String()
}

func format(b *strings.Builder, p Predicate) {
	switch v := p.(type) {
	case nil, Pass:
		b.WriteString("PASS")
	case Never:
		b.WriteString("NEVER")
	case And:
		group(b, "AND", v.Terms)
	case Or:
		group(b, "OR", v.Terms)
	case Not:
		b.WriteString("NOT ")
		format(b, v.Term)
	case Compare:
		fmt.Fprintf(b, "%s %s %s", v.Field, v.Op, formatValue(v.Value))
	case FieldIn:
		vals := make([]string, len(v.Values))
		for i, x := range v.Values {
			vals[i] = formatValue(x)
		}
		op := "IN"
		if v.Negate {
			op = "NOT IN"
		}
		fmt.Fprintf(b, "%s %s (%s)", v.Field, op, strings.Join(vals, ", "))
	case FieldLike:
		fmt.Fprintf(b, "%s ILIKE %q", v.Field, "%"+v.Substring+"%")
	case RelationCount:
		scope := "*"
		if v.IDs != nil {
			ids := make([]string, len(v.IDs))
			for i, x := range v.IDs {
				ids[i] = x.String()
			}
			scope = strings.Join(ids, ",")
			if v.Outside {
				scope = "not " + scope
			}
		}
		fmt.Fprintf(b, "count(%s[%s]) %s %d", v.Relation, scope, v.Op, v.N)
	case AttrMatch:
		fmt.Fprintf(b, "attribute(%s) has %s", v.AttributeID, formatCond(v.Cond))
	default:
		fmt.Fprintf(b, "%T", p)
	}
}

func group(b *strings.Builder, op string, terms []Predicate) {
	b.WriteByte('(')
	for i, t := range terms {
		if i > 0 {
			b.WriteString(" " + op + " ")
		}
		format(b, t)
	}
	b.WriteByte(')')
}

func formatCond(c ValueCond) string {
	switch v := c.(type) {
	case AnyValue:
		return "any value"
	case TextCond:
		return fmt.Sprintf("text %s %q", v.Mode, v.Value)
	case NumberCond:
		return fmt.Sprintf("number %s %s", v.Op, v.Value)
	case SetCond:
		if v.Negate {
			return fmt.Sprintf("value not in (%s)", strings.Join(v.Values, ", "))
		}
		return fmt.Sprintf("value in (%s)", strings.Join(v.Values, ", "))
	case SelectCond:
		return fmt.Sprintf("option %q", v.Value)
	case DateCond:
		return fmt.Sprintf("date %s %s", v.Op, v.Date.Format(time.DateOnly))
	case DateRangeCond:
		from, to := "-inf", "+inf"
		if v.From != nil {
			from = v.From.Format(time.DateOnly)
		}
		if v.To != nil {
			to = v.To.Format(time.DateOnly)
		}
		return fmt.Sprintf("date in [%s, %s]", from, to)
	}
	return fmt.Sprintf("%T", c)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case time.Time:
		return t.Format(time.DateOnly)
	}
	return types.Stringify(v)
}
