package predicate

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"jobboard/internal/core/id"
	"jobboard/internal/core/types"
)

// Record is an entity as seen by Evaluate.
type Record interface {
	// Field returns the value of a fixed column. A nil value is SQL NULL.
	Field(name string) (any, bool)
	// Relation returns the ids associated through the named relation.
	Relation(name string) []id.ID
	// AttributeValues returns every stored value of an attribute.
	AttributeValues(attributeID id.ID) []string
}

// Evaluate reports whether the record satisfies p.
// A tree that imposes no constraint matches every record.
func Evaluate(p Predicate, r Record) bool {
	v, present := eval(p, r)
	return !present || v
}

// eval returns the truth value and whether p constrains anything at all.
func eval(p Predicate, r Record) (bool, bool) {
	switch v := p.(type) {
	case nil, Pass:
		return false, false
	case Never:
		return false, true
	case And:
		present := false
		for _, t := range v.Terms {
			ok, has := eval(t, r)
			if !has {
				continue
			}
			present = true
			if !ok {
				return false, true
			}
		}
		return true, present
	case Or:
		present := false
		for _, t := range v.Terms {
			ok, has := eval(t, r)
			if !has {
				continue
			}
			present = true
			if ok {
				return true, true
			}
		}
		return false, present
	case Not:
		ok, has := eval(v.Term, r)
		return !ok, has
	case Compare:
		return evalCompare(v, r), true
	case FieldIn:
		return evalFieldIn(v, r), true
	case FieldLike:
		raw, _ := r.Field(v.Field)
		s, ok := raw.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(v.Substring)), true
	case RelationCount:
		return evalRelationCount(v, r), true
	case AttrMatch:
		for _, stored := range r.AttributeValues(v.AttributeID) {
			if MatchValue(v.Cond, stored) {
				return true, true
			}
		}
		return false, true
	}
	return false, false
}

func evalCompare(c Compare, r Record) bool {
	raw, ok := r.Field(c.Field)
	if !ok || raw == nil {
		return false
	}
	switch want := c.Value.(type) {
	case decimal.Decimal:
		got, ok := types.ParseDecimal(deref(raw))
		return ok && compareOrder(got.Cmp(want), c.Op)
	case time.Time:
		got, ok := deref(raw).(time.Time)
		return ok && compareOrder(got.Compare(want), c.Op)
	case bool:
		got, ok := deref(raw).(bool)
		if !ok {
			return false
		}
		switch c.Op {
		case Eq:
			return got == want
		case Ne:
			return got != want
		}
		return false
	case string:
		got, ok := deref(raw).(string)
		return ok && compareOrder(strings.Compare(got, want), c.Op)
	}
	return false
}

func evalFieldIn(f FieldIn, r Record) bool {
	raw, ok := r.Field(f.Field)
	if !ok || raw == nil {
		return false
	}
	got := types.Stringify(deref(raw))
	for _, v := range f.Values {
		if types.Stringify(v) == got {
			return !f.Negate
		}
	}
	return f.Negate
}

func evalRelationCount(c RelationCount, r Record) bool {
	assoc := r.Relation(c.Relation)
	n := 0
	if c.IDs == nil {
		n = len(assoc)
	} else {
		set := make(map[id.ID]struct{}, len(c.IDs))
		for _, x := range c.IDs {
			set[x] = struct{}{}
		}
		for _, a := range assoc {
			if _, in := set[a]; in != c.Outside {
				n++
			}
		}
	}
	if c.Op == CountGe {
		return n >= c.N
	}
	return n == c.N
}

// MatchValue applies a value condition to one stored string.
func MatchValue(cond ValueCond, stored string) bool {
	switch c := cond.(type) {
	case AnyValue:
		return true
	case TextCond:
		s, v := strings.ToLower(stored), strings.ToLower(c.Value)
		switch c.Mode {
		case TextStartsWith:
			return strings.HasPrefix(s, v)
		case TextEndsWith:
			return strings.HasSuffix(s, v)
		case TextExact:
			return s == v
		default:
			return strings.Contains(s, v)
		}
	case NumberCond:
		n, ok := StoredNumber(stored)
		return ok && compareOrder(n.Cmp(c.Value), c.Op)
	case SetCond:
		s := strings.ToLower(stored)
		for _, v := range c.Values {
			if s == v {
				return !c.Negate
			}
		}
		return c.Negate
	case SelectCond:
		s := strings.ToLower(stored)
		return s == c.Value || strings.Contains(s, `"`+c.Value+`"`)
	case DateCond:
		d, ok := StoredDate(stored)
		return ok && compareOrder(d.Compare(c.Date), c.Op)
	case DateRangeCond:
		d, ok := StoredDate(stored)
		if !ok {
			return false
		}
		if c.From != nil && d.Before(*c.From) {
			return false
		}
		if c.To != nil && d.After(*c.To) {
			return false
		}
		return true
	}
	return false
}

var (
	storedNumberPattern = regexp.MustCompile(`^\s*-?[0-9]+(\.[0-9]+)?\s*$`)
	storedDatePattern   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}`)
)

// StoredNumber reads an EAV value as a decimal the way the database cast does.
func StoredNumber(s string) (decimal.Decimal, bool) {
	if !storedNumberPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	return d, err == nil
}

// StoredDate reads the leading YYYY-MM-DD of an EAV value as a UTC date.
func StoredDate(s string) (time.Time, bool) {
	m := storedDatePattern.FindString(strings.TrimSpace(s))
	if m == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, m)
	return d, err == nil
}

func compareOrder(cmp int, op Op) bool {
	switch op {
	case Eq:
		return cmp == 0
	case Ne:
		return cmp != 0
	case Gt:
		return cmp > 0
	case Lt:
		return cmp < 0
	case Ge:
		return cmp >= 0
	case Le:
		return cmp <= 0
	}
	return false
}

func deref(v any) any {
	switch p := v.(type) {
	case *decimal.Decimal:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	case *string:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}
