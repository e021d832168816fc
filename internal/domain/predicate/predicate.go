// Package predicate defines the backend-neutral predicate tree produced by the
// filter compiler. Storage backends translate it into their own query form and
// Evaluate gives the reference semantics over in-memory records.
package predicate

import (
	"time"

	"github.com/shopspring/decimal"

	"jobboard/internal/core/id"
)

// Predicate is a node of the predicate tree. The set of implementations is closed.
type Predicate interface {
	predicate()
}

// And holds when every present term holds.
type And struct{ Terms []Predicate }

// Or holds when at least one present term holds.
type Or struct{ Terms []Predicate }

// Not negates its term.
type Not struct{ Term Predicate }

// Pass contributes no constraint. Inside And and Or it is treated as absent.
type Pass struct{}

// Never matches nothing.
type Never struct{}

// Op is a scalar comparison operator.
type Op string

const (
	Eq Op = "="
	Ne Op = "!="
	Gt Op = ">"
	Lt Op = "<"
	Ge Op = ">="
	Le Op = "<="
)

// Compare compares a fixed column with a typed value.
// Value is one of string, bool, decimal.Decimal or time.Time.
type Compare struct {
	Field string
	Op    Op
	Value any
}

// FieldIn tests column membership in a value list.
type FieldIn struct {
	Field  string
	Values []any
	Negate bool
}

// FieldLike is a case-insensitive substring match on a text column.
type FieldLike struct {
	Field     string
	Substring string
}

// CountOp compares an association count.
type CountOp string

const (
	CountEq CountOp = "="
	CountGe CountOp = ">="
)

// RelationCount compares the number of associations of a relation.
//
// With a nil IDs every association is counted. Otherwise only associations
// whose id is in IDs are counted, or those outside IDs when Outside is set.
type RelationCount struct {
	Relation string
	IDs      []id.ID
	Outside  bool
	Op       CountOp
	N        int
}

// AttrMatch holds when the entity has at least one stored value of the
// attribute satisfying Cond.
type AttrMatch struct {
	AttributeID id.ID
	Cond        ValueCond
}

func (And) predicate()           {}
func (Or) predicate()            {}
func (Not) predicate()           {}
func (Pass) predicate()          {}
func (Never) predicate()         {}
func (Compare) predicate()       {}
func (FieldIn) predicate()       {}
func (FieldLike) predicate()     {}
func (RelationCount) predicate() {}
func (AttrMatch) predicate()     {}

// ValueCond is a condition over one stored EAV value string.
type ValueCond interface {
	valueCond()
}

// AnyValue matches every stored value.
type AnyValue struct{}

// TextMode selects how TextCond matches.
type TextMode string

const (
	TextContains   TextMode = "contains"
	TextStartsWith TextMode = "starts_with"
	TextEndsWith   TextMode = "ends_with"
	TextExact      TextMode = "exact"
)

// TextCond matches stored text case-insensitively.
type TextCond struct {
	Mode  TextMode
	Value string
}

// NumberCond compares the stored value read as a decimal.
// Values that are not numeric never match.
type NumberCond struct {
	Op    Op
	Value decimal.Decimal
}

// SetCond matches when the lower-cased stored value is one of Values,
// or is none of them when Negate is set.
type SetCond struct {
	Values []string
	Negate bool
}

// SelectCond matches a select value stored either alone or inside a JSON list.
// Value is lower case.
type SelectCond struct {
	Value string
}

// DateCond compares the calendar date the stored value starts with.
type DateCond struct {
	Op   Op
	Date time.Time
}

// DateRangeCond matches dates within [From, To]; a nil bound is open.
type DateRangeCond struct {
	From *time.Time
	To   *time.Time
}

func (AnyValue) valueCond()      {}
func (TextCond) valueCond()      {}
func (NumberCond) valueCond()    {}
func (SetCond) valueCond()       {}
func (SelectCond) valueCond()    {}
func (DateCond) valueCond()      {}
func (DateRangeCond) valueCond() {}

// AllOf joins terms with And, collapsing the trivial cases.
func AllOf(terms ...Predicate) Predicate {
	return Simplify(And{Terms: terms})
}

// AnyOf joins terms with Or, collapsing the trivial cases.
func AnyOf(terms ...Predicate) Predicate {
	return Simplify(Or{Terms: terms})
}
