package filter

import "strings"

// ComparisonType is the comparison operator of a leaf condition.
type ComparisonType string

const (
	Equal          ComparisonType = "="
	NotEqual       ComparisonType = "!="
	Greater        ComparisonType = ">"
	Less           ComparisonType = "<"
	GreaterOrEqual ComparisonType = ">="
	LessOrEqual    ComparisonType = "<="
	Like           ComparisonType = "like" // case-insensitive substring
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "not_in"
)

// comparisonAliases maps the word forms accepted in structured input.
var comparisonAliases = map[string]ComparisonType{
	"=":        Equal,
	"==":       Equal,
	"eq":       Equal,
	"!=":       NotEqual,
	"<>":       NotEqual,
	"neq":      NotEqual,
	">":        Greater,
	"gt":       Greater,
	"<":        Less,
	"lt":       Less,
	">=":       GreaterOrEqual,
	"gte":      GreaterOrEqual,
	"<=":       LessOrEqual,
	"lte":      LessOrEqual,
	"like":     Like,
	"contains": Like,
	"in":       InList,
	"not_in":   NotInList,
	"nin":      NotInList,
}

// ParseComparison normalizes an operator token. ok is false for unknown operators.
func ParseComparison(s string) (ComparisonType, bool) {
	op, ok := comparisonAliases[strings.ToLower(strings.TrimSpace(s))]
	return op, ok
}

// IsOrdering reports whether the operator compares by order rather than equality.
func (c ComparisonType) IsOrdering() bool {
	switch c {
	case Greater, Less, GreaterOrEqual, LessOrEqual:
		return true
	}
	return false
}

// LogicalOp joins the children of a Group.
type LogicalOp string

const (
	And LogicalOp = "AND"
	Or  LogicalOp = "OR"
)

// Membership modes of a relationship condition.
const (
	ModeHasAny = "has_any"
	ModeIsAny  = "is_any"
	ModeExact  = "="
	ModeExists = "exists"
	ModeNone   = "none"
)

// IsMembershipMode reports whether mode is one of the recognized membership modes.
func IsMembershipMode(mode string) bool {
	switch mode {
	case ModeHasAny, ModeIsAny, ModeExact, ModeExists, ModeNone:
		return true
	}
	return false
}

// AttributePrefix marks an EAV attribute reference in both input forms.
const AttributePrefix = "attribute:"
