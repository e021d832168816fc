package filter

import (
	"fmt"
	"sort"
	"strings"

	"jobboard/internal/core/apperror"
	"jobboard/internal/core/types"
)

// Node is a condition tree node. The set of implementations is closed:
// *Standard, *Relationship, *Attribute and *Group.
type Node interface {
	node()
}

// Standard compares a fixed field of the job post.
type Standard struct {
	Field    string
	Operator ComparisonType
	Value    any
}

// Relationship tests membership in a many-to-many relation.
type Relationship struct {
	Relation string
	Mode     string
	Values   []string
	// Field selects the column names are matched against (locations only).
	Field string
}

// Attribute compares a dynamic EAV attribute.
type Attribute struct {
	Name     string
	Operator ComparisonType
	// Value is a scalar, or a map carrying a range ({min,max}, {from,to}) or mode options.
	Value any
	Mode  string
}

// Group combines at least two children with one logical operator.
type Group struct {
	Op       LogicalOp
	Children []Node
}

func (*Standard) node()     {}
func (*Relationship) node() {}
func (*Attribute) node()    {}
func (*Group) node()        {}

// NewGroup builds a group from the non-nil children.
// A single child is returned as is and no children yield nil.
func NewGroup(op LogicalOp, children ...Node) Node {
	kept := children[:0:0]
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &Group{Op: op, Children: kept}
}

// Validate checks the structural invariants of a tree.
func Validate(n Node) error {
	switch v := n.(type) {
	case nil:
		return nil
	case *Group:
		if v.Op != And && v.Op != Or {
			return apperror.NewFilterValidation("logical_operator",
				fmt.Sprintf("Invalid logical operator: '%s'. Only 'and' and 'or' are supported.", v.Op))
		}
		if len(v.Children) < 2 {
			return apperror.NewFilterValidation("min_conditions",
				fmt.Sprintf("At least 2 conditions are required for '%s' operation", strings.ToLower(string(v.Op))))
		}
		for _, c := range v.Children {
			if c == nil {
				return apperror.NewFilterValidation("condition_object", "Each condition must be an array")
			}
			if err := Validate(c); err != nil {
				return err
			}
		}
	case *Relationship:
		if v.Relation == "" {
			return apperror.NewFilterValidation("relation", "Relationship condition requires a relation name")
		}
	case *Standard:
		if v.Field == "" {
			return apperror.NewFilterValidation("field", "Condition requires a field name")
		}
	case *Attribute:
		if v.Name == "" {
			return apperror.NewFilterValidation("attribute", "Attribute condition requires a name")
		}
	}
	return nil
}

// Describe renders a tree in DSL-like notation.
func Describe(n Node) string {
	var b strings.Builder
	describe(&b, n, false)
	return b.String()
}

func describe(b *strings.Builder, n Node, nested bool) {
	switch v := n.(type) {
	case nil:
		b.WriteString("<none>")
	case *Group:
		if nested {
			b.WriteByte('(')
		}
		for i, c := range v.Children {
			if i > 0 {
				b.WriteString(" " + string(v.Op) + " ")
			}
			describe(b, c, true)
		}
		if nested {
			b.WriteByte(')')
		}
	case *Standard:
		fmt.Fprintf(b, "%s %s %s", v.Field, v.Operator, describeValue(v.Value))
	case *Relationship:
		mode := strings.ToUpper(v.Mode)
		if v.Field != "" {
			fmt.Fprintf(b, "%s.%s %s", v.Relation, v.Field, mode)
		} else {
			fmt.Fprintf(b, "%s %s", v.Relation, mode)
		}
		if len(v.Values) > 0 {
			fmt.Fprintf(b, " (%s)", strings.Join(v.Values, ","))
		}
	case *Attribute:
		fmt.Fprintf(b, "%s%s %s %s", AttributePrefix, v.Name, v.Operator, describeValue(v.Value))
		if v.Mode != "" {
			fmt.Fprintf(b, " [%s]", v.Mode)
		}
	}
}

func describeValue(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+":"+types.Stringify(t[k]))
		}
		return "{" + strings.Join(parts, ",") + "}"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, types.Stringify(e))
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return types.Stringify(v)
	}
}
