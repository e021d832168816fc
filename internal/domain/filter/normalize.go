package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"jobboard/internal/core/apperror"
	"jobboard/internal/core/types"
)

// NormalizeOption configures Normalize.
type NormalizeOption func(*normalizer)

// WithRelations declares the keys that denote many-to-many relations.
func WithRelations(names ...string) NormalizeOption {
	return func(n *normalizer) {
		for _, name := range names {
			n.relations[strings.ToLower(name)] = struct{}{}
		}
	}
}

type normalizer struct {
	relations map[string]struct{}
}

// Normalize converts the structured form into a condition tree.
//
// Accepted shapes are {field: value}, {and: [cond, ...]} and {or: [cond, ...]}.
// Unlike Parse, structural problems are reported as INVALID_FILTER errors.
// A leaf object with several keys is treated as the conjunction of its keys.
func Normalize(input map[string]any, opts ...NormalizeOption) (Node, error) {
	n := &normalizer{relations: make(map[string]struct{})}
	for _, opt := range opts {
		opt(n)
	}
	if len(input) == 0 {
		return nil, nil
	}
	if err := n.rootKeys(input); err != nil {
		return nil, err
	}
	return n.object(input)
}

// ParseJSON decodes and normalizes a structured filter. Numbers are kept exact.
func ParseJSON(data []byte, opts ...NormalizeOption) (Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var input map[string]any
	if err := dec.Decode(&input); err != nil {
		return nil, apperror.NewFilterValidation("json", "Filter must be a JSON object").WithCause(err)
	}
	return Normalize(input, opts...)
}

// rootKeys rejects list-valued top-level keys that are neither logical
// operators nor list-accepting leaves. Nested objects are not checked.
func (n *normalizer) rootKeys(obj map[string]any) error {
	for key, value := range obj {
		lk := strings.ToLower(key)
		if lk == "and" || lk == "or" || strings.HasPrefix(lk, AttributePrefix) || n.isRelation(lk) {
			continue
		}
		if _, isList := asList(value); isList {
			return apperror.NewFilterValidation("logical_operator",
				fmt.Sprintf("Invalid logical operator: '%s'. Only 'and' and 'or' are supported.", key)).
				WithDetail("key", key)
		}
	}
	return nil
}

func (n *normalizer) object(obj map[string]any) (Node, error) {
	var logicalKeys []string
	for key := range obj {
		lk := strings.ToLower(key)
		if lk == "and" || lk == "or" {
			logicalKeys = append(logicalKeys, key)
			continue
		}
	}

	switch len(logicalKeys) {
	case 0:
		return n.leaves(obj)
	case 1:
		return n.group(logicalKeys[0], obj[logicalKeys[0]])
	default:
		sort.Strings(logicalKeys)
		ops := map[string]bool{}
		for _, k := range logicalKeys {
			ops[strings.ToLower(k)] = true
		}
		if ops["and"] && ops["or"] {
			return nil, apperror.NewFilterValidation("mixed_operators",
				`Cannot use both "and" and "or" operations at the same level`)
		}
		return nil, apperror.NewFilterValidation("duplicate_operator",
			fmt.Sprintf("Logical operation '%s' is given more than once", strings.ToLower(logicalKeys[0])))
	}
}

func (n *normalizer) group(key string, value any) (Node, error) {
	opName := strings.ToLower(key)
	conditions, ok := asList(value)
	if !ok {
		return nil, apperror.NewFilterValidation("conditions_list",
			fmt.Sprintf("Conditions for '%s' operation must be an array", opName))
	}
	if len(conditions) < 2 {
		return nil, apperror.NewFilterValidation("min_conditions",
			fmt.Sprintf("At least 2 conditions are required for '%s' operation", opName))
	}

	children := make([]Node, 0, len(conditions))
	for _, c := range conditions {
		obj, ok := c.(map[string]any)
		if !ok {
			return nil, apperror.NewFilterValidation("condition_object", "Each condition must be an array")
		}
		child, err := n.object(obj)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	op := And
	if opName == "or" {
		op = Or
	}
	return NewGroup(op, children...), nil
}

func (n *normalizer) leaves(obj map[string]any) (Node, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nodes := make([]Node, 0, len(keys))
	for _, k := range keys {
		nodes = append(nodes, n.leaf(k, obj[k]))
	}
	return NewGroup(And, nodes...), nil
}

func (n *normalizer) leaf(key string, value any) Node {
	lk := strings.ToLower(key)
	switch {
	case strings.HasPrefix(lk, AttributePrefix):
		return attributeLeaf(key[len(AttributePrefix):], value)
	case n.isRelation(lk):
		return relationshipLeaf(lk, value)
	default:
		return standardLeaf(key, value)
	}
}

func (n *normalizer) isRelation(name string) bool {
	_, ok := n.relations[name]
	return ok
}

// standardLeaf accepts a scalar, an {operator, value} object or a range object.
// An unknown operator drops the condition.
func standardLeaf(field string, value any) Node {
	node := &Standard{Field: field, Operator: Equal, Value: value}
	obj, ok := value.(map[string]any)
	if !ok {
		return node
	}
	if raw, has := obj["operator"]; has {
		op, ok := ParseComparison(types.Stringify(raw))
		if !ok {
			return nil
		}
		node.Operator = op
	}
	if v, has := obj["value"]; has {
		node.Value = v
	} else {
		node.Value = without(obj, "operator")
	}
	return node
}

func attributeLeaf(name string, value any) Node {
	node := &Attribute{Name: name, Operator: Equal, Value: value}
	obj, ok := value.(map[string]any)
	if !ok {
		return node
	}
	if raw, has := obj["operator"]; has {
		op, ok := ParseComparison(types.Stringify(raw))
		if !ok {
			return nil
		}
		node.Operator = op
	}
	if raw, has := obj["mode"]; has {
		node.Mode = strings.ToLower(types.Stringify(raw))
	}
	rest := without(obj, "operator", "mode")
	if v, has := rest["value"]; has && len(rest) == 1 {
		node.Value = v
	} else if vs, has := rest["values"]; has && len(rest) == 1 {
		node.Value = vs
	} else {
		node.Value = rest
	}
	return node
}

func relationshipLeaf(relation string, value any) Node {
	node := &Relationship{Relation: relation, Mode: ModeHasAny}
	switch v := value.(type) {
	case nil:
	case map[string]any:
		if raw, has := v["mode"]; has {
			node.Mode = strings.ToLower(strings.TrimSpace(types.Stringify(raw)))
		}
		if raw, has := v["field"]; has {
			node.Field = strings.ToLower(strings.TrimSpace(types.Stringify(raw)))
		}
		node.Values = stringValues(v["values"])
		if node.Values == nil {
			node.Values = stringValues(v["value"])
		}
	default:
		node.Values = stringValues(v)
	}
	return node
}

func stringValues(v any) []string {
	if v == nil {
		return nil
	}
	items, ok := asList(v)
	if !ok {
		items = []any{v}
	}
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(types.Stringify(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asList reports whether v holds list data and returns it as []any.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	}
	return nil, false
}

func without(obj map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
