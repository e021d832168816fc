package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/core/apperror"
)

var relations = WithRelations("languages", "locations", "categories")

func TestNormalize_Nested(t *testing.T) {
	n, err := ParseJSON([]byte(`{
		"and": [
			{"job_type": "full-time"},
			{"or": [
				{"languages": {"mode": "has_any", "values": ["PHP", " Go "]}},
				{"attribute:years_experience": {"operator": ">=", "value": 3}}
			]}
		]
	}`), relations)
	require.NoError(t, err)

	root, ok := n.(*Group)
	require.True(t, ok)
	assert.Equal(t, And, root.Op)
	assert.Equal(t, &Standard{Field: "job_type", Operator: Equal, Value: "full-time"}, root.Children[0])

	or, ok := root.Children[1].(*Group)
	require.True(t, ok)
	assert.Equal(t, Or, or.Op)
	assert.Equal(t, &Relationship{Relation: "languages", Mode: ModeHasAny, Values: []string{"PHP", "Go"}}, or.Children[0])
	assert.Equal(t, &Attribute{Name: "years_experience", Operator: GreaterOrEqual, Value: json.Number("3")}, or.Children[1])
}

func TestNormalize_NestedRelationList(t *testing.T) {
	n, err := ParseJSON([]byte(`{"and": [{"languages": ["PHP"]}, {"job_type": "full-time"}]}`), relations)
	require.NoError(t, err)

	root, ok := n.(*Group)
	require.True(t, ok)
	require.Len(t, root.Children, 2)
	assert.Equal(t, &Relationship{Relation: "languages", Mode: ModeHasAny, Values: []string{"PHP"}}, root.Children[0])
	assert.Equal(t, &Standard{Field: "job_type", Operator: Equal, Value: "full-time"}, root.Children[1])
}

func TestNormalize_TopLevelRelationList(t *testing.T) {
	n, err := ParseJSON([]byte(`{"languages": ["PHP", "Go"]}`), relations)
	require.NoError(t, err)
	assert.Equal(t, &Relationship{Relation: "languages", Mode: ModeHasAny, Values: []string{"PHP", "Go"}}, n)
}

func TestNormalize_CaseInsensitiveKeys(t *testing.T) {
	n, err := Normalize(map[string]any{
		"OR": []any{
			map[string]any{"status": "draft"},
			map[string]any{"status": "archived"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Or, n.(*Group).Op)
}

func TestNormalize_Leaves(t *testing.T) {
	n, err := Normalize(map[string]any{
		"salary":               map[string]any{"min": 1000, "max": 2000},
		"attribute:skills":     map[string]any{"mode": "ALL", "value": []any{"go", "sql"}},
		"attribute:benefits":   map[string]any{"mode": "starts_with", "value": "health"},
		"locations":            map[string]any{"mode": "=", "values": []any{"Berlin"}, "field": "City"},
		"categories":           "Engineering",
		"attribute:start_date": map[string]any{"from": "2024-01-01", "to": "2024-01-31"},
	}, relations)
	require.NoError(t, err)

	root := n.(*Group)
	require.Len(t, root.Children, 6)
	// keys are visited in sorted order
	assert.Equal(t, &Attribute{Name: "benefits", Operator: Equal, Mode: "starts_with", Value: "health"}, root.Children[0])
	assert.Equal(t, &Attribute{Name: "skills", Operator: Equal, Mode: "all", Value: []any{"go", "sql"}}, root.Children[1])
	assert.Equal(t, &Attribute{Name: "start_date", Operator: Equal, Value: map[string]any{"from": "2024-01-01", "to": "2024-01-31"}}, root.Children[2])
	assert.Equal(t, &Relationship{Relation: "categories", Mode: ModeHasAny, Values: []string{"Engineering"}}, root.Children[3])
	assert.Equal(t, &Relationship{Relation: "locations", Mode: ModeExact, Field: "city", Values: []string{"Berlin"}}, root.Children[4])
	assert.Equal(t, &Standard{Field: "salary", Operator: Equal, Value: map[string]any{"min": 1000, "max": 2000}}, root.Children[5])
}

func TestNormalize_UnknownOperatorDropsLeaf(t *testing.T) {
	n, err := Normalize(map[string]any{"title": map[string]any{"operator": "~~", "value": "x"}})
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestNormalize_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rule  string
		msg   string
	}{
		{
			name:  "both operators",
			input: `{"and": [{"a":1},{"b":2}], "or": [{"a":1},{"b":2}]}`,
			rule:  "mixed_operators",
			msg:   `Cannot use both "and" and "or" operations at the same level`,
		},
		{
			name:  "logical value not a list",
			input: `{"and": {"a": 1}}`,
			rule:  "conditions_list",
			msg:   "Conditions for 'and' operation must be an array",
		},
		{
			name:  "single condition",
			input: `{"or": [{"a": 1}]}`,
			rule:  "min_conditions",
			msg:   "At least 2 conditions are required for 'or' operation",
		},
		{
			name:  "non object entry",
			input: `{"and": [{"a": 1}, "b=2"]}`,
			rule:  "condition_object",
			msg:   "Each condition must be an array",
		},
		{
			name:  "unknown grouping key",
			input: `{"xor": [{"a": 1}, {"b": 2}]}`,
			rule:  "logical_operator",
			msg:   "Invalid logical operator: 'xor'. Only 'and' and 'or' are supported.",
		},
		{
			name:  "nested violation",
			input: `{"and": [{"a": 1}, {"or": [{"b": 2}]}]}`,
			rule:  "min_conditions",
			msg:   "At least 2 conditions are required for 'or' operation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input), relations)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidFilter, appErr.Code)
			assert.Equal(t, tt.rule, appErr.Details["rule"])
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestParseJSON_Empty(t *testing.T) {
	for _, in := range []string{"", "null", "{}"} {
		n, err := ParseJSON([]byte(in))
		assert.NoError(t, err)
		assert.Nil(t, n)
	}

	_, err := ParseJSON([]byte(`[1,2]`))
	assert.True(t, apperror.IsFilterValidation(err))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	err := Validate(&Group{Op: And, Children: []Node{&Standard{Field: "a"}}})
	assert.True(t, apperror.IsFilterValidation(err))
	err = Validate(&Group{Op: "XOR", Children: []Node{&Standard{Field: "a"}, &Standard{Field: "b"}}})
	assert.True(t, apperror.IsFilterValidation(err))
}
