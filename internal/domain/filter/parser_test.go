package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/core/apperror"
)

func TestParse_ExampleScenario(t *testing.T) {
	n, err := Parse("(job_type=full-time AND languages HAS_ANY (PHP,JavaScript)) AND locations IS_ANY (New York,Remote) AND attribute:years_experience>=3")
	require.NoError(t, err)

	root, ok := n.(*Group)
	require.True(t, ok)
	assert.Equal(t, And, root.Op)
	require.Len(t, root.Children, 3)

	inner, ok := root.Children[0].(*Group)
	require.True(t, ok)
	assert.Equal(t, And, inner.Op)
	assert.Equal(t, &Standard{Field: "job_type", Operator: Equal, Value: "full-time"}, inner.Children[0])
	assert.Equal(t, &Relationship{Relation: "languages", Mode: ModeHasAny, Values: []string{"PHP", "JavaScript"}}, inner.Children[1])

	assert.Equal(t, &Relationship{Relation: "locations", Mode: ModeIsAny, Values: []string{"New York", "Remote"}}, root.Children[1])
	assert.Equal(t, &Attribute{Name: "years_experience", Operator: GreaterOrEqual, Value: int64(3)}, root.Children[2])

	require.NoError(t, Validate(n))
}

func TestParse_Precedence(t *testing.T) {
	n, err := Parse("status=published AND is_remote=true OR job_type=contract")
	require.NoError(t, err)

	root, ok := n.(*Group)
	require.True(t, ok)
	assert.Equal(t, Or, root.Op)
	require.Len(t, root.Children, 2)

	first, ok := root.Children[0].(*Group)
	require.True(t, ok)
	assert.Equal(t, And, first.Op)
	assert.Equal(t, &Standard{Field: "is_remote", Operator: Equal, Value: true}, first.Children[1])
	assert.Equal(t, &Standard{Field: "job_type", Operator: Equal, Value: "contract"}, root.Children[1])
}

func TestParse_BracketsProtectKeywords(t *testing.T) {
	n, err := Parse(`locations IS_ANY (Portland OR Bend, Salem AND Eugene) OR title LIKE "Go AND Rust"`)
	require.NoError(t, err)

	root, ok := n.(*Group)
	require.True(t, ok)
	require.Len(t, root.Children, 2)
	assert.Equal(t, []string{"Portland OR Bend", "Salem AND Eugene"}, root.Children[0].(*Relationship).Values)
	assert.Equal(t, &Standard{Field: "title", Operator: Like, Value: "Go AND Rust"}, root.Children[1])
}

func TestParse_Fragments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Node
	}{
		{"not equal", "status!=draft", &Standard{Field: "status", Operator: NotEqual, Value: "draft"}},
		{"spaces around op", "salary_min >= 50000", &Standard{Field: "salary_min", Operator: GreaterOrEqual, Value: int64(50000)}},
		{"float", "salary_max<1.5", &Standard{Field: "salary_max", Operator: Less, Value: 1.5}},
		{"quoted stays string", `title="10"`, &Standard{Field: "title", Operator: Equal, Value: "10"}},
		{"bool any case", "is_remote=FALSE", &Standard{Field: "is_remote", Operator: Equal, Value: false}},
		{"like", "description LIKE backend", &Standard{Field: "description", Operator: Like, Value: "backend"}},
		{"attribute like", "attribute:benefits LIKE dental", &Attribute{Name: "benefits", Operator: Like, Value: "dental"}},
		{"exists", "categories EXISTS", &Relationship{Relation: "categories", Mode: ModeExists}},
		{"exact set", "languages = (Go, Rust)", &Relationship{Relation: "languages", Mode: ModeExact, Values: []string{"Go", "Rust"}}},
		{"location field", "locations.country HAS_ANY (USA)", &Relationship{Relation: "locations", Field: "country", Mode: ModeHasAny, Values: []string{"USA"}}},
		{"none", "languages NONE (COBOL)", &Relationship{Relation: "languages", Mode: ModeNone, Values: []string{"COBOL"}}},
		{"boolean named attribute", "attribute:requires_degree=1", &Attribute{Name: "requires_degree", Operator: Equal, Value: true}},
		{"boolean suffix attribute", "attribute:visa_required=yes", &Attribute{Name: "visa_required", Operator: Equal, Value: true}},
		{"plain attribute keeps number", "attribute:level=1", &Attribute{Name: "level", Operator: Equal, Value: int64(1)}},
		{"redundant parens", "((status=draft))", &Standard{Field: "status", Operator: Equal, Value: "draft"}},
		{"flag prefix attribute", "attribute:is_senior=true", &Attribute{Name: "is_senior", Operator: Equal, Value: true}},
		{"inner is_ keeps number", "attribute:analysis_level=1", &Attribute{Name: "analysis_level", Operator: Equal, Value: int64(1)}},
		{"inner has_ keeps number", "attribute:purchase_limit=0", &Attribute{Name: "purchase_limit", Operator: Equal, Value: int64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Apostrophes(t *testing.T) {
	n, err := Parse("company_name LIKE O'Reilly AND status=published")
	require.NoError(t, err)
	root, ok := n.(*Group)
	require.True(t, ok)
	require.Len(t, root.Children, 2)
	assert.Equal(t, &Standard{Field: "company_name", Operator: Like, Value: "O'Reilly"}, root.Children[0])
	assert.Equal(t, &Standard{Field: "status", Operator: Equal, Value: "published"}, root.Children[1])

	n, err = Parse("company_name='O'Reilly Media' OR locations IS_ANY (Land's End,Remote)")
	require.NoError(t, err)
	root, ok = n.(*Group)
	require.True(t, ok)
	require.Len(t, root.Children, 2)
	assert.Equal(t, &Standard{Field: "company_name", Operator: Equal, Value: "O'Reilly Media"}, root.Children[0])
	assert.Equal(t, []string{"Land's End", "Remote"}, root.Children[1].(*Relationship).Values)

	// an apostrophe inside a bracketed list does not hide the closing bracket
	assert.Equal(t, -1, unbalancedAt("(title LIKE Bob's) AND (status=draft)"))
}

func TestParse_DropsUnrecognized(t *testing.T) {
	for _, in := range []string{"invalid syntax", "title INVALID_OPERATOR value", "=>", "   "} {
		n, err := Parse(in)
		assert.NoError(t, err, in)
		assert.Nil(t, n, in)
	}

	n, err := Parse("garbage words AND status=draft")
	require.NoError(t, err)
	assert.Equal(t, &Standard{Field: "status", Operator: Equal, Value: "draft"}, n)

	// unknown fields still parse, the compiler decides what to do with them
	n, err = Parse("invalid_field=value")
	require.NoError(t, err)
	assert.Equal(t, &Standard{Field: "invalid_field", Operator: Equal, Value: "value"}, n)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("(((")
	require.Error(t, err)
	assert.True(t, apperror.IsFilterSyntax(err))

	// unbalanced input that still yields fragments is tolerated
	n, err := Parse("status=draft AND (")
	require.NoError(t, err)
	assert.NotNil(t, n)
}

func TestStripEnclosing(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		strip bool
	}{
		{"(a=1)", "a=1", true},
		{"(a=1) AND (b=2)", "(a=1) AND (b=2)", false},
		{"((a=1) OR b=2)", "(a=1) OR b=2", true},
		{"(a=\")\")", "a=\")\"", true},
		{"(a=1", "(a=1", false},
	}
	for _, tt := range tests {
		got, ok := stripEnclosing(tt.in)
		assert.Equal(t, tt.strip, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDescribe(t *testing.T) {
	n, err := Parse("status=draft AND (languages HAS_ANY (Go) OR attribute:level>2)")
	require.NoError(t, err)
	assert.Equal(t, `status = "draft" AND (languages HAS_ANY (Go) OR attribute:level > 2)`, Describe(n))
	assert.Equal(t, "<none>", Describe(nil))
}
