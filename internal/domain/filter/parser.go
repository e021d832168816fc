package filter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"jobboard/internal/core/apperror"
	"jobboard/internal/core/types"
)

var (
	attributePattern    = regexp.MustCompile(`(?i)^attribute:([a-z0-9_]+)\s*(LIKE\b|[=!<>]+)\s*(.+)$`)
	relationshipPattern = regexp.MustCompile(`(?i)^([a-z_][a-z0-9_]*)(?:\.(city|state|country))?\s+(HAS_ANY|IS_ANY|EXISTS|NONE)(?:\s*\((.*)\))?$`)
	exactSetPattern     = regexp.MustCompile(`(?i)^([a-z_][a-z0-9_]*)(?:\.(city|state|country))?\s*=\s*\((.*)\)$`)
	likePattern         = regexp.MustCompile(`(?i)^([a-z0-9_]+)\s+LIKE\s+(.+)$`)
	comparisonPattern   = regexp.MustCompile(`(?i)^([a-z0-9_]+)\s*([=!<>]+)\s*(.+)$`)
	numberPattern       = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

// Parse turns a filter expression into a condition tree.
//
// OR binds looser than AND and parentheses group. Fragments that match no
// known form are dropped, so most malformed input yields a smaller tree or
// nil rather than an error. Blank input returns nil. An error is returned
// only when the parentheses are unbalanced and nothing could be extracted.
func Parse(text string) (Node, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	n := parseExpression(text)
	if n == nil {
		if pos := unbalancedAt(text); pos >= 0 {
			return nil, apperror.NewFilterSyntax("Unbalanced parentheses in filter expression", pos)
		}
	}
	return n, nil
}

func parseExpression(text string) Node {
	if inner, ok := stripEnclosing(text); ok {
		text = inner
	}

	var alternatives []Node
	for _, orPart := range splitTopLevel(text, "OR") {
		var terms []Node
		for _, andPart := range splitTopLevel(orPart, "AND") {
			terms = append(terms, parseFragment(andPart))
		}
		alternatives = append(alternatives, NewGroup(And, terms...))
	}
	return NewGroup(Or, alternatives...)
}

func parseFragment(frag string) Node {
	frag = strings.TrimSpace(frag)
	if frag == "" {
		return nil
	}
	if inner, ok := stripEnclosing(frag); ok {
		return parseExpression(inner)
	}

	if m := attributePattern.FindStringSubmatch(frag); m != nil {
		op, ok := dslOperator(m[2])
		if !ok {
			return nil
		}
		name := m[1]
		value := parseValue(m[3])
		if looksBoolean(name) {
			if b, ok := types.ParseBool(value); ok {
				value = b
			}
		}
		return &Attribute{Name: name, Operator: op, Value: value}
	}

	if m := relationshipPattern.FindStringSubmatch(frag); m != nil {
		return &Relationship{
			Relation: strings.ToLower(m[1]),
			Field:    strings.ToLower(m[2]),
			Mode:     strings.ToLower(m[3]),
			Values:   splitValues(m[4]),
		}
	}
	if m := exactSetPattern.FindStringSubmatch(frag); m != nil {
		return &Relationship{
			Relation: strings.ToLower(m[1]),
			Field:    strings.ToLower(m[2]),
			Mode:     ModeExact,
			Values:   splitValues(m[3]),
		}
	}

	if m := likePattern.FindStringSubmatch(frag); m != nil {
		return &Standard{Field: m[1], Operator: Like, Value: unquote(strings.TrimSpace(m[2]))}
	}

	if m := comparisonPattern.FindStringSubmatch(frag); m != nil {
		op, ok := dslOperator(m[2])
		if !ok {
			return nil
		}
		return &Standard{Field: m[1], Operator: op, Value: parseValue(m[3])}
	}

	return nil
}

// dslOperator accepts only the symbolic comparisons and LIKE.
func dslOperator(tok string) (ComparisonType, bool) {
	if strings.EqualFold(tok, "like") {
		return Like, true
	}
	op, ok := ParseComparison(tok)
	if !ok || op == InList || op == NotInList {
		return "", false
	}
	return op, true
}

// parseValue unquotes a literal and coerces booleans and numbers.
// Quoted literals always stay strings.
func parseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if s, quoted := unquoteOK(raw); quoted {
		return s
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if numberPattern.MatchString(raw) {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func unquote(s string) string {
	v, _ := unquoteOK(s)
	return v
}

func unquoteOK(s string) (string, bool) {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}

func splitValues(list string) []string {
	var out []string
	for _, v := range strings.Split(list, ",") {
		v = strings.TrimSpace(unquote(strings.TrimSpace(v)))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// looksBoolean reports attribute names conventionally holding flags.
func looksBoolean(name string) bool {
	name = strings.ToLower(name)
	return name == "requires_degree" ||
		strings.HasSuffix(name, "_required") ||
		strings.HasPrefix(name, "is_") ||
		strings.HasPrefix(name, "has_")
}

// stripEnclosing removes one pair of parentheses that wraps the whole text.
func stripEnclosing(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || text[0] != '(' || text[len(text)-1] != ')' {
		return text, false
	}
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"', '\'':
			if end := quoteEnd(text, i); end > 0 {
				i = end
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return text, false
			}
			if depth == 0 && i != len(text)-1 {
				return text, false
			}
		}
	}
	if depth != 0 {
		return text, false
	}
	return strings.TrimSpace(text[1 : len(text)-1]), true
}

// splitTopLevel splits on a whitespace-delimited keyword outside brackets and quotes.
func splitTopLevel(text, keyword string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"', '\'':
			if end := quoteEnd(text, i); end > 0 {
				i = end
			}
			continue
		case '(':
			depth++
			continue
		case ')':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth != 0 || i == 0 || !isSpace(text[i-1]) {
			continue
		}
		end := i + len(keyword)
		if end < len(text) && isSpace(text[end]) && strings.EqualFold(text[i:end], keyword) {
			parts = append(parts, text[start:i])
			start = end
			i = end
		}
	}
	return append(parts, text[start:])
}

// unbalancedAt returns the offset of the first unmatched parenthesis or -1.
func unbalancedAt(text string) int {
	var open []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"', '\'':
			if end := quoteEnd(text, i); end > 0 {
				i = end
			}
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				return i
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return open[0]
	}
	return -1
}

// quoteEnd returns the offset of the quote closing the one at i, or -1 when
// the character at i is a literal apostrophe or quote. A quote opens only at
// the start of a token and closes only before whitespace, ')', ',' or the end.
func quoteEnd(text string, i int) int {
	q := text[i]
	if i > 0 && !isSpace(text[i-1]) && !strings.ContainsRune("(,=<>!", rune(text[i-1])) {
		return -1
	}
	for j := i + 1; j < len(text); j++ {
		if text[j] != q {
			continue
		}
		if j+1 == len(text) || isSpace(text[j+1]) || text[j+1] == ')' || text[j+1] == ',' {
			return j
		}
	}
	return -1
}

func isSpace(c byte) bool {
	return unicode.IsSpace(rune(c))
}
