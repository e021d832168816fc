package sqlfilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"jobboard/internal/domain/predicate"
)

// Translator turns predicates into squirrel conditions. Placeholders are
// emitted as "?" so the enclosing builder decides their format.
type Translator struct {
	schema Schema
}

// New creates a translator for schema.
func New(schema Schema) *Translator {
	return &Translator{schema: schema}
}

// Where translates p. The tree is simplified first, so Pass yields a
// condition that is always true.
func (t *Translator) Where(p predicate.Predicate) (squirrel.Sqlizer, error) {
	return t.translate(predicate.Simplify(p))
}

func (t *Translator) translate(p predicate.Predicate) (squirrel.Sqlizer, error) {
	switch v := p.(type) {
	case nil, predicate.Pass:
		return squirrel.Expr("TRUE"), nil
	case predicate.Never:
		return squirrel.Expr("FALSE"), nil
	case predicate.And:
		parts, err := t.translateAll(v.Terms)
		if err != nil {
			return nil, err
		}
		return squirrel.And(parts), nil
	case predicate.Or:
		parts, err := t.translateAll(v.Terms)
		if err != nil {
			return nil, err
		}
		return squirrel.Or(parts), nil
	case predicate.Not:
		inner, err := t.translate(v.Term)
		if err != nil {
			return nil, err
		}
		return not{inner}, nil
	case predicate.Compare:
		return t.compare(v)
	case predicate.FieldIn:
		col, ok := t.schema.column(v.Field)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", v.Field)
		}
		if v.Negate {
			return squirrel.NotEq{col: v.Values}, nil
		}
		return squirrel.Eq{col: v.Values}, nil
	case predicate.FieldLike:
		col, ok := t.schema.column(v.Field)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", v.Field)
		}
		return squirrel.ILike{col: "%" + EscapeLike(v.Substring) + "%"}, nil
	case predicate.RelationCount:
		return t.relationCount(v)
	case predicate.AttrMatch:
		return t.attrMatch(v)
	}
	return nil, fmt.Errorf("unsupported predicate %T", p)
}

func (t *Translator) translateAll(terms []predicate.Predicate) ([]squirrel.Sqlizer, error) {
	out := make([]squirrel.Sqlizer, 0, len(terms))
	for _, term := range terms {
		s, err := t.translate(term)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (t *Translator) compare(c predicate.Compare) (squirrel.Sqlizer, error) {
	col, ok := t.schema.column(c.Field)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", c.Field)
	}
	switch c.Op {
	case predicate.Eq:
		return squirrel.Eq{col: c.Value}, nil
	case predicate.Ne:
		return squirrel.NotEq{col: c.Value}, nil
	case predicate.Gt:
		return squirrel.Gt{col: c.Value}, nil
	case predicate.Lt:
		return squirrel.Lt{col: c.Value}, nil
	case predicate.Ge:
		return squirrel.GtOrEq{col: c.Value}, nil
	case predicate.Le:
		return squirrel.LtOrEq{col: c.Value}, nil
	}
	return nil, fmt.Errorf("unsupported operator %q", c.Op)
}

// relationCount renders EXISTS for the common "at least one" and "none"
// shapes and a correlated count otherwise.
func (t *Translator) relationCount(c predicate.RelationCount) (squirrel.Sqlizer, error) {
	pivot, ok := t.schema.Pivots[c.Relation]
	if !ok {
		return nil, fmt.Errorf("unknown relation %q", c.Relation)
	}

	where := fmt.Sprintf("p.%s = %s", pivot.OwnerKey, t.schema.key())
	var args []any
	if c.IDs != nil {
		if c.Outside {
			where += fmt.Sprintf(" AND NOT (p.%s = ANY(?))", pivot.RelatedKey)
		} else {
			where += fmt.Sprintf(" AND p.%s = ANY(?)", pivot.RelatedKey)
		}
		args = append(args, c.IDs)
	}
	from := fmt.Sprintf("FROM %s p WHERE %s", pivot.Table, where)

	switch {
	case c.Op == predicate.CountGe && c.N == 1:
		return squirrel.Expr("EXISTS (SELECT 1 "+from+")", args...), nil
	case c.Op == predicate.CountEq && c.N == 0:
		return squirrel.Expr("NOT EXISTS (SELECT 1 "+from+")", args...), nil
	case c.Op == predicate.CountGe && c.N <= 0:
		return squirrel.Expr("TRUE"), nil
	}
	return squirrel.Expr(fmt.Sprintf("(SELECT COUNT(*) %s) %s ?", from, c.Op), append(args, c.N)...), nil
}

func (t *Translator) attrMatch(m predicate.AttrMatch) (squirrel.Sqlizer, error) {
	cond, args, err := valueCondition(m.Cond)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf("EXISTS (SELECT 1 FROM %s v WHERE v.job_post_id = %s AND v.attribute_id = ?",
		t.schema.ValuesTable, t.schema.key())
	if cond != "" {
		sql += " AND " + cond
	}
	return squirrel.Expr(sql+")", append([]any{m.AttributeID}, args...)...), nil
}

// valueCondition renders a condition on the stored value column v.value.
func valueCondition(cond predicate.ValueCond) (string, []any, error) {
	switch c := cond.(type) {
	case nil, predicate.AnyValue:
		return "", nil, nil
	case predicate.TextCond:
		v := EscapeLike(c.Value)
		switch c.Mode {
		case predicate.TextExact:
			return "LOWER(v.value) = LOWER(?)", []any{c.Value}, nil
		case predicate.TextStartsWith:
			return "v.value ILIKE ?", []any{v + "%"}, nil
		case predicate.TextEndsWith:
			return "v.value ILIKE ?", []any{"%" + v}, nil
		default:
			return "v.value ILIKE ?", []any{"%" + v + "%"}, nil
		}
	case predicate.NumberCond:
		op, err := sqlOp(c.Op)
		if err != nil {
			return "", nil, err
		}
		return "jobboard_try_numeric(v.value) " + op + " ?", []any{c.Value}, nil
	case predicate.SetCond:
		if c.Negate {
			return "NOT (LOWER(v.value) = ANY(?))", []any{c.Values}, nil
		}
		return "LOWER(v.value) = ANY(?)", []any{c.Values}, nil
	case predicate.SelectCond:
		return "(LOWER(v.value) = ? OR LOWER(v.value) LIKE ?)",
			[]any{c.Value, `%"` + EscapeLike(c.Value) + `"%`}, nil
	case predicate.DateCond:
		op, err := sqlOp(c.Op)
		if err != nil {
			return "", nil, err
		}
		return "jobboard_try_date(v.value) " + op + " ?::date", []any{dateArg(c.Date)}, nil
	case predicate.DateRangeCond:
		var parts []string
		var args []any
		if c.From != nil {
			parts = append(parts, "jobboard_try_date(v.value) >= ?::date")
			args = append(args, dateArg(*c.From))
		}
		if c.To != nil {
			parts = append(parts, "jobboard_try_date(v.value) <= ?::date")
			args = append(args, dateArg(*c.To))
		}
		if len(parts) == 0 {
			return "jobboard_try_date(v.value) IS NOT NULL", nil, nil
		}
		return strings.Join(parts, " AND "), args, nil
	}
	return "", nil, fmt.Errorf("unsupported value condition %T", cond)
}

func sqlOp(op predicate.Op) (string, error) {
	switch op {
	case predicate.Eq:
		return "=", nil
	case predicate.Ne:
		return "<>", nil
	case predicate.Gt, predicate.Lt, predicate.Ge, predicate.Le:
		return string(op), nil
	}
	return "", fmt.Errorf("unsupported operator %q", op)
}

func dateArg(t time.Time) string {
	return t.Format(time.DateOnly)
}

// EscapeLike escapes the LIKE wildcards of s using the default backslash escape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// not negates a condition. NULL reads as false first so that negation keeps
// two-valued semantics.
type not struct {
	inner squirrel.Sqlizer
}

func (n not) ToSql() (string, []any, error) {
	sql, args, err := n.inner.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "NOT COALESCE(" + sql + ", FALSE)", args, nil
}

// SelectIDs renders the query selecting the keys of every row matching p,
// with PostgreSQL placeholders. It is what the explain endpoint shows.
func (t *Translator) SelectIDs(p predicate.Predicate) (string, []any, error) {
	where, err := t.Where(p)
	if err != nil {
		return "", nil, err
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(t.schema.key()).
		From(t.schema.Table).
		Where(where).
		ToSql()
}
