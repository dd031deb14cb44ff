package backend

import (
	"fmt"
	"strings"
)

// dialect captures what differs between the SQL stores.
type dialect struct {
	placeholder func(n int) string
	// ilike renders a case-insensitive match of column against the pattern placeholder.
	ilike func(column, pattern string) string
}

var (
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		// sqlite LIKE folds ASCII only; casefold is registered by shared.NewDatabase.
		ilike: func(column, pattern string) string {
			return fmt.Sprintf(`casefold(coalesce(%s, '')) LIKE casefold(%s) ESCAPE '\'`, column, pattern)
		},
	}
	postgresDialect = dialect{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		ilike: func(column, pattern string) string {
			return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, pattern)
		},
	}
)

// builder accumulates statement arguments while rendering clauses.
type builder struct {
	d      dialect
	args   []any
	encode func(any) any
}

func newBuilder(d dialect) *builder {
	return &builder{d: d}
}

func (b *builder) arg(v any) string {
	if b.encode != nil {
		v = b.encode(v)
	}
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

// where renders filters as a WHERE clause, or "" when there are none.
func (b *builder) where(filters []Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		expr, err := b.expr(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

func (b *builder) expr(f Filter) (string, error) {
	switch f := f.(type) {
	case Eq:
		if f.Value == nil {
			return f.Column + " IS NULL", nil
		}
		return f.Column + " = " + b.arg(f.Value), nil
	case ILike:
		return b.d.ilike(f.Column, b.arg(f.Pattern)), nil
	case Or:
		if len(f) == 0 {
			return "", fmt.Errorf("%w: empty or filter", ErrInvalidQuery)
		}
		parts := make([]string, 0, len(f))
		for _, inner := range f {
			expr, err := b.expr(inner)
			if err != nil {
				return "", err
			}
			parts = append(parts, expr)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	default:
		return "", fmt.Errorf("%w: unsupported filter %T", ErrInvalidQuery, f)
	}
}

// set renders "a = ?, b = ?" for values in column order.
func (b *builder) set(values Values) string {
	cols := values.columns()
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, col+" = "+b.arg(values[col]))
	}
	return strings.Join(parts, ", ")
}

// insert renders "(a, b) VALUES (?, ?)" for values in column order.
func (b *builder) insert(values Values) string {
	cols := values.columns()
	phs := make([]string, 0, len(cols))
	for _, col := range cols {
		phs = append(phs, b.arg(values[col]))
	}
	return "(" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(phs, ", ") + ")"
}

func orderBy(o *Order, tiebreak string) string {
	if o == nil {
		return ""
	}
	dir := "ASC"
	if o.Descending {
		dir = "DESC"
	}
	clause := " ORDER BY " + o.Column + " " + dir
	if tiebreak != "" {
		clause += ", " + tiebreak + " " + dir
	}
	return clause
}

func limit(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", n)
}
