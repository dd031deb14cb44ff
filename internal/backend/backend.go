package backend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Table is a store of rows of type T.
//
// Filters passed in one slice are ANDed. Update and Delete refuse to run without filters.
type Table[T any] interface {
	Select(ctx context.Context, q Query) ([]*T, error)
	Insert(ctx context.Context, values Values) (*T, error)
	Update(ctx context.Context, filters []Filter, values Values) ([]*T, error)
	Delete(ctx context.Context, filters []Filter) (int64, error)
}

// Values maps column names to the values written by Insert and Update.
type Values map[string]any

// columns returns the keys of v in sorted order so generated statements are stable.
func (v Values) columns() []string {
	cols := make([]string, 0, len(v))
	for col := range v {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols
}

// Filter restricts the rows a query touches. See [Eq], [ILike] and [Or].
type Filter interface {
	columns() []string
}

// Eq matches rows where Column equals Value.
type Eq struct {
	Column string
	Value  any
}

func (f Eq) columns() []string { return []string{f.Column} }

// ILike matches rows where Column matches the LIKE Pattern, ignoring case.
//
// Patterns use "%" and "_" as wildcards and "\" as the escape character.
type ILike struct {
	Column  string
	Pattern string
}

func (f ILike) columns() []string { return []string{f.Column} }

// Contains returns an [ILike] matching rows where column contains term as a substring.
// Wildcards in term match literally.
func Contains(column, term string) ILike {
	return ILike{Column: column, Pattern: "%" + EscapeLike(term) + "%"}
}

// EscapeLike escapes the LIKE wildcards and the escape character in s.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Or matches rows matching any of its filters.
type Or []Filter

func (f Or) columns() []string {
	var cols []string
	for _, inner := range f {
		cols = append(cols, inner.columns()...)
	}
	return cols
}

// Order sorts results on a single column.
type Order struct {
	Column     string
	Descending bool
}

// Query describes a Select. A zero Limit means no limit.
type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int
}

// Error is returned by every [Table] implementation.
type Error struct {
	Op      string // select, insert, update or delete
	Table   string
	Message string // human readable
	Code    string // store specific code, when known
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.Table, e.Message)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrInvalidQuery is wrapped by errors for filters, orders or values that reference unknown columns.
var ErrInvalidQuery = errors.New("invalid query")

func newError(op, table string, err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Op: op, Table: table, Message: err.Error(), Err: err}
}

// checkColumns reports the first column that is not part of the schema.
func checkColumns(known []string, cols ...string) error {
	for _, col := range cols {
		if !slices.Contains(known, col) {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidQuery, col)
		}
	}
	return nil
}
