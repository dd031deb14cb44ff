package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/recipebox/internal/shared"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

// timestamp scans sqlite time values stored as text or returned as [time.Time] by the driver.
type timestamp time.Time

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = timestamp(v.UTC())
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		*t = timestamp(time.Time{})
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

// sqliteTimeLayouts are tried in order against stored values. The "Z07:00"
// forms accept both a literal Z and a numeric offset.
var sqliteTimeLayouts = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

func (t *timestamp) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = timestamp(v.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

// encodeSQLite converts values the sqlite driver would otherwise store in a non-sortable form.
func encodeSQLite(v any) any {
	switch v := v.(type) {
	case time.Time:
		return v.UTC().Format(timeLayout)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(timeLayout)
	default:
		return v
	}
}

// SQLiteTable implements [Table] on a sqlite database opened with [shared.NewDatabase].
type SQLiteTable[T any] struct {
	db     *sql.DB
	schema Schema[T]

	// Now stamps the created column on insert. Defaults to [time.Now].
	Now func() time.Time
	// NewID fills the id column on insert. Defaults to [shared.GenerateID].
	NewID func() string
}

// NewSQLiteTable creates a [SQLiteTable] for schema.
func NewSQLiteTable[T any](db *sql.DB, schema Schema[T]) *SQLiteTable[T] {
	return &SQLiteTable[T]{db: db, schema: schema, Now: time.Now, NewID: shared.GenerateID}
}

func (t *SQLiteTable[T]) builder() *builder {
	b := newBuilder(sqliteDialect)
	b.encode = encodeSQLite
	return b
}

// Select returns matching rows. Rows with equal order values come back in reverse insertion order when descending.
func (t *SQLiteTable[T]) Select(ctx context.Context, q Query) ([]*T, error) {
	if err := t.schema.validate(q.Filters, q.Order, nil); err != nil {
		return nil, newError("select", t.schema.Table, err)
	}

	b := t.builder()
	where, err := b.where(q.Filters)
	if err != nil {
		return nil, newError("select", t.schema.Table, err)
	}

	query := "SELECT " + strings.Join(t.schema.Columns, ", ") + " FROM " + t.schema.Table +
		where + orderBy(q.Order, "rowid") + limit(q.Limit)

	rows, err := t.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, newError("select", t.schema.Table, fmt.Errorf("failed to query: %w", err))
	}
	defer rows.Close()

	results := []*T{}
	for rows.Next() {
		row, err := t.schema.Scan(rows)
		if err != nil {
			return nil, newError("select", t.schema.Table, fmt.Errorf("failed to scan row: %w", err))
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, newError("select", t.schema.Table, fmt.Errorf("row iteration error: %w", err))
	}
	return results, nil
}

// Insert adds a row, filling the id and created columns when values omit them.
func (t *SQLiteTable[T]) Insert(ctx context.Context, values Values) (*T, error) {
	if err := t.schema.validate(nil, nil, values); err != nil {
		return nil, newError("insert", t.schema.Table, err)
	}

	row := make(Values, len(values)+2)
	for k, v := range values {
		row[k] = v
	}
	if col := t.schema.IDColumn; col != "" && row[col] == nil {
		row[col] = t.NewID()
	}
	if col := t.schema.CreatedColumn; col != "" && row[col] == nil {
		row[col] = t.Now()
	}

	b := t.builder()
	query := "INSERT INTO " + t.schema.Table + " " + b.insert(row) +
		" RETURNING " + strings.Join(t.schema.Columns, ", ")

	inserted, err := t.schema.Scan(t.db.QueryRowContext(ctx, query, b.args...))
	if err != nil {
		return nil, newError("insert", t.schema.Table, fmt.Errorf("failed to insert: %w", err))
	}
	return inserted, nil
}

// Update changes matching rows and returns them as stored.
func (t *SQLiteTable[T]) Update(ctx context.Context, filters []Filter, values Values) ([]*T, error) {
	if len(filters) == 0 {
		return nil, newError("update", t.schema.Table, fmt.Errorf("%w: update without filters", ErrInvalidQuery))
	}
	if err := t.schema.validate(filters, nil, values); err != nil {
		return nil, newError("update", t.schema.Table, err)
	}
	if err := t.schema.checkMutable(values); err != nil {
		return nil, newError("update", t.schema.Table, err)
	}

	b := t.builder()
	set := b.set(values)
	where, err := b.where(filters)
	if err != nil {
		return nil, newError("update", t.schema.Table, err)
	}

	query := "UPDATE " + t.schema.Table + " SET " + set + where +
		" RETURNING " + strings.Join(t.schema.Columns, ", ")

	rows, err := t.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, newError("update", t.schema.Table, fmt.Errorf("failed to update: %w", err))
	}
	defer rows.Close()

	results := []*T{}
	for rows.Next() {
		row, err := t.schema.Scan(rows)
		if err != nil {
			return nil, newError("update", t.schema.Table, fmt.Errorf("failed to scan row: %w", err))
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, newError("update", t.schema.Table, fmt.Errorf("row iteration error: %w", err))
	}
	return results, nil
}

// Delete removes matching rows and reports how many were removed.
func (t *SQLiteTable[T]) Delete(ctx context.Context, filters []Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, newError("delete", t.schema.Table, fmt.Errorf("%w: delete without filters", ErrInvalidQuery))
	}
	if err := t.schema.validate(filters, nil, nil); err != nil {
		return 0, newError("delete", t.schema.Table, err)
	}

	b := t.builder()
	where, err := b.where(filters)
	if err != nil {
		return 0, newError("delete", t.schema.Table, err)
	}

	result, err := t.db.ExecContext(ctx, "DELETE FROM "+t.schema.Table+where, b.args...)
	if err != nil {
		return 0, newError("delete", t.schema.Table, fmt.Errorf("failed to delete: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, newError("delete", t.schema.Table, fmt.Errorf("failed to get affected rows: %w", err))
	}
	return rows, nil
}
