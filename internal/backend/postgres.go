package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

const recipesDDL = `
CREATE TABLE IF NOT EXISTS recipes (
	id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	title TEXT NOT NULL CHECK (length(title) > 0),
	steps TEXT NOT NULL CHECK (length(steps) > 0),
	keywords TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	user_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recipes_user_created ON recipes (user_id, created_at DESC);
`

// EnsureSchema creates the recipes table and its index when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, recipesDDL); err != nil {
		return fmt.Errorf("failed to create recipes table: %w", err)
	}
	return nil
}

// PostgresTable implements [Table] on PostgreSQL.
//
// Rows are mapped onto T by `db` struct tags. The id and created columns are left to column defaults.
type PostgresTable[T any] struct {
	pool   *pgxpool.Pool
	schema Schema[T]
}

// NewPostgresTable creates a [PostgresTable] for schema.
func NewPostgresTable[T any](pool *pgxpool.Pool, schema Schema[T]) *PostgresTable[T] {
	return &PostgresTable[T]{pool: pool, schema: schema}
}

func (t *PostgresTable[T]) selectList() string {
	return strings.Join(t.schema.Columns, ", ")
}

func (t *PostgresTable[T]) Select(ctx context.Context, q Query) ([]*T, error) {
	if err := t.schema.validate(q.Filters, q.Order, nil); err != nil {
		return nil, newError("select", t.schema.Table, err)
	}

	b := newBuilder(postgresDialect)
	where, err := b.where(q.Filters)
	if err != nil {
		return nil, newError("select", t.schema.Table, err)
	}

	query := "SELECT " + t.selectList() + " FROM " + t.schema.Table + where + orderBy(q.Order, "") + limit(q.Limit)
	rows, err := t.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, t.error("select", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, t.error("select", err)
	}
	if results == nil {
		results = []*T{}
	}
	return results, nil
}

func (t *PostgresTable[T]) Insert(ctx context.Context, values Values) (*T, error) {
	if err := t.schema.validate(nil, nil, values); err != nil {
		return nil, newError("insert", t.schema.Table, err)
	}

	b := newBuilder(postgresDialect)
	query := "INSERT INTO " + t.schema.Table + " " + b.insert(values) + " RETURNING " + t.selectList()
	rows, err := t.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, t.error("insert", err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, t.error("insert", err)
	}
	return row, nil
}

func (t *PostgresTable[T]) Update(ctx context.Context, filters []Filter, values Values) ([]*T, error) {
	if len(filters) == 0 {
		return nil, newError("update", t.schema.Table, fmt.Errorf("%w: update without filters", ErrInvalidQuery))
	}
	if err := t.schema.validate(filters, nil, values); err != nil {
		return nil, newError("update", t.schema.Table, err)
	}
	if err := t.schema.checkMutable(values); err != nil {
		return nil, newError("update", t.schema.Table, err)
	}

	b := newBuilder(postgresDialect)
	set := b.set(values)
	where, err := b.where(filters)
	if err != nil {
		return nil, newError("update", t.schema.Table, err)
	}

	rows, err := t.pool.Query(ctx, "UPDATE "+t.schema.Table+" SET "+set+where+" RETURNING "+t.selectList(), b.args...)
	if err != nil {
		return nil, t.error("update", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, t.error("update", err)
	}
	if results == nil {
		results = []*T{}
	}
	return results, nil
}

func (t *PostgresTable[T]) Delete(ctx context.Context, filters []Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, newError("delete", t.schema.Table, fmt.Errorf("%w: delete without filters", ErrInvalidQuery))
	}
	if err := t.schema.validate(filters, nil, nil); err != nil {
		return 0, newError("delete", t.schema.Table, err)
	}

	b := newBuilder(postgresDialect)
	where, err := b.where(filters)
	if err != nil {
		return 0, newError("delete", t.schema.Table, err)
	}

	tag, err := t.pool.Exec(ctx, "DELETE FROM "+t.schema.Table+where, b.args...)
	if err != nil {
		return 0, t.error("delete", err)
	}
	return tag.RowsAffected(), nil
}

// error converts pgx failures, keeping the SQLSTATE code of server errors.
func (t *PostgresTable[T]) error(op string, err error) *Error {
	be := &Error{Op: op, Table: t.schema.Table, Message: err.Error(), Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		be.Message = pgErr.Message
		be.Code = pgErr.Code
	}
	return be
}
