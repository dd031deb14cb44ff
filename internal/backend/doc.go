// Package backend is the data service contract recipes are stored through.
//
// A [Table] exposes four generic operations (select, insert, update and delete)
// driven by [Filter] values. Three implementations are provided:
//   - [SQLiteTable] : local sqlite database, the default
//   - [PostgresTable] : PostgreSQL through a pgx connection pool
//   - [RESTTable] : a PostgREST endpoint such as a Supabase project
//
// Every failure from a table is a [*Error] so callers can report a readable
// message regardless of which store is behind it.
package backend
