// Package ports defines narrow query, row-source and copy-sink
// interfaces over a database connection. No other package in this module
// imports them; the catalog, applier and loader code use *sql.DB,
// *pgxpool.Pool and the loader's own interfaces instead.
package ports

import (
	"context"
	"database/sql"
)

// QueryExecutor runs statements and queries against a single connection.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
}

// RowSource is a pull-based cursor over fixed-arity rows, matching the
// shape a batched data-loader fetch needs regardless of the underlying
// driver.
type RowSource interface {
	// Next advances to the next row. It returns false at end of stream or
	// on error; check Err afterward to distinguish the two.
	Next() bool
	// Scan copies the current row's column values into dest, which must
	// have exactly Columns() entries.
	Scan(dest []any) error
	// Columns returns the column names in fetch order.
	Columns() []string
	Err() error
	Close() error
}

// CopySink accepts a framed byte payload for one batch of bulk-loaded
// rows (a single call to CopyFrom per batch in the loader's usage).
type CopySink interface {
	CopyFrom(ctx context.Context, table string, columns []string, payload []byte) (rowsAffected int64, err error)
}
