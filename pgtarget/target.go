// Package pgtarget adapts a pgx connection pool to the loader.TargetConn
// surface and to the report.Counter row-count interface.
package pgtarget

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn wraps one checked-out pgx connection, owned exclusively by a
// single loader worker for the duration of one table's migration. Once
// Begin has opened tx, Exec and CopyFromCSV run against it instead of
// the bare connection, so they share one transaction until Commit or
// Rollback ends it.
type Conn struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
}

// Acquire checks out a dedicated connection from pool.
func Acquire(ctx context.Context, pool *pgxpool.Pool) (*Conn, error) {
	c, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: c}, nil
}

// Close releases the connection back to the pool.
func (c *Conn) Close() error {
	c.conn.Release()
	return nil
}

// Begin opens a transaction that Exec and CopyFromCSV run inside until
// Commit or Rollback ends it.
func (c *Conn) Begin(ctx context.Context) error {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

// Commit ends the open transaction, if any.
func (c *Conn) Commit(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	return tx.Commit(ctx)
}

// Rollback ends the open transaction, if any, discarding its work.
func (c *Conn) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	return tx.Rollback(ctx)
}

// Exec runs sqlText, discarding the result.
func (c *Conn) Exec(ctx context.Context, sqlText string) error {
	if c.tx != nil {
		_, err := c.tx.Exec(ctx, sqlText)
		return err
	}
	_, err := c.conn.Exec(ctx, sqlText)
	return err
}

// CopyFromCSV streams payload into schema.table's columns via the
// literal wire-level COPY ... FORMAT csv protocol, so the caller's own
// CSV framing passes through untouched rather than being re-encoded by
// the driver's row-at-a-time CopyFrom helper.
//
// When a transaction is open, the COPY runs under its own savepoint: a
// failed batch rolls back to that savepoint rather than aborting the
// whole transaction, so the caller can quarantine the batch and keep
// going with the rest of the table's data under the same transaction.
func (c *Conn) CopyFromCSV(ctx context.Context, schema, table string, columns []string, payload []byte) (int64, error) {
	copySQL := fmt.Sprintf(
		`COPY %s.%s (%s) FROM STDIN WITH (FORMAT csv, NULL '\N', QUOTE '"', ESCAPE '"')`,
		quoteIdent(schema), quoteIdent(table), quoteColumnList(columns),
	)

	if c.tx == nil {
		tag, err := c.conn.Conn().PgConn().CopyFrom(ctx, bytes.NewReader(payload), copySQL)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	}

	savepoint, err := c.tx.Begin(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := savepoint.Conn().PgConn().CopyFrom(ctx, bytes.NewReader(payload), copySQL)
	if err != nil {
		_ = savepoint.Rollback(ctx)
		return 0, err
	}
	if err := savepoint.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountRows runs a COUNT(*) for owner.table, satisfying report.Counter.
func (c *Conn) CountRows(ctx context.Context, schema, table string) (int64, error) {
	var n int64
	row := c.conn.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", quoteIdent(schema), quoteIdent(table)))
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func quoteIdent(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

func quoteColumnList(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += quoteIdent(c)
	}
	return out
}
