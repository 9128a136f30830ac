// Package oradb adapts a godror-backed *sql.DB into the loader's
// SourceConn/SourceCursor surfaces, coercing Oracle-specific scan
// types (NUMBER, LOB, DATE/TIMESTAMP) into the loader's tagged Value
// kinds by column type name, the same way genai-toolbox's Oracle query
// tool switches on ColumnTypes()[i].DatabaseTypeName().
package oradb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/godror/godror"
	"github.com/ora2pg/migrator/loader"
)

// Conn wraps a *sql.DB opened with the godror driver, dedicated to one
// table worker for the duration of that table's migration.
type Conn struct {
	db *sql.DB
}

// NewConn wraps an already-opened godror *sql.DB.
func NewConn(db *sql.DB) *Conn {
	return &Conn{db: db}
}

func (c *Conn) Close() error { return c.db.Close() }

// CountRows runs a COUNT(*) against owner.table, satisfying report.Counter.
func (c *Conn) CountRows(ctx context.Context, owner, table string) (int64, error) {
	var n int64
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s.%s`, oracleIdent(owner), oracleIdent(table))
	row := c.db.QueryRowContext(ctx, q)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func oracleIdent(name string) string {
	return `"` + strings.ToUpper(name) + `"`
}

// OpenCursor runs query with a row prefetch size of arraySize, matching
// godror's array-fetch tuning knob for the underlying OCI cursor.
func (c *Conn) OpenCursor(ctx context.Context, query string, arraySize int) (loader.SourceCursor, error) {
	rows, err := c.db.QueryContext(ctx, query, godror.FetchRowCount(arraySize))
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("reading column types: %w", err)
	}
	return &Cursor{rows: rows, types: types}, nil
}

// Cursor pulls batches of rows via repeated Scan, coercing each
// column's driver value into a loader.Value by its Oracle type name.
type Cursor struct {
	rows  *sql.Rows
	types []*sql.ColumnType
}

func (c *Cursor) Close() error { return c.rows.Close() }

// FetchBatch scans up to n rows. It returns a shorter slice once the
// result set is exhausted or an error terminates the scan.
func (c *Cursor) FetchBatch(ctx context.Context, n int) ([][]loader.Value, error) {
	width := len(c.types)
	batch := make([][]loader.Value, 0, n)

	for len(batch) < n {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if !c.rows.Next() {
			return batch, c.rows.Err()
		}

		raw := make([]any, width)
		ptrs := make([]any, width)
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := c.rows.Scan(ptrs...); err != nil {
			return batch, fmt.Errorf("scanning row: %w", err)
		}

		row := make([]loader.Value, width)
		for i, v := range raw {
			row[i] = c.coerce(v, i)
		}
		batch = append(batch, row)
	}

	return batch, nil
}

// coerce classifies column i's scanned value, special-casing the
// Oracle type names whose default Go scan type doesn't already match
// one of loader.Classify's recognized kinds.
func (c *Cursor) coerce(v any, col int) loader.Value {
	if v == nil {
		return loader.Value{Kind: loader.KindNull}
	}

	switch n := v.(type) {
	case godror.Number:
		return numberValue(string(n))
	}

	switch strings.ToUpper(c.types[col].DatabaseTypeName()) {
	case "CLOB", "NCLOB", "LONG":
		return loader.Classify(stringOf(v))
	case "BLOB", "RAW", "LONG RAW", "BFILE":
		return loader.Classify(bytesOf(v))
	default:
		return loader.Classify(v)
	}
}

// numberValue parses godror's decimal-text NUMBER representation,
// preserving exact precision the way the rest of the pipeline expects
// from loader.DecimalValue rather than rounding through float64.
func numberValue(s string) loader.Value {
	if s == "" {
		return loader.Value{Kind: loader.KindNull}
	}
	return loader.DecimalValue(s)
}

func stringOf(v any) string {
	switch b := v.(type) {
	case []byte:
		return string(b)
	case string:
		return b
	default:
		return fmt.Sprintf("%v", v)
	}
}

func bytesOf(v any) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return []byte(fmt.Sprintf("%v", v))
	}
}
