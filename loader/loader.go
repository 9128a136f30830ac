// Package loader streams table rows from the source into the target's
// bulk-copy protocol, bounded in parallel across tables, with per-batch
// CSV framing and failed-batch quarantine.
//
// Grounded on the teacher's worker-pool/batch-processor/stream-parser
// shapes (parser/worker.go, parser/batch.go, parser/stream.go),
// generalized from "parse task over statement text" to "migrate one
// table's rows".
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ora2pg/migrator/ident"
	"github.com/ora2pg/migrator/migrateerr"
	"golang.org/x/sync/errgroup"
)

// SourceCursor is a pull-based batched row reader over one table's
// result set.
type SourceCursor interface {
	// FetchBatch returns up to n rows, classified per column. Returns a
	// shorter (possibly empty) slice at end of stream.
	FetchBatch(ctx context.Context, n int) ([][]Value, error)
	Close() error
}

// SourceConn opens a row cursor for one table.
type SourceConn interface {
	OpenCursor(ctx context.Context, query string, arraySize int) (SourceCursor, error)
	Close() error
}

// TargetConn executes DDL/DML and drives the bulk-copy protocol. Begin
// opens a transaction that Exec and CopyFromCSV run inside until Commit
// or Rollback ends it; a TargetConn that is never Begin'd behaves as
// autocommit.
type TargetConn interface {
	Exec(ctx context.Context, sqlText string) error
	CopyFromCSV(ctx context.Context, schema, table string, columns []string, payload []byte) (rowsAffected int64, err error)
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close() error
}

// Dialer opens one source and one target connection per table worker.
// Each worker owns its pair exclusively for the duration of that table.
type Dialer interface {
	OpenSource(ctx context.Context) (SourceConn, error)
	OpenTarget(ctx context.Context) (TargetConn, error)
}

// Config controls batching, parallelism and quarantine location.
type Config struct {
	Parallelism int
	BatchRows   int
	ArraySize   int
	OutDir      string
	Deferrable  bool
}

// DefaultConfig mirrors the defaults documented in the migration config.
func DefaultConfig() Config {
	return Config{Parallelism: 4, BatchRows: 50000, ArraySize: 10000, Deferrable: true}
}

// Loader migrates row data for a set of tables.
type Loader struct {
	cfg    Config
	mapper *ident.Mapper
	dialer Dialer
}

// New builds a Loader sharing mapper with the planner that produced the
// target DDL, so identifiers used in COPY match those in CREATE TABLE.
func New(cfg Config, mapper *ident.Mapper, dialer Dialer) *Loader {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if cfg.BatchRows <= 0 {
		cfg.BatchRows = 50000
	}
	if cfg.ArraySize <= 0 {
		cfg.ArraySize = cfg.BatchRows
	}
	return &Loader{cfg: cfg, mapper: mapper, dialer: dialer}
}

// LoadAll migrates every spec, running up to cfg.Parallelism tables
// concurrently. A failure on one table never stops the others; their
// outcomes are captured individually in the returned stats.
func (l *Loader) LoadAll(ctx context.Context, specs []TableSpec) []TableStats {
	stats := make([]TableStats, len(specs))

	if l.cfg.Parallelism <= 1 || len(specs) <= 1 {
		for i, spec := range specs {
			stats[i] = l.loadTable(ctx, spec)
		}
		return stats
	}

	sem := make(chan struct{}, l.cfg.Parallelism)
	g, gctx := errgroup.WithContext(ctx)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			stats[i] = l.loadTable(gctx, spec)
			return nil // per-table errors are captured in stats, not propagated
		})
	}
	_ = g.Wait()

	return stats
}

func (l *Loader) loadTable(ctx context.Context, spec TableSpec) TableStats {
	result := TableStats{Table: spec.Name, Status: StatusOK}

	source, err := l.dialer.OpenSource(ctx)
	if err != nil {
		return tableErr(result, "open source connection", err)
	}
	defer source.Close()

	target, err := l.dialer.OpenTarget(ctx)
	if err != nil {
		return tableErr(result, "open target connection", err)
	}
	defer target.Close()

	query := buildSelect(spec)
	cursor, err := source.OpenCursor(ctx, query, l.cfg.ArraySize)
	if err != nil {
		return tableErr(result, "open source cursor", err)
	}
	defer cursor.Close()

	if err := target.Begin(ctx); err != nil {
		return tableErr(result, "begin target transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = target.Rollback(ctx)
		}
	}()

	if l.cfg.Deferrable {
		// SET CONSTRAINTS is transaction-scoped: it must run inside the
		// same transaction as the COPY batches below to have any effect.
		// It is best-effort: a failure aborts that transaction, so it is
		// rolled back and a fresh one is opened, and the table loads
		// without deferred constraints.
		if err := target.Exec(ctx, "SET CONSTRAINTS ALL DEFERRED"); err != nil {
			_ = target.Rollback(ctx)
			if err := target.Begin(ctx); err != nil {
				return tableErr(result, "begin target transaction", err)
			}
		}
	}

	targetCols := quoteColumns(l.mapper, spec.TargetColumnNames())
	targetSchema := l.mapper.Map(spec.TargetSchema)
	targetTable := l.mapper.Map(spec.TargetTableName())

	for {
		batch, err := cursor.FetchBatch(ctx, l.cfg.BatchRows)
		if err != nil {
			return tableErr(result, "fetch batch", err)
		}
		if len(batch) == 0 {
			break
		}

		batch = fixArity(batch, len(spec.Columns))
		payload := encodeBatch(batch)

		// CopyFromCSV runs each batch under its own savepoint, so a
		// failed batch rolls back to a clean point within this table's
		// transaction instead of poisoning it for the batches after.
		n, err := target.CopyFromCSV(ctx, targetSchema, targetTable, targetCols, payload)
		if err != nil {
			result.FailedBatches++
			_ = quarantine(l.cfg.OutDir, spec.Name, len(batch), err, payload)
			continue
		}
		result.Rows += n

		if len(batch) < l.cfg.BatchRows {
			break
		}
	}

	if err := target.Commit(ctx); err != nil {
		return tableErr(result, "commit target transaction", err)
	}
	committed = true

	return result
}

func tableErr(result TableStats, step string, cause error) TableStats {
	result.Status = StatusError
	result.Err = migrateerr.New(migrateerr.Table, "table migration failed: "+step, cause).WithContext("table", result.Table)
	return result
}

func buildSelect(spec TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = oracleIdent(c)
	}
	q := fmt.Sprintf("SELECT %s FROM %s.%s", strings.Join(cols, ", "), oracleIdent(spec.Owner), oracleIdent(spec.Name))
	if spec.WhereClause != "" {
		q += " WHERE " + spec.WhereClause
	}
	return q
}

// oracleIdent double-quotes and upper-cases a source-side identifier for
// use in the SELECT issued against Oracle.
func oracleIdent(name string) string {
	return `"` + strings.ToUpper(name) + `"`
}

func quoteColumns(mapper *ident.Mapper, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = mapper.Map(c)
	}
	return out
}

// fixArity pads or truncates each row to exactly width values.
func fixArity(rows [][]Value, width int) [][]Value {
	for i, row := range rows {
		switch {
		case len(row) > width:
			rows[i] = row[:width]
		case len(row) < width:
			padded := make([]Value, width)
			copy(padded, row)
			for j := len(row); j < width; j++ {
				padded[j] = Value{Kind: KindNull}
			}
			rows[i] = padded
		}
	}
	return rows
}

func encodeBatch(rows [][]Value) []byte {
	var buf []byte
	for _, row := range rows {
		buf = append(buf, []byte(EncodeCSVRow(row))...)
	}
	return buf
}
