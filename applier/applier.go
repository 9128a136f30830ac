// Package applier executes a planned DDL statement list against the
// target, autocommitting each statement and continuing past failures so
// the schema is materialized as completely as possible.
package applier

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ora2pg/migrator/migrateerr"
)

// StatementResult records the outcome of applying one statement.
type StatementResult struct {
	Index     int
	Statement string
	Err       error
}

// Result is the full outcome of an Apply call.
type Result struct {
	Applied    int
	Failed     int
	FirstError *StatementResult
	Results    []StatementResult
}

// Applier owns the pool used to apply DDL.
type Applier struct {
	pool *pgxpool.Pool
}

// New wraps an already-connected pool.
func New(pool *pgxpool.Pool) *Applier {
	return &Applier{pool: pool}
}

// Apply executes each non-blank entry of plan as one autocommit
// statement, recording the first failure but continuing through the
// rest. It does not split entries; SplitStatements does that for a
// plan.sql blob.
func (a *Applier) Apply(ctx context.Context, plan []string) (Result, error) {
	var result Result

	for i, stmt := range plan {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}

		_, err := a.pool.Exec(ctx, trimmed)
		sr := StatementResult{Index: i + 1, Statement: trimmed, Err: err}
		result.Results = append(result.Results, sr)

		if err != nil {
			result.Failed++
			if result.FirstError == nil {
				first := sr
				result.FirstError = &first
			}
			continue
		}
		result.Applied++
	}

	if result.FirstError != nil {
		return result, migrateerr.New(migrateerr.DDLApplication, "one or more DDL statements failed", result.FirstError.Err).
			WithContext("statement_index", result.FirstError.Index).
			WithContext("failed_count", result.Failed)
	}
	return result, nil
}

// SplitStatements re-splits a plan.sql-style blob on top-level ';'
// terminators, tolerating a trailing terminator or blank lines. It does
// not need to be string-literal aware for this dialect's plan content.
func SplitStatements(sql string) []string {
	raw := strings.Split(sql, ";")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t+";")
		}
	}
	return out
}
