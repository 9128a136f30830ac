package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/ora2pg/migrator/migrateerr"
)

// CountResult is one table's Oracle-vs-Postgres row-count comparison.
type CountResult struct {
	Oracle   int64
	Postgres int64
	Match    bool
}

// Counter runs a COUNT(*) against one endpoint.
type Counter interface {
	CountRows(ctx context.Context, owner, table string) (int64, error)
}

// ValidateCounts compares row counts for every table between the source
// and target counters. A query failure for one table surfaces as a
// ValidationMismatch-kind error for that table but does not abort the
// others.
func ValidateCounts(ctx context.Context, oracleOwner string, targetSchema string, tables []string, source, target Counter) (map[string]CountResult, error) {
	out := make(map[string]CountResult, len(tables))
	var failures []string

	for _, t := range tables {
		oCount, err := source.CountRows(ctx, strings.ToUpper(oracleOwner), strings.ToUpper(t))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s (oracle: %v)", t, err))
			continue
		}
		pCount, err := target.CountRows(ctx, targetSchema, strings.ToLower(t))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s (postgres: %v)", t, err))
			continue
		}
		out[t] = CountResult{Oracle: oCount, Postgres: pCount, Match: oCount == pCount}
	}

	if len(failures) > 0 {
		return out, migrateerr.New(migrateerr.ValidationMismatch, "row count validation failed for one or more tables", nil).
			WithContext("failures", failures)
	}
	return out, nil
}

// AllMatch reports whether every validated table's counts matched.
func AllMatch(results map[string]CountResult) bool {
	for _, r := range results {
		if !r.Match {
			return false
		}
	}
	return true
}
