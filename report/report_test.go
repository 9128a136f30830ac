package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ora2pg/migrator/catalog"
	"github.com/ora2pg/migrator/config"
	"github.com/ora2pg/migrator/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePlanSQL(t *testing.T) {
	dir := t.TempDir()
	path, err := WritePlanSQL(dir, "plan.sql", []string{"CREATE TABLE t (id int);", "CREATE INDEX idx ON t (id);"})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "CREATE TABLE t")
	assert.Contains(t, string(content), "CREATE INDEX idx")
}

func TestReportLogAppendsLines(t *testing.T) {
	dir := t.TempDir()
	r, err := New(config.Output{Dir: dir, ReportMD: "report.md"})
	require.NoError(t, err)

	require.NoError(t, r.Log("starting migration"))
	require.NoError(t, r.LogTableStats(loader.TableStats{Table: "ORDERS", Status: loader.StatusOK, Rows: 10}))
	require.NoError(t, r.LogValidation("ORDERS", CountResult{Oracle: 10, Postgres: 10, Match: true}))

	content, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "starting migration")
	assert.Contains(t, text, "ORDERS")
	assert.Contains(t, text, "MATCH")
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f fakeCounter) CountRows(ctx context.Context, owner, table string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[table], nil
}

func TestValidateCountsDetectsMismatch(t *testing.T) {
	source := fakeCounter{counts: map[string]int64{"ORDERS": 10}}
	target := fakeCounter{counts: map[string]int64{"orders": 9}}

	results, err := ValidateCounts(context.Background(), "HR", "public", []string{"ORDERS"}, source, target)
	require.NoError(t, err)
	assert.False(t, results["ORDERS"].Match)
	assert.False(t, AllMatch(results))
}

func TestValidateCountsPropagatesQueryFailure(t *testing.T) {
	source := fakeCounter{err: errors.New("boom")}
	target := fakeCounter{}

	_, err := ValidateCounts(context.Background(), "HR", "public", []string{"ORDERS"}, source, target)
	assert.Error(t, err)
}

func TestCheckPlanCoverageFlagsMismatch(t *testing.T) {
	snap := &catalog.CatalogSnapshot{
		Tables:      []catalog.TableRef{{Name: "A"}, {Name: "B"}},
		ForeignKeys: []catalog.ForeignKey{{ConstraintName: "FK1"}},
	}
	plan := []string{"CREATE TABLE a (id int);"} // missing a second CREATE TABLE, and the FK statement

	warnings := CheckPlanCoverage(snap, plan)
	assert.Len(t, warnings, 2)
}
