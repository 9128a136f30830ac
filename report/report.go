// Package report writes the plan.sql and report.md artifacts and runs the
// post-load row-count validator.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ora2pg/migrator/config"
	"github.com/ora2pg/migrator/loader"
)

// WritePlanSQL writes the statement list to <dir>/<filename>, with a
// newline after each statement (a statement may itself span lines).
func WritePlanSQL(dir, filename string, statements []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	content := strings.Join(statements, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Report is an append-only log of migration progress, mirroring the
// Python prototype's Report class.
type Report struct {
	path string
}

// New truncates (or creates) the report file at out.Dir/out.ReportMD.
func New(out config.Output) (*Report, error) {
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(out.Dir, out.ReportMD)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f.Close()
	return &Report{path: path}, nil
}

// Log appends message followed by a newline to the report file.
func (r *Report) Log(message string) error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(message + "\n")
	return err
}

// LogTableStats renders one table's load outcome as a report line.
func (r *Report) LogTableStats(stats loader.TableStats) error {
	if stats.Status == loader.StatusOK {
		return r.Log(fmt.Sprintf("- `%s`: ok, %d rows, %d failed batches", stats.Table, stats.Rows, stats.FailedBatches))
	}
	return r.Log(fmt.Sprintf("- `%s`: ERROR: %v", stats.Table, stats.Err))
}

// LogValidation renders one table's row-count validation outcome.
func (r *Report) LogValidation(table string, v CountResult) error {
	status := "MATCH"
	if !v.Match {
		status = "MISMATCH"
	}
	return r.Log(fmt.Sprintf("- `%s`: oracle=%d postgres=%d (%s)", table, v.Oracle, v.Postgres, status))
}
