package report

import (
	"fmt"
	"strings"

	"github.com/ora2pg/migrator/catalog"
)

// Warning names one internal inconsistency found between a planned
// statement list and the catalog snapshot it was built from. This is not
// schema-drift reconciliation against a live target; it is a self-check
// that the planner did not silently drop an entity.
type Warning struct {
	Kind        string // "table", "foreign_key", "index"
	Description string
}

// CheckPlanCoverage counts CREATE TABLE / ALTER TABLE ... FOREIGN KEY /
// CREATE ... INDEX statements in plan and compares them against the
// entity counts in snap, returning one Warning per mismatch.
func CheckPlanCoverage(snap *catalog.CatalogSnapshot, plan []string) []Warning {
	var tables, fks, indexes int
	for _, stmt := range plan {
		switch {
		case strings.HasPrefix(stmt, "CREATE TABLE"):
			tables++
		case strings.Contains(stmt, "FOREIGN KEY"):
			fks++
		case strings.Contains(stmt, "INDEX"):
			indexes++
		}
	}

	var warnings []Warning
	if tables != len(snap.Tables) {
		warnings = append(warnings, Warning{
			Kind:        "table",
			Description: fmt.Sprintf("plan has %d CREATE TABLE statements but snapshot has %d tables", tables, len(snap.Tables)),
		})
	}
	if fks != len(snap.ForeignKeys) {
		warnings = append(warnings, Warning{
			Kind:        "foreign_key",
			Description: fmt.Sprintf("plan has %d foreign key statements but snapshot has %d", fks, len(snap.ForeignKeys)),
		})
	}
	if indexes != len(snap.Indexes) {
		warnings = append(warnings, Warning{
			Kind:        "index",
			Description: fmt.Sprintf("plan has %d index statements but snapshot has %d", indexes, len(snap.Indexes)),
		})
	}
	return warnings
}
