package migrate

import (
	"errors"
	"testing"

	"github.com/ora2pg/migrator/migrateerr"
)

func TestErrorExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"no tables", migrateerr.New(migrateerr.Catalog, "no tables discovered for owner", nil), 1},
		{"mismatch", migrateerr.New(migrateerr.ValidationMismatch, "row count validation failed", nil), 2},
		{"other fatal", errors.New("boom"), 3},
		{"ddl application", migrateerr.New(migrateerr.DDLApplication, "ddl failed", nil), 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ErrorExitCode(c.err); got != c.want {
				t.Fatalf("ErrorExitCode(%v) = %d, want %d", c.err, got, c.want)
			}
		})
	}
}
