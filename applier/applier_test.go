package applier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatementsTrimsAndTerminates(t *testing.T) {
	sql := "CREATE SEQUENCE IF NOT EXISTS s1;\nCREATE TABLE t1 (id int);\n\n"
	stmts := SplitStatements(sql)
	assert.Equal(t, []string{
		"CREATE SEQUENCE IF NOT EXISTS s1;",
		"CREATE TABLE t1 (id int);",
	}, stmts)
}

func TestSplitStatementsIgnoresBlank(t *testing.T) {
	stmts := SplitStatements(";;;")
	assert.Empty(t, stmts)
}
