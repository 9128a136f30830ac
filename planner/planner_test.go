package planner

import (
	"strings"
	"testing"

	"github.com/ora2pg/migrator/catalog"
	"github.com/ora2pg/migrator/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int         { return &v }
func i64p(v int64) *int64     { return &v }
func strp(v string) *string   { return &v }

func TestPlanPhaseOrder(t *testing.T) {
	snap := &catalog.CatalogSnapshot{
		Tables: []catalog.TableRef{{Name: "ORDERS"}},
		Columns: []catalog.Column{
			{Table: "ORDERS", Name: "ID", TypeName: "NUMBER", Precision: intp(10)},
		},
		ForeignKeys: []catalog.ForeignKey{
			{ConstraintName: "FK1", Table: "ORDERS", Columns: []string{"CUST_ID"}, RefTable: "CUSTOMERS", RefColumns: []string{"ID"}},
		},
		Indexes: []catalog.Index{
			{Name: "IDX1", Table: "ORDERS", Columns: []string{"ID"}},
		},
		Sequences: []catalog.Sequence{
			{Name: "ORDERS_SEQ"},
		},
	}

	stmts := Plan(snap, ident.NewMapper(), Config{TargetSchema: "public", Deferrable: true})
	require.Len(t, stmts, 4)
	assert.Contains(t, stmts[0], "CREATE SEQUENCE")
	assert.Contains(t, stmts[1], "CREATE TABLE")
	assert.Contains(t, stmts[2], "FOREIGN KEY")
	assert.Contains(t, stmts[3], "CREATE") // index
	assert.Contains(t, stmts[3], "INDEX")
}

func TestSequenceRewrite(t *testing.T) {
	snap := &catalog.CatalogSnapshot{
		Sequences: []catalog.Sequence{
			{
				Name:        "BIG_SEQ",
				IncrementBy: i64p(1),
				MaxValue:    strp("100000000000000000000000000"),
				CacheSize:   strp("0"),
				CycleFlag:   true,
				OrderFlag:   true,
			},
		},
	}
	stmts := emitSequences(snap.Sequences, ident.NewMapper(), Config{TargetSchema: "public"})
	require.Len(t, stmts, 1)
	stmt := stmts[0]
	assert.NotContains(t, stmt, "MAXVALUE")
	assert.NotContains(t, stmt, "ORDER")
	assert.Contains(t, stmt, "CACHE 1")
	assert.Contains(t, stmt, "CYCLE")
}

func TestSequenceInRangeBoundsSurviveAsDecimalText(t *testing.T) {
	seqs := []catalog.Sequence{
		{
			Name:      "SMALL_SEQ",
			MinValue:  strp("1"),
			MaxValue:  strp("999999999999999"),
			CacheSize: strp("20"),
		},
	}
	stmts := emitSequences(seqs, ident.NewMapper(), Config{TargetSchema: "public"})
	require.Len(t, stmts, 1)
	stmt := stmts[0]
	assert.Contains(t, stmt, "MINVALUE 1")
	assert.Contains(t, stmt, "MAXVALUE 999999999999999")
	assert.Contains(t, stmt, "CACHE 20")
}

func TestForeignKeyDeferrableAndDeleteRule(t *testing.T) {
	fks := []catalog.ForeignKey{
		{
			ConstraintName: "ORDERS_CUST_FK",
			Table:          "ORDERS",
			Columns:        []string{"CUST_ID"},
			RefTable:       "CUSTOMERS",
			RefColumns:     []string{"ID"},
			DeleteRule:     catalog.DeleteCascade,
		},
	}
	stmts := emitForeignKeys(fks, ident.NewMapper(), Config{TargetSchema: "public", Deferrable: true})
	require.Len(t, stmts, 1)
	stmt := stmts[0]
	assert.True(t, strings.HasPrefix(stmt, `ALTER TABLE "public"."orders"`))
	assert.Contains(t, stmt, "ON DELETE CASCADE")
	assert.Contains(t, stmt, "DEFERRABLE INITIALLY DEFERRED")
}

func TestForeignKeyNoActionOmitsDeleteClause(t *testing.T) {
	fks := []catalog.ForeignKey{
		{ConstraintName: "FK1", Table: "A", Columns: []string{"X"}, RefTable: "B", RefColumns: []string{"Y"}, DeleteRule: catalog.DeleteNoAction},
	}
	stmts := emitForeignKeys(fks, ident.NewMapper(), Config{Deferrable: false})
	assert.NotContains(t, stmts[0], "ON DELETE")
	assert.NotContains(t, stmts[0], "DEFERRABLE")
}

func TestColumnDefScrubsStrayParens(t *testing.T) {
	col := catalog.Column{Name: "ROW_REF", TypeName: "ROWID"}
	def := columnDef(col, ident.NewMapper())
	assert.Contains(t, def, "text")
	assert.NotContains(t, def, "(None")
}

func TestColumnDefEmitsDefaultAndNotNull(t *testing.T) {
	col := catalog.Column{Name: "STATUS", TypeName: "VARCHAR2", Precision: intp(10), Nullable: false, DefaultExpr: "'PENDING'"}
	def := columnDef(col, ident.NewMapper())
	assert.Contains(t, def, "DEFAULT 'PENDING'")
	assert.Contains(t, def, "NOT NULL")
	assert.Contains(t, def, "varchar(10)")
}

func TestPlanDeterministicAcrossRuns(t *testing.T) {
	snap := &catalog.CatalogSnapshot{
		Tables: []catalog.TableRef{{Name: "T1"}, {Name: "T2"}},
		Columns: []catalog.Column{
			{Table: "T1", Name: "ID", TypeName: "NUMBER"},
			{Table: "T2", Name: "ID", TypeName: "NUMBER"},
		},
	}
	a := Plan(snap, ident.NewMapper(), Config{TargetSchema: "public"})
	b := Plan(snap, ident.NewMapper(), Config{TargetSchema: "public"})
	assert.Equal(t, a, b)
}
