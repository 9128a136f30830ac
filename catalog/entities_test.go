package catalog

import (
	"testing"

	"github.com/godror/godror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTablesIncludeExclude(t *testing.T) {
	tables := []TableRef{{Name: "ORDERS"}, {Name: "CUSTOMERS"}, {Name: "AUDIT_LOG"}}

	only := filterTables(tables, []string{"orders", "customers"}, nil)
	assert.Len(t, only, 2)

	excluded := filterTables(tables, nil, []string{"AUDIT_LOG"})
	assert.Len(t, excluded, 2)
	for _, tb := range excluded {
		assert.NotEqual(t, "AUDIT_LOG", tb.Name)
	}
}

func TestColumnsForAndPrimaryKeyFor(t *testing.T) {
	snap := &CatalogSnapshot{
		Columns: []Column{
			{Table: "ORDERS", Name: "ID"},
			{Table: "ORDERS", Name: "CUST_ID"},
			{Table: "CUSTOMERS", Name: "ID"},
		},
		PrimaryKeys: []PrimaryKey{
			{Table: "ORDERS", ConstraintName: "ORDERS_PK", Columns: []string{"ID"}},
		},
	}

	cols := snap.ColumnsFor("ORDERS")
	assert.Len(t, cols, 2)

	pk := snap.PrimaryKeyFor("ORDERS")
	assert.NotNil(t, pk)
	assert.Equal(t, "ORDERS_PK", pk.ConstraintName)

	assert.Nil(t, snap.PrimaryKeyFor("CUSTOMERS"))
}

func TestConnectString(t *testing.T) {
	assert.Equal(t, "hr/secret@dbhost:1521/orcl", ConnectString("hr", "secret", "dbhost:1521/orcl"))
	assert.Equal(t, "dbhost:1521/orcl", ConnectString("", "", "dbhost:1521/orcl"))
}

func TestDecimalPtrHandlesNumberBeyondInt64Range(t *testing.T) {
	huge := godror.Number("9999999999999999999999999")
	got := decimalPtr(huge)
	require.NotNil(t, got)
	assert.Equal(t, "9999999999999999999999999", *got)
}

func TestDecimalPtrNilAndEmpty(t *testing.T) {
	assert.Nil(t, decimalPtr(nil))
	assert.Nil(t, decimalPtr(godror.Number("")))
	assert.Nil(t, decimalPtr(""))
}

func TestDecimalPtrFallsBackForOtherScanTypes(t *testing.T) {
	got := decimalPtr(int64(20))
	require.NotNil(t, got)
	assert.Equal(t, "20", *got)
}
