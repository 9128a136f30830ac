// Package catalog introspects an Oracle schema and reshapes the flat
// catalog rows into the entity set the planner and loader consume.
package catalog

// TableRef identifies a table by owner and name.
type TableRef struct {
	Owner string
	Name  string
}

// Column describes one table column as reported by the source catalog.
type Column struct {
	Table       string
	Name        string
	TypeName    string
	Precision   *int
	Scale       *int
	Nullable    bool
	DefaultExpr string
}

// PrimaryKey is a named, ordered column list.
type PrimaryKey struct {
	Table          string
	ConstraintName string
	Columns        []string
}

// DeleteRule enumerates the foreign-key ON DELETE behaviors the source
// catalog can report.
type DeleteRule string

const (
	DeleteNoAction   DeleteRule = "NO ACTION"
	DeleteCascade    DeleteRule = "CASCADE"
	DeleteSetNull    DeleteRule = "SET NULL"
	DeleteSetDefault DeleteRule = "SET DEFAULT"
	DeleteRestrict   DeleteRule = "RESTRICT"
)

// ForeignKey is a named, ordered local-to-referenced column mapping.
type ForeignKey struct {
	ConstraintName string
	Table          string
	Columns        []string
	RefTable       string
	RefColumns     []string
	DeleteRule     DeleteRule
}

// Index is a named, ordered column list, optionally unique.
type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// Sequence mirrors the fields the source catalog reports for a sequence.
// OrderFlag is recorded because the source reports it, but it is never
// consulted downstream: PostgreSQL has no ORDER/NO ORDER concept.
//
// MinValue, MaxValue, CacheSize and LastValue are decimal text rather than
// int64: Oracle's NUMBER columns backing them routinely hold default
// sequence bounds (e.g. MAXVALUE ~9.999...e27) that overflow a signed
// 64-bit integer, and the planner must still be able to compare and
// selectively omit them without truncating or erroring on the scan.
type Sequence struct {
	Name        string
	IncrementBy *int64
	MinValue    *string
	MaxValue    *string
	CacheSize   *string
	CycleFlag   bool
	OrderFlag   bool
	LastValue   *string
}

// CatalogSnapshot is the complete, immutable result of one introspection
// pass. It is built once and read by both the planner and the loader.
type CatalogSnapshot struct {
	Owner       string
	Tables      []TableRef
	Columns     []Column
	PrimaryKeys []PrimaryKey
	ForeignKeys []ForeignKey
	Indexes     []Index
	Sequences   []Sequence
}

// ColumnsFor returns the columns belonging to table, in the order they
// appear in the snapshot (already catalog-ordered by position).
func (s *CatalogSnapshot) ColumnsFor(table string) []Column {
	var out []Column
	for _, c := range s.Columns {
		if c.Table == table {
			out = append(out, c)
		}
	}
	return out
}

// PrimaryKeyFor returns the primary key for table, or nil if it has none.
func (s *CatalogSnapshot) PrimaryKeyFor(table string) *PrimaryKey {
	for i := range s.PrimaryKeys {
		if s.PrimaryKeys[i].Table == table {
			return &s.PrimaryKeys[i]
		}
	}
	return nil
}
