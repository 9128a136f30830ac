package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/godror/godror"
	"github.com/ora2pg/migrator/dbconn"
	"github.com/ora2pg/migrator/migrateerr"
)

// Config controls how an Introspector connects and which tables it keeps.
type Config struct {
	DSN             string
	User            string
	Password        string
	Owner           string
	StatementCache  int // passed through as godror's statement cache size
	IncludeTables   []string
	ExcludeTables   []string
	ConnectTimeout  time.Duration
	ConnectAttempts int
}

// Introspector owns one Oracle connection for the duration of a single
// Snapshot call. It never mutates session-global state beyond the
// best-effort current-schema statement it issues for itself.
type Introspector struct {
	cfg Config
	db  *sql.DB
}

// Open connects to Oracle with the statement cache size from cfg, retrying
// per dbconn's defaults. The caller must call Close when done.
func Open(ctx context.Context, cfg Config) (*Introspector, error) {
	if cfg.StatementCache == 0 {
		cfg.StatementCache = 50
	}
	dsn := connectString(cfg)
	if cfg.StatementCache > 0 {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn = dsn + sep + "stmtCacheSize=" + strconv.Itoa(cfg.StatementCache)
	}

	retry := dbconn.DefaultRetryConfig()
	if cfg.ConnectAttempts > 0 {
		retry.Attempts = cfg.ConnectAttempts
	}
	if cfg.ConnectTimeout > 0 {
		retry.Timeout = cfg.ConnectTimeout
	}

	db, err := dbconn.Open(ctx, "godror", dsn, retry)
	if err != nil {
		return nil, err
	}
	return &Introspector{cfg: cfg, db: db}, nil
}

// ConnectString builds godror's easy-connect DSN from the separate
// user/password/connect-descriptor fields, reused by the loader's
// worker dialer so every Oracle connection composes the DSN the
// same way.
func ConnectString(user, password, dsn string) string {
	if user == "" {
		return dsn
	}
	return user + "/" + password + "@" + dsn
}

func connectString(cfg Config) string {
	return ConnectString(cfg.User, cfg.Password, cfg.DSN)
}

// Close releases the underlying connection.
func (in *Introspector) Close() error {
	if in.db == nil {
		return nil
	}
	return in.db.Close()
}

// SetCurrentSchema is a best-effort convenience; failures are tolerated
// since the queries below are always owner-qualified and do not rely on
// the session's current schema.
func (in *Introspector) SetCurrentSchema(ctx context.Context) error {
	_, err := in.db.ExecContext(ctx, "ALTER SESSION SET CURRENT_SCHEMA = "+in.cfg.Owner)
	return err
}

// Snapshot runs the fixed catalog queries and reshapes them into a
// CatalogSnapshot. A failure in any query aborts the whole pass; partial
// snapshots are never returned.
func (in *Introspector) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	tables, err := in.fetchTables(ctx)
	if err != nil {
		return nil, err
	}
	columns, err := in.fetchColumns(ctx)
	if err != nil {
		return nil, err
	}
	pks, fks, err := in.fetchConstraints(ctx)
	if err != nil {
		return nil, err
	}
	indexes, err := in.fetchIndexes(ctx)
	if err != nil {
		return nil, err
	}
	sequences, err := in.fetchSequences(ctx)
	if err != nil {
		return nil, err
	}

	snap := &CatalogSnapshot{
		Owner:       in.cfg.Owner,
		Tables:      filterTables(tables, in.cfg.IncludeTables, in.cfg.ExcludeTables),
		Columns:     columns,
		PrimaryKeys: pks,
		ForeignKeys: fks,
		Indexes:     indexes,
		Sequences:   sequences,
	}
	return snap, nil
}

func (in *Introspector) fetchTables(ctx context.Context) ([]TableRef, error) {
	const q = `SELECT table_name FROM all_tables WHERE owner = :1 ORDER BY table_name`
	rows, err := in.db.QueryContext(ctx, q, in.cfg.Owner)
	if err != nil {
		return nil, catalogErr("fetch tables", err)
	}
	defer rows.Close()

	var out []TableRef
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, catalogErr("scan table row", err)
		}
		out = append(out, TableRef{Owner: in.cfg.Owner, Name: name})
	}
	return out, rows.Err()
}

func (in *Introspector) fetchColumns(ctx context.Context) ([]Column, error) {
	const q = `
		SELECT table_name, column_name, data_type, data_precision, data_scale,
		       nullable, data_default
		FROM all_tab_columns
		WHERE owner = :1
		ORDER BY table_name, column_id`
	rows, err := in.db.QueryContext(ctx, q, in.cfg.Owner)
	if err != nil {
		return nil, catalogErr("fetch columns", err)
	}
	defer rows.Close()

	var out []Column
	for rows.Next() {
		var (
			table, name, typeName, nullableFlag string
			precision, scale                    sql.NullInt64
			defaultExpr                         sql.NullString
		)
		if err := rows.Scan(&table, &name, &typeName, &precision, &scale, &nullableFlag, &defaultExpr); err != nil {
			return nil, catalogErr("scan column row", err)
		}
		c := Column{
			Table:       table,
			Name:        name,
			TypeName:    typeName,
			Nullable:    nullableFlag == "Y",
			DefaultExpr: strings.TrimSpace(defaultExpr.String),
		}
		if precision.Valid {
			p := int(precision.Int64)
			c.Precision = &p
		}
		if scale.Valid {
			s := int(scale.Int64)
			c.Scale = &s
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (in *Introspector) fetchConstraints(ctx context.Context) ([]PrimaryKey, []ForeignKey, error) {
	const pkQ = `
		SELECT c.table_name, c.constraint_name, cc.column_name, cc.position
		FROM all_constraints c
		JOIN all_cons_columns cc
		  ON cc.owner = c.owner AND cc.constraint_name = c.constraint_name
		WHERE c.owner = :1 AND c.constraint_type = 'P'
		ORDER BY c.table_name, c.constraint_name, cc.position`
	pkRows, err := in.db.QueryContext(ctx, pkQ, in.cfg.Owner)
	if err != nil {
		return nil, nil, catalogErr("fetch primary keys", err)
	}
	defer pkRows.Close()

	pkByName := map[string]*PrimaryKey{}
	var pkOrder []string
	for pkRows.Next() {
		var table, cname, col string
		var pos int
		if err := pkRows.Scan(&table, &cname, &col, &pos); err != nil {
			return nil, nil, catalogErr("scan primary key row", err)
		}
		pk, ok := pkByName[cname]
		if !ok {
			pk = &PrimaryKey{Table: table, ConstraintName: cname}
			pkByName[cname] = pk
			pkOrder = append(pkOrder, cname)
		}
		pk.Columns = append(pk.Columns, col)
	}
	if err := pkRows.Err(); err != nil {
		return nil, nil, catalogErr("iterate primary keys", err)
	}

	const fkQ = `
		SELECT c.table_name, c.constraint_name, cc.column_name, cc.position,
		       rc.table_name AS r_table_name, rcc.column_name AS r_column_name,
		       c.delete_rule
		FROM all_constraints c
		JOIN all_cons_columns cc
		  ON cc.owner = c.owner AND cc.constraint_name = c.constraint_name
		JOIN all_constraints rc
		  ON rc.owner = c.r_owner AND rc.constraint_name = c.r_constraint_name
		JOIN all_cons_columns rcc
		  ON rcc.owner = rc.owner AND rcc.constraint_name = rc.constraint_name
		 AND rcc.position = cc.position
		WHERE c.owner = :1 AND c.constraint_type = 'R'
		ORDER BY c.table_name, c.constraint_name, cc.position`
	fkRows, err := in.db.QueryContext(ctx, fkQ, in.cfg.Owner)
	if err != nil {
		return nil, nil, catalogErr("fetch foreign keys", err)
	}
	defer fkRows.Close()

	fkByName := map[string]*ForeignKey{}
	var fkOrder []string
	for fkRows.Next() {
		var table, cname, col, rTable, rCol, deleteRule string
		var pos int
		if err := fkRows.Scan(&table, &cname, &col, &pos, &rTable, &rCol, &deleteRule); err != nil {
			return nil, nil, catalogErr("scan foreign key row", err)
		}
		fk, ok := fkByName[cname]
		if !ok {
			fk = &ForeignKey{
				ConstraintName: cname,
				Table:          table,
				RefTable:       rTable,
				DeleteRule:     DeleteRule(strings.ToUpper(deleteRule)),
			}
			fkByName[cname] = fk
			fkOrder = append(fkOrder, cname)
		}
		fk.Columns = append(fk.Columns, col)
		fk.RefColumns = append(fk.RefColumns, rCol)
	}
	if err := fkRows.Err(); err != nil {
		return nil, nil, catalogErr("iterate foreign keys", err)
	}

	pks := make([]PrimaryKey, 0, len(pkOrder))
	for _, name := range pkOrder {
		pks = append(pks, *pkByName[name])
	}
	fks := make([]ForeignKey, 0, len(fkOrder))
	for _, name := range fkOrder {
		fks = append(fks, *fkByName[name])
	}
	return pks, fks, nil
}

func (in *Introspector) fetchIndexes(ctx context.Context) ([]Index, error) {
	const q = `
		SELECT i.index_name, i.table_name, ic.column_name, ic.column_position,
		       i.uniqueness
		FROM all_indexes i
		JOIN all_ind_columns ic
		  ON ic.index_owner = i.owner AND ic.index_name = i.index_name
		WHERE i.owner = :1
		ORDER BY i.table_name, i.index_name, ic.column_position`
	rows, err := in.db.QueryContext(ctx, q, in.cfg.Owner)
	if err != nil {
		return nil, catalogErr("fetch indexes", err)
	}
	defer rows.Close()

	byName := map[string]*Index{}
	var order []string
	for rows.Next() {
		var name, table, col, uniqueness string
		var pos int
		if err := rows.Scan(&name, &table, &col, &pos, &uniqueness); err != nil {
			return nil, catalogErr("scan index row", err)
		}
		ix, ok := byName[name]
		if !ok {
			ix = &Index{Name: name, Table: table, Unique: uniqueness == "UNIQUE"}
			byName[name] = ix
			order = append(order, name)
		}
		ix.Columns = append(ix.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("iterate indexes", err)
	}

	out := make([]Index, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

func (in *Introspector) fetchSequences(ctx context.Context) ([]Sequence, error) {
	const q = `
		SELECT sequence_name, increment_by, min_value, max_value, cache_size,
		       cycle_flag, order_flag, last_number
		FROM all_sequences
		WHERE sequence_owner = :1
		ORDER BY sequence_name`
	rows, err := in.db.QueryContext(ctx, q, in.cfg.Owner)
	if err != nil {
		return nil, catalogErr("fetch sequences", err)
	}
	defer rows.Close()

	var out []Sequence
	for rows.Next() {
		var name, cycleFlag, orderFlag string
		var incrementBy sql.NullInt64
		var minValue, maxValue, cacheSize, lastNumber any
		if err := rows.Scan(&name, &incrementBy, &minValue, &maxValue, &cacheSize, &cycleFlag, &orderFlag, &lastNumber); err != nil {
			return nil, catalogErr("scan sequence row", err)
		}
		s := Sequence{
			Name:      name,
			CycleFlag: cycleFlag == "Y",
			OrderFlag: orderFlag == "Y",
			MinValue:  decimalPtr(minValue),
			MaxValue:  decimalPtr(maxValue),
			CacheSize: decimalPtr(cacheSize),
			LastValue: decimalPtr(lastNumber),
		}
		if incrementBy.Valid {
			v := incrementBy.Int64
			s.IncrementBy = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// decimalPtr converts a scanned all_sequences NUMBER column into decimal
// text rather than an int64: MAX_VALUE/MIN_VALUE/CACHE_SIZE/LAST_NUMBER
// routinely carry default bounds (e.g. ~9.999...e27) that overflow a
// signed 64-bit integer, the same reason oradb.Cursor.coerce scans table
// data through godror.Number instead of a typed numeric destination.
func decimalPtr(v any) *string {
	if v == nil {
		return nil
	}
	switch n := v.(type) {
	case godror.Number:
		if string(n) == "" {
			return nil
		}
		s := string(n)
		return &s
	case string:
		if n == "" {
			return nil
		}
		return &n
	case []byte:
		if len(n) == 0 {
			return nil
		}
		s := string(n)
		return &s
	case int64:
		s := strconv.FormatInt(n, 10)
		return &s
	case float64:
		s := strconv.FormatFloat(n, 'f', -1, 64)
		return &s
	default:
		s := fmt.Sprintf("%v", n)
		return &s
	}
}

func filterTables(tables []TableRef, include, exclude []string) []TableRef {
	includeSet := toLowerSet(include)
	excludeSet := toLowerSet(exclude)

	var out []TableRef
	for _, t := range tables {
		lname := strings.ToLower(t.Name)
		if len(includeSet) > 0 && !includeSet[lname] {
			continue
		}
		if excludeSet[lname] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func toLowerSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

func catalogErr(step string, cause error) error {
	return migrateerr.New(migrateerr.Catalog, "catalog introspection failed: "+step, cause)
}
