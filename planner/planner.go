// Package planner turns a catalog snapshot into a deterministic,
// dependency-ordered sequence of target DDL statements: sequences, then
// tables, then foreign keys, then indexes.
package planner

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/ora2pg/migrator/catalog"
	"github.com/ora2pg/migrator/ident"
	"github.com/ora2pg/migrator/typemap"
)

// BigintMax is PostgreSQL's signed 64-bit maximum; a sequence MIN/MAXVALUE
// outside the bigint range is omitted rather than emitted invalid.
const BigintMax = 9223372036854775807

// BigintMin is PostgreSQL's signed 64-bit minimum.
const BigintMin = -9223372036854775808

var bigBigintMax = big.NewInt(BigintMax)
var bigBigintMin = big.NewInt(BigintMin)
var bigOne = big.NewInt(1)

// Config controls target-schema naming and constraint emission policy.
type Config struct {
	TargetSchema string
	Deferrable   bool // emit FKs as DEFERRABLE INITIALLY DEFERRED
}

var strayNilSuffix = regexp.MustCompile(`(?i)\(\s*None\s*(?:,\s*None\s*)?\)`)
var strayEmptyParens = regexp.MustCompile(`\(\s*\)$`)

// Plan produces the full ordered statement list for snap using mapper for
// every identifier. mapper is shared with the loader so DDL and COPY
// target the same names.
func Plan(snap *catalog.CatalogSnapshot, mapper *ident.Mapper, cfg Config) []string {
	var out []string
	out = append(out, emitSequences(snap.Sequences, mapper, cfg)...)
	for _, t := range snap.Tables {
		out = append(out, emitCreateTable(snap, t, mapper, cfg))
	}
	out = append(out, emitForeignKeys(snap.ForeignKeys, mapper, cfg)...)
	out = append(out, emitIndexes(snap.Indexes, mapper, cfg)...)
	return out
}

// tableIdent renders a schema-qualified table (or sequence) name with both
// parts always double-quoted.
func tableIdent(mapper *ident.Mapper, table, schema string) string {
	quote := func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
	t := quote(mapper.Map(table))
	if schema == "" {
		return t
	}
	s := quote(mapper.Map(schema))
	return s + "." + t
}

func columnDef(col catalog.Column, mapper *ident.Mapper) string {
	name := ident.Quote(mapper.Map(col.Name))
	pgType, rowIdent := typemap.Map(col.TypeName, col.Precision, col.Scale)
	if rowIdent || strings.EqualFold(strings.TrimSpace(pgType), "ctid") {
		pgType = "text"
	}
	pgType = strayNilSuffix.ReplaceAllString(pgType, "")
	pgType = strayEmptyParens.ReplaceAllString(pgType, "")

	parts := []string{name, pgType}
	if col.DefaultExpr != "" {
		parts = append(parts, "DEFAULT", col.DefaultExpr)
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

func emitCreateTable(snap *catalog.CatalogSnapshot, table catalog.TableRef, mapper *ident.Mapper, cfg Config) string {
	tbl := tableIdent(mapper, table.Name, cfg.TargetSchema)

	cols := snap.ColumnsFor(table.Name)
	lines := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		lines = append(lines, columnDef(c, mapper))
	}

	if pk := snap.PrimaryKeyFor(table.Name); pk != nil {
		quoted := make([]string, len(pk.Columns))
		for i, c := range pk.Columns {
			quoted[i] = ident.Quote(mapper.Map(c))
		}
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoted, ", ")))
	}

	body := strings.Join(lines, ",\n  ")
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", tbl, body)
}

func emitForeignKeys(fks []catalog.ForeignKey, mapper *ident.Mapper, cfg Config) []string {
	out := make([]string, 0, len(fks))
	for _, fk := range fks {
		tbl := tableIdent(mapper, fk.Table, cfg.TargetSchema)
		rtbl := tableIdent(mapper, fk.RefTable, cfg.TargetSchema)
		cname := ident.Quote(mapper.Map(fk.ConstraintName))
		cols := quoteAll(fk.Columns, mapper)
		rcols := quoteAll(fk.RefColumns, mapper)

		var suffix strings.Builder
		rule := fk.DeleteRule
		if rule == "" {
			rule = catalog.DeleteNoAction
		}
		if rule != catalog.DeleteNoAction {
			suffix.WriteString(" ON DELETE ")
			suffix.WriteString(string(rule))
		}
		if cfg.Deferrable {
			suffix.WriteString(" DEFERRABLE INITIALLY DEFERRED")
		}

		out = append(out, fmt.Sprintf(
			"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s;",
			tbl, cname, strings.Join(cols, ", "), rtbl, strings.Join(rcols, ", "), suffix.String(),
		))
	}
	return out
}

func emitIndexes(indexes []catalog.Index, mapper *ident.Mapper, cfg Config) []string {
	out := make([]string, 0, len(indexes))
	for _, ix := range indexes {
		name := ident.Quote(mapper.Map(ix.Name))
		tbl := tableIdent(mapper, ix.Table, cfg.TargetSchema)
		cols := quoteAll(ix.Columns, mapper)
		unique := ""
		if ix.Unique {
			unique = "UNIQUE "
		}
		out = append(out, fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s);",
			unique, name, tbl, strings.Join(cols, ", ")))
	}
	return out
}

func emitSequences(seqs []catalog.Sequence, mapper *ident.Mapper, cfg Config) []string {
	out := make([]string, 0, len(seqs))
	for _, s := range seqs {
		name := tableIdent(mapper, s.Name, cfg.TargetSchema)
		parts := []string{"CREATE SEQUENCE IF NOT EXISTS " + name}

		if s.IncrementBy != nil {
			parts = append(parts, "INCREMENT BY "+strconv.FormatInt(*s.IncrementBy, 10))
		}
		if n, ok := bigintInRange(s.MinValue); ok {
			parts = append(parts, "MINVALUE "+n.String())
		}
		if n, ok := bigintInRange(s.MaxValue); ok {
			parts = append(parts, "MAXVALUE "+n.String())
		}

		cache := "1"
		if n, ok := bigintInRange(s.CacheSize); ok && n.Cmp(bigOne) >= 0 {
			cache = n.String()
		}
		parts = append(parts, "CACHE "+cache)

		if s.CycleFlag {
			parts = append(parts, "CYCLE")
		} else {
			parts = append(parts, "NO CYCLE")
		}

		out = append(out, strings.Join(parts, " ")+";")
	}
	return out
}

// bigintInRange parses s's decimal text and reports whether it fits
// PostgreSQL's bigint range. Oracle sequence bounds routinely exceed it
// (the default MAXVALUE is ~9.999...e27), so values outside the range -
// or that fail to parse as a plain integer - are omitted rather than
// truncated or emitted as invalid DDL.
func bigintInRange(s *string) (*big.Int, bool) {
	if s == nil {
		return nil, false
	}
	n, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		return nil, false
	}
	if n.Cmp(bigBigintMin) < 0 || n.Cmp(bigBigintMax) > 0 {
		return nil, false
	}
	return n, true
}

func quoteAll(names []string, mapper *ident.Mapper) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ident.Quote(mapper.Map(n))
	}
	return out
}
