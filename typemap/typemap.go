// Package typemap maps Oracle catalog type names to PostgreSQL type text.
package typemap

import (
	"fmt"
	"strconv"
	"strings"
)

// base holds the Postgres type name for a given Oracle type name, before
// any precision/scale is applied.
var base = map[string]string{
	"NUMBER":        "numeric",
	"INTEGER":       "integer",
	"INT":           "integer",
	"SMALLINT":      "smallint",
	"FLOAT":         "float",
	"BINARY_FLOAT":  "real",
	"BINARY_DOUBLE": "real",
	"DOUBLE":        "double precision",

	"CHAR":      "char",
	"NCHAR":     "char",
	"CHARACTER": "char",
	"VARCHAR2":  "varchar",
	"NVARCHAR2": "varchar",

	"LONG":  "text",
	"CLOB":  "text",
	"NCLOB": "text",

	"RAW":    "bytea",
	"BLOB":   "bytea",
	"BFILE":  "bytea",

	"DATE":      "timestamp(0)",
	"TIMESTAMP": "timestamp",

	"XMLTYPE": "xml",
	"JSON":    "jsonb",
	"BOOLEAN": "boolean",

	"UROWID": "uuid",
}

// typesWithoutPrecisionSuffix never accept a (precision[,scale]) suffix,
// even when the column metadata carries one (e.g. DATE's implicit (0) is
// already baked into the base mapping).
var typesWithoutPrecisionSuffix = map[string]bool{
	"DATE":      true,
	"TIMESTAMP": true,
	"XMLTYPE":   true,
	"JSON":      true,
	"BOOLEAN":   true,
	"UROWID":    true,
	"LONG":      true,
	"CLOB":      true,
	"NCLOB":     true,
	"BLOB":      true,
	"BFILE":     true,
}

// Map translates an Oracle type name (plus optional precision/scale) into
// PostgreSQL type text. Unknown types fall back to "text" so a plan can
// always be produced; rowIdent reports whether the source type was the
// unsupported Oracle ROWID pseudotype.
func Map(typeName string, precision, scale *int) (target string, rowIdent bool) {
	name := strings.ToUpper(strings.TrimSpace(typeName))

	if strings.HasPrefix(name, "SDO_") {
		return "geometry", false
	}

	if name == "ROWID" {
		return "text", true
	}

	b, ok := base[name]
	if !ok {
		return "text", false
	}

	if typesWithoutPrecisionSuffix[name] {
		return b, false
	}

	return b + precisionSuffix(precision, scale), false
}

// precisionSuffix renders the "(p[,s])" suffix, scrubbing the stray
// "(None)"/"(None,None)" forms that a null precision/scale would otherwise
// produce.
func precisionSuffix(precision, scale *int) string {
	switch {
	case precision != nil && scale != nil:
		return fmt.Sprintf("(%d,%d)", *precision, *scale)
	case precision != nil:
		return "(" + strconv.Itoa(*precision) + ")"
	default:
		return ""
	}
}
