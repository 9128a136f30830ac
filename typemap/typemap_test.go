package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestMap(t *testing.T) {
	cases := []struct {
		name            string
		typeName        string
		precision       *int
		scale           *int
		wantTarget      string
		wantRowIdentity bool
	}{
		{"number with precision and scale", "NUMBER", intp(10), intp(2), "numeric(10,2)", false},
		{"number bare", "NUMBER", nil, nil, "numeric", false},
		{"varchar2 with length", "VARCHAR2", intp(50), nil, "varchar(50)", false},
		{"date ignores precision", "DATE", intp(6), nil, "timestamp(0)", false},
		{"clob", "CLOB", nil, nil, "text", false},
		{"blob ignores precision", "BLOB", intp(16), nil, "bytea", false},
		{"xmltype", "XMLType", nil, nil, "xml", false},
		{"json", "JSON", nil, nil, "jsonb", false},
		{"boolean", "BOOLEAN", nil, nil, "boolean", false},
		{"urowid", "UROWID", nil, nil, "uuid", false},
		{"rowid unsupported", "ROWID", nil, nil, "text", true},
		{"spatial", "SDO_GEOMETRY", nil, nil, "geometry", false},
		{"unknown falls back to text", "SOME_MADE_UP_TYPE", nil, nil, "text", false},
		{"lowercase input normalized", "number", intp(5), nil, "numeric(5)", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, rowIdent := Map(c.typeName, c.precision, c.scale)
			assert.Equal(t, c.wantTarget, got)
			assert.Equal(t, c.wantRowIdentity, rowIdent)
		})
	}
}
