package oradb

import (
	"testing"

	"github.com/ora2pg/migrator/loader"
)

func TestNumberValue(t *testing.T) {
	v := numberValue("42.50")
	if v.Kind != loader.KindDecimal || v.Decimal != "42.50" {
		t.Fatalf("numberValue(42.50) = %+v", v)
	}
}

func TestNumberValueEmptyIsNull(t *testing.T) {
	v := numberValue("")
	if v.Kind != loader.KindNull {
		t.Fatalf("numberValue(\"\") = %+v, want KindNull", v)
	}
}

func TestStringOf(t *testing.T) {
	if got := stringOf([]byte("hello")); got != "hello" {
		t.Fatalf("stringOf([]byte) = %s", got)
	}
	if got := stringOf("hello"); got != "hello" {
		t.Fatalf("stringOf(string) = %s", got)
	}
}

func TestBytesOf(t *testing.T) {
	if got := string(bytesOf([]byte{0x00, 0xff})); got != string([]byte{0x00, 0xff}) {
		t.Fatalf("bytesOf([]byte) mismatch")
	}
	if got := string(bytesOf("raw")); got != "raw" {
		t.Fatalf("bytesOf(string) = %s", got)
	}
}

func TestOracleIdent(t *testing.T) {
	if got := oracleIdent("orders"); got != `"ORDERS"` {
		t.Fatalf("oracleIdent(orders) = %s", got)
	}
}
