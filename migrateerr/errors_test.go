package migrateerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatsKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := New(Connectivity, "cannot reach source", cause)
	assert.Contains(t, e.Error(), "ConnectivityError")
	assert.Contains(t, e.Error(), "connection refused")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := New(Batch, "batch write failed", cause)
	assert.True(t, errors.Is(e, cause))
}

func TestWithContextChains(t *testing.T) {
	e := New(Table, "table failed", nil).WithContext("table", "ORDERS").WithContext("rows", 42)
	assert.Equal(t, "ORDERS", e.Context["table"])
	assert.Equal(t, 42, e.Context["rows"])
}

func TestIsChecksKind(t *testing.T) {
	e := New(ValidationMismatch, "count mismatch", nil)
	assert.True(t, Is(e, ValidationMismatch))
	assert.False(t, Is(e, Catalog))
	assert.False(t, Is(errors.New("plain"), Catalog))
}
