package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapNormalizesAndQuotes(t *testing.T) {
	m := NewMapper()
	mapped := m.Map("Order Details#1")
	assert.Equal(t, "order_details_1", mapped)
	assert.Equal(t, `"order_details_1"`, Quote(mapped))
}

func TestMapIsMemoizedAndDeterministic(t *testing.T) {
	m := NewMapper()
	a := m.Map("CUSTOMERS")
	b := m.Map("CUSTOMERS")
	assert.Equal(t, a, b)

	m2 := NewMapper()
	c := m2.Map("CUSTOMERS")
	assert.Equal(t, a, c)
}

func TestMapLongNameIsTruncatedWithHashSuffix(t *testing.T) {
	m := NewMapper()
	long := "This_Is_A_Very_Long_Table_Name_Exceeding_Sixty_Three_Characters_For_Sure"
	mapped := m.Map(long)
	require.LessOrEqual(t, len(mapped), MaxIdentLength)
	assert.Equal(t, MaxIdentLength, len(mapped))

	idx := strings.LastIndex(mapped, "_")
	require.NotEqual(t, -1, idx)
	suffix := mapped[idx+1:]
	assert.Len(t, suffix, 8)
}

func TestMapCollisionsGetDisambiguated(t *testing.T) {
	m := NewMapper()
	// Two distinct originals that normalize to the same base identifier.
	a := m.Map("weird!name")
	b := m.Map("weird#name")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "weird_name", a)
	assert.True(t, strings.HasPrefix(b, "weird_name"))
}

func TestQuoteReservedWord(t *testing.T) {
	assert.Equal(t, `"user"`, Quote("user"))
	assert.Equal(t, "plain_column", Quote("plain_column"))
	assert.Equal(t, `"has""quote"`, Quote(`has"quote`))
}

func TestQuoteEmpty(t *testing.T) {
	assert.Equal(t, `""`, Quote(""))
}
