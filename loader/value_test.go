package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCSVFieldNull(t *testing.T) {
	assert.Equal(t, `\N`, EncodeCSVField(Value{Kind: KindNull}))
}

func TestEncodeCSVFieldBytes(t *testing.T) {
	v := Classify([]byte{0x00, 0xff})
	assert.Equal(t, `\x00ff`, EncodeCSVField(v))
}

func TestEncodeCSVFieldQuotesEmbeddedQuote(t *testing.T) {
	v := Classify(`he said "hi"`)
	assert.Equal(t, `"he said ""hi"""`, EncodeCSVField(v))
}

func TestEncodeCSVFieldDateTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	v := Classify(ts)
	assert.Equal(t, "2024-01-02 03:04:05", EncodeCSVField(v))
}

func TestEncodeCSVFieldDateOnly(t *testing.T) {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	v := Classify(d)
	assert.Equal(t, KindDate, v.Kind)
	assert.Equal(t, "2024-01-02", EncodeCSVField(v))
}

func TestEncodeCSVRowMatchesSpecScenario(t *testing.T) {
	values := []Value{
		Classify(int64(1)),
		Classify(`he said "hi"`),
		{Kind: KindNull},
		Classify([]byte{0x00, 0xff}),
		Classify(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
	}
	row := EncodeCSVRow(values)
	assert.Equal(t, "1,\"he said \"\"hi\"\"\",\\N,\\x00ff,2024-01-02 03:04:05\n", row)
}

func TestEncodeCSVFieldUnquotedPlainText(t *testing.T) {
	v := Classify("plain")
	assert.Equal(t, "plain", EncodeCSVField(v))
}
