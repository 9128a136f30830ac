package loader

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind tags the runtime shape of one fetched column value so the CSV
// encoder never has to reach for open-ended reflection.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindDecimal
	KindText
	KindBytes
	KindDate
	KindTime
	KindDateTime
	KindOther
)

// Value is a classified column value ready for CSV framing.
type Value struct {
	Kind    ValueKind
	Int     int64
	Float   float64
	Decimal string
	Text    string
	Bytes   []byte
	Time    time.Time
}

const dateLayout = "2006-01-02"
const timeLayout = "15:04:05"
const dateTimeLayout = "2006-01-02 15:04:05"
const dateTimeFracLayout = "2006-01-02 15:04:05.999999"

// Classify inspects a driver-returned value and tags it with the kind the
// CSV encoder needs. Unrecognized concrete types fall back to KindOther,
// encoded via their natural string form.
func Classify(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case int64:
		return Value{Kind: KindInt, Int: t}
	case int:
		return Value{Kind: KindInt, Int: int64(t)}
	case int32:
		return Value{Kind: KindInt, Int: int64(t)}
	case float64:
		return Value{Kind: KindFloat, Float: t}
	case float32:
		return Value{Kind: KindFloat, Float: float64(t)}
	case string:
		return Value{Kind: KindText, Text: t}
	case []byte:
		return Value{Kind: KindBytes, Bytes: t}
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return Value{Kind: KindDate, Time: t}
		}
		return Value{Kind: KindDateTime, Time: t}
	case fmt.Stringer:
		return Value{Kind: KindOther, Text: t.String()}
	default:
		return Value{Kind: KindOther, Text: fmt.Sprintf("%v", t)}
	}
}

// DecimalValue builds a Value for a value the caller already has as canonical
// decimal text (e.g. read through a database/sql driver's Valuer as a
// string to avoid float round-tripping of NUMBER columns).
func DecimalValue(text string) Value {
	return Value{Kind: KindDecimal, Decimal: text}
}

// EncodeCSVField renders v as one CSV field per the loader's framing
// rules: NULL -> \N, bytes -> \x + lowercase hex, everything else as text
// with CSV-minimal quoting and doubled embedded quotes.
func EncodeCSVField(v Value) string {
	switch v.Kind {
	case KindNull:
		return `\N`
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindDecimal:
		return v.Decimal
	case KindBytes:
		return `\x` + hex.EncodeToString(v.Bytes)
	case KindDate:
		return v.Time.Format(dateLayout)
	case KindTime:
		return v.Time.Format(timeLayout)
	case KindDateTime:
		if v.Time.Nanosecond() == 0 {
			return v.Time.Format(dateTimeLayout)
		}
		return v.Time.Format(dateTimeFracLayout)
	case KindText, KindOther:
		return quoteCSVField(v.Text)
	default:
		return quoteCSVField(v.Text)
	}
}

func quoteCSVField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// EncodeCSVRow joins fields with commas and a trailing \n, matching the
// target's COPY ... FORMAT csv framing.
func EncodeCSVRow(values []Value) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = EncodeCSVField(v)
	}
	return strings.Join(fields, ",") + "\n"
}
