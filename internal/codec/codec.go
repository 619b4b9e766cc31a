// Package codec converts between the wire/DB text representation and the Go
// types used throughout ckdb's entity and transfer layers: string, int64,
// int32, a microsecond timestamp, double, and blob (an unbounded string).
//
// Grounded on spec.md §4.B. The "destination too small" case is a
// deliberately fatal invariant violation (a schema/width bug, not bad input)
// so TruncationError is meant to be handled with log.Fatalf by callers, not
// swallowed.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/ckpool/ckdb/internal/ckconst"
)

// compile-time assertion that int64 is 8 bytes on this platform, matching
// spec.md §4.B's "int64 must be 8 bytes; anything else is a build-time
// error."
var _ [8]byte = [unsafe.Sizeof(int64(0))]byte{}

// TruncationError is raised when a text value would not fit in a
// fixed-width column. This must never happen against a correctly migrated
// schema; callers treat it as fatal.
type TruncationError struct {
	Field    string
	MaxWidth int
	Got      int
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("codec: field %q value is %d bytes, exceeds column width %d", e.Field, e.Got, e.MaxWidth)
}

// DecodeString validates that text fits within maxWidth (reserving room for
// the conceptual NUL terminator the original fixed C buffers required) and
// returns it unmodified. It panics with *TruncationError on overflow — the
// schema and the code are expected to agree on widths.
func DecodeString(field, text string, maxWidth int) string {
	if len(text) >= maxWidth {
		panic(&TruncationError{Field: field, MaxWidth: maxWidth, Got: len(text)})
	}
	return text
}

// EncodeString is the identity conversion for the text wire format; kept so
// call sites read symmetrically with DecodeString.
func EncodeString(text string) string {
	return text
}

// DecodeInt64 parses a decimal integer.
func DecodeInt64(text string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("codec: invalid int64 %q: %w", text, err)
	}
	return v, nil
}

// EncodeInt64 renders v as a base-10 string.
func EncodeInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}

// DecodeInt32 parses a decimal 32-bit integer.
func DecodeInt32(text string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("codec: invalid int32 %q: %w", text, err)
	}
	return int32(v), nil
}

// EncodeInt32 renders v as a base-10 string.
func EncodeInt32(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// DecodeDouble parses a floating-point value.
func DecodeDouble(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("codec: invalid double %q: %w", text, err)
	}
	return v, nil
}

// EncodeDouble renders v the way the DB column expects: fixed-point, six
// fractional digits, matching spec.md §8 property 2 ("doubles to %f").
func EncodeDouble(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// timestamp layouts accepted on decode: with and without a microsecond
// fraction, always followed by a numeric UTC-offset zone.
const (
	layoutWithFrac    = "2006-01-02 15:04:05.999999-07"
	layoutWithoutFrac = "2006-01-02 15:04:05-07"
	// EncodeLayout is what typed->text timestamp encoding emits: no zone
	// suffix, since the DB column carries a zone default (spec.md §4.B).
	EncodeLayout = "2006-01-02 15:04:05.000000"
)

// DecodeTimestamp parses a DB timestamp in either
// "YYYY-MM-DD HH:MM:SS+TZ" or "YYYY-MM-DD HH:MM:SS.uuuuuu+TZ" form and
// applies the CompareExpiry clamp (spec.md §3 invariant 5, §4.B). The zone
// offset in the text decides the instant, which is returned in UTC; the
// wall-clock fields are not reinterpreted in local time.
func DecodeTimestamp(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	var (
		t   time.Time
		err error
	)
	if strings.Contains(text, ".") {
		t, err = time.ParseInLocation(layoutWithFrac, text, time.Local)
	} else {
		t, err = time.ParseInLocation(layoutWithoutFrac, text, time.Local)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("codec: invalid timestamp %q: %w", text, err)
	}
	return ckconst.CoerceExpiry(t.UTC()), nil
}

// EncodeTimestamp renders t as "YYYY-MM-DD HH:MM:SS.uuuuuu" with no zone
// suffix (spec.md §4.B).
func EncodeTimestamp(t time.Time) string {
	return t.UTC().Format(EncodeLayout)
}

// DecodeBlob is the identity conversion: blobs are unbounded, heap-owned
// text with no width check.
func DecodeBlob(text string) []byte {
	return []byte(text)
}

// EncodeBlob renders a blob back to its text form for DB parameter binding.
func EncodeBlob(b []byte) string {
	return string(b)
}
