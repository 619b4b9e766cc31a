package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 9223372036854775807, -9223372036854775808} {
		text := EncodeInt64(v)
		got, err := DecodeInt64(text)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestInt32RoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 2147483647, -2147483648} {
		text := EncodeInt32(v)
		got, err := DecodeInt32(text)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1.5, -3.14159, 123456.789} {
		text := EncodeDouble(v)
		got, err := DecodeDouble(text)
		require.NoError(t, err)
		assert.InDelta(t, v, got, 1e-6)
	}
}

func TestStringRoundTripWithinWidth(t *testing.T) {
	got := DecodeString("username", "alice", ckconst64)
	assert.Equal(t, "alice", got)
}

func TestStringOverflowPanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*TruncationError)
		assert.True(t, ok, "expected *TruncationError, got %T", r)
	}()
	DecodeString("username", "xxxxxxxxxx", 4)
}

func TestTimestampRoundTripMicroseconds(t *testing.T) {
	t1 := time.Date(2026, 7, 30, 12, 30, 45, 123456000, time.UTC)
	text := EncodeTimestamp(t1)
	assert.Equal(t, "2026-07-30 12:30:45.123456", text)

	got, err := DecodeTimestamp(text + "+00")
	require.NoError(t, err)
	assert.True(t, got.Equal(t1), "decoded %v, want %v", got, t1)
}

func TestDecodeTimestampBothForms(t *testing.T) {
	_, err := DecodeTimestamp("2026-07-30 12:30:45+00")
	require.NoError(t, err)
	_, err = DecodeTimestamp("2026-07-30 12:30:45.123456+00")
	require.NoError(t, err)
}

func TestDecodeTimestampClampsFarFuture(t *testing.T) {
	got, err := DecodeTimestamp("9999-01-01 00:00:00+00")
	require.NoError(t, err)
	assert.True(t, got.Equal(defaultExpiryForTest()))
}

func TestBlobRoundTrip(t *testing.T) {
	b := []byte("some binary-ish text")
	text := EncodeBlob(b)
	got := DecodeBlob(text)
	assert.Equal(t, b, got)
}

const ckdbTestWidth = 64
const ckconst64 = ckdbTestWidth

func defaultExpiryForTest() time.Time {
	return time.Date(6666, time.June, 6, 6, 6, 6, 0, time.UTC)
}
