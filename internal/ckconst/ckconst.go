// Package ckconst holds the sentinel timestamps and tunables shared across
// ckdb's storage and accounting layers.
package ckconst

import "time"

// DefaultExpiry is the sentinel expirydate for a row that is still live:
// 6666-06-06 06:06:06 UTC.
var DefaultExpiry = time.Date(6666, time.June, 6, 6, 6, 6, 0, time.UTC)

// CompareExpiry is the upper bound past which a parsed timestamp is treated
// as corrupt (e.g. a timezone parse error) and coerced to DefaultExpiry:
// 6666-06-01 00:00:00 UTC.
var CompareExpiry = time.Date(6666, time.June, 1, 0, 0, 0, 0, time.UTC)

// DateEOT is the upper sentinel for "not yet known", distinct from
// DefaultExpiry: 9999-12-31 23:59:59 UTC.
var DateEOT = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// StatsPer is the minimum spacing between two poolstats rows for the same
// poolinstance that both get written to the database (9.5 minutes).
const StatsPer = 9*time.Minute + 30*time.Second

// UserIDGapMin and UserIDGapMax bound the random increment applied to the
// "userid" idcontrol sequence, so consecutive userids don't reveal how many
// users joined between two registrations.
const (
	UserIDGapMin = 666
	UserIDGapMax = 999
)

// Column width classes, matching the fixed-width text columns described in
// spec.md §6. No code in this module references them; codec.DecodeString
// takes its width limit as a parameter.
const (
	ColWidthBig    = 256
	ColWidthMedium = 128
	ColWidthSmall  = 64
	ColWidthFlag   = 1
)

// CoerceExpiry clamps a timestamp parsed from the database: if it exceeds
// CompareExpiry it is almost certainly a timezone parse artifact rather than
// a genuine far-future date, so it is replaced with DefaultExpiry (spec.md
// §3 invariant 5).
func CoerceExpiry(t time.Time) time.Time {
	if t.After(CompareExpiry) {
		return DefaultExpiry
	}
	return t
}

// IsLive reports whether expirydate marks a row as the current live version.
func IsLive(expiry time.Time) bool {
	return expiry.Equal(DefaultExpiry)
}
