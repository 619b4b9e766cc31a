// Package entity defines ckdb's nine row types (spec.md §3) and the
// Add/Fill/Reload operations each one supports (spec.md §4.D), built on
// internal/table for the in-memory mirror and internal/dbgateway for
// persistence.
//
// Grounded on the teacher's one-file-per-entity layout in
// internal/storage/sqlite (issues.go, labels.go, ...), generalized from
// beads' sqlite/database-sql style to pgx/v5 parameter binding.
package entity

import (
	"time"

	"github.com/ckpool/ckdb/internal/ckconst"
)

// History is the create-only, expiring date-control bundle shared by
// users, workers, payments, workinfo, shares, shareerrors and auths
// (spec.md §3 "History").
type History struct {
	CreateDate time.Time
	CreateBy   string
	CreateCode string
	CreateInet string
	ExpiryDate time.Time
}

// NewHistory stamps a brand-new live row, recording which command code
// created it (e.g. "adduser", "authorise") the way the source's
// createcode column does.
func NewHistory(code string) History {
	return History{
		CreateDate: time.Now().UTC(),
		CreateBy:   "code",
		CreateCode: code,
		CreateInet: "127.0.0.1",
		ExpiryDate: ckconst.DefaultExpiry,
	}
}

// Expired returns a copy of h with ExpiryDate set to now, used when
// building the "old" half of an expire-and-insert update.
func (h History) Expired(now time.Time) History {
	h.ExpiryDate = now
	return h
}

// IsLive reports whether h's row is the current version.
func (h History) IsLive() bool {
	return ckconst.IsLive(h.ExpiryDate)
}
