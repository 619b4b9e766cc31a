package entity

import (
	"time"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/table"
)

// Share is the spec.md §3 "shares" row. Shares have a synthetic key (no
// DB-assigned id) and are never written to the database — the pool
// process itself is responsible for the share logfile; ckdb only mirrors
// them in memory (spec.md §4.D special case).
type Share struct {
	WorkInfoID      int64
	UserID          int64
	WorkerName      string
	ClientID        int64
	Enonce1         string
	Nonce2          string
	Nonce           string
	Diff            float64
	SDiff           float64
	ErrNum          int32
	ErrorText       string
	SecondaryUserID string
	History
}

func shareLess(a, b Share) bool {
	if a.WorkInfoID != b.WorkInfoID {
		return a.WorkInfoID < b.WorkInfoID
	}
	if a.UserID != b.UserID {
		return a.UserID < b.UserID
	}
	if !a.CreateDate.Equal(b.CreateDate) {
		return a.CreateDate.Before(b.CreateDate)
	}
	if a.Nonce != b.Nonce {
		return a.Nonce < b.Nonce
	}
	return a.ExpiryDate.After(b.ExpiryDate)
}

// Shares is the in-memory mirror of the shares table.
type Shares struct {
	tb *table.Table[Share]
}

// NewShares constructs an empty Shares mirror.
func NewShares() *Shares {
	return &Shares{tb: table.New(shareLess)}
}

// Add validates the share's referential integrity against workinfo and
// workers (spec.md §3 invariant 2: both references must have existed
// before the share's createdate) and, if both resolve, links the row into
// memory. It never touches the database.
func (s *Shares) Add(workinfos *WorkInfos, workers *Workers, row Share) (Share, error) {
	row.CreateDate = time.Now().UTC()
	row.ExpiryDate = ckconst.DefaultExpiry

	wi, ok := workinfos.Find(row.WorkInfoID)
	if !ok || !wi.CreateDate.Before(row.CreateDate) {
		return Share{}, ckerr.ErrIntegrity
	}
	wk, ok := workers.Find(row.UserID, row.WorkerName)
	if !ok || !wk.CreateDate.Before(row.CreateDate) {
		return Share{}, ckerr.ErrIntegrity
	}

	s.tb.Insert(row)
	return row, nil
}

// Len reports how many rows the mirror holds.
func (s *Shares) Len() int { return s.tb.Len() }
