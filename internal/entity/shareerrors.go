package entity

import (
	"time"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/table"
)

// ShareError is the spec.md §3 "shareerrors" row: same referential rules
// as Share, memory + logfile only, never written to the database.
type ShareError struct {
	WorkInfoID      int64
	UserID          int64
	WorkerName      string
	ClientID        int64
	ErrNum          int32
	ErrorText       string
	SecondaryUserID string
	History
}

func shareErrorLess(a, b ShareError) bool {
	if a.WorkInfoID != b.WorkInfoID {
		return a.WorkInfoID < b.WorkInfoID
	}
	if a.UserID != b.UserID {
		return a.UserID < b.UserID
	}
	if !a.CreateDate.Equal(b.CreateDate) {
		return a.CreateDate.Before(b.CreateDate)
	}
	return a.ExpiryDate.After(b.ExpiryDate)
}

// ShareErrors is the in-memory mirror of the shareerrors table.
type ShareErrors struct {
	tb *table.Table[ShareError]
}

// NewShareErrors constructs an empty ShareErrors mirror.
func NewShareErrors() *ShareErrors {
	return &ShareErrors{tb: table.New(shareErrorLess)}
}

// Add validates referential integrity against workinfo and workers the
// same way Shares.Add does, and never touches the database.
func (s *ShareErrors) Add(workinfos *WorkInfos, workers *Workers, row ShareError) (ShareError, error) {
	row.CreateDate = time.Now().UTC()
	row.ExpiryDate = ckconst.DefaultExpiry

	wi, ok := workinfos.Find(row.WorkInfoID)
	if !ok || !wi.CreateDate.Before(row.CreateDate) {
		return ShareError{}, ckerr.ErrIntegrity
	}
	wk, ok := workers.Find(row.UserID, row.WorkerName)
	if !ok || !wk.CreateDate.Before(row.CreateDate) {
		return ShareError{}, ckerr.ErrIntegrity
	}

	s.tb.Insert(row)
	return row, nil
}

// Len reports how many rows the mirror holds.
func (s *ShareErrors) Len() int { return s.tb.Len() }
