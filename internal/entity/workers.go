package entity

import (
	"context"
	"time"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/table"
)

// Default worker settings applied when authorise auto-provisions a worker
// row (spec.md S3): difficultydefault 10, idle notifications off, 10
// minute idle window.
const (
	DefaultDifficulty       = 10
	DefaultIdleNotification = " "
	DefaultIdleMinutes      = 10
)

// Worker is the spec.md §3 "workers" row.
type Worker struct {
	UserID                  int64
	WorkerID                int64
	WorkerName              string
	DifficultyDefault       int64
	IdleNotificationEnabled string
	IdleNotificationMinutes int64
	History
}

func workerLess(a, b Worker) bool {
	if a.UserID != b.UserID {
		return a.UserID < b.UserID
	}
	if a.WorkerName != b.WorkerName {
		return a.WorkerName < b.WorkerName
	}
	return a.ExpiryDate.After(b.ExpiryDate)
}

func workerSameKey(a, b Worker) bool {
	return a.UserID == b.UserID && a.WorkerName == b.WorkerName
}
func workerIsLive(w Worker) bool { return w.IsLive() }

// Workers is the in-memory mirror of the workers table.
type Workers struct {
	tb *table.Table[Worker]
}

// NewWorkers constructs an empty Workers mirror.
func NewWorkers() *Workers {
	return &Workers{tb: table.New(workerLess)}
}

// Find returns the live worker row for (userid, workername).
func (w *Workers) Find(userid int64, workername string) (Worker, bool) {
	probe := Worker{UserID: userid, WorkerName: workername, History: History{ExpiryDate: ckconst.DefaultExpiry}}
	return w.tb.Find(probe, workerSameKey, workerIsLive)
}

// EnsureExists returns the live worker for (userid, workername), creating
// one with default settings if it doesn't exist yet — the auto-provision
// path the authorise handler uses (spec.md §4.D, scenario S3).
func (w *Workers) EnsureExists(ctx context.Context, gw dbgateway.DB, code string, userid int64, workername string) (Worker, bool, error) {
	if existing, ok := w.Find(userid, workername); ok {
		return existing, false, nil
	}

	workerid, err := gw.NextID(ctx, "workerid", 1)
	if err != nil {
		return Worker{}, false, ckerr.Wrap("entity.Workers.EnsureExists allocate workerid", err)
	}

	row := Worker{
		UserID:                  userid,
		WorkerID:                workerid,
		WorkerName:              workername,
		DifficultyDefault:       DefaultDifficulty,
		IdleNotificationEnabled: DefaultIdleNotification,
		IdleNotificationMinutes: DefaultIdleMinutes,
		History:                 NewHistory(code),
	}

	if err := w.insert(ctx, gw, row); err != nil {
		return Worker{}, false, err
	}
	w.tb.Insert(row)
	return row, true, nil
}

func (w *Workers) insert(ctx context.Context, gw dbgateway.DB, row Worker) error {
	_, err := gw.Exec(ctx, `INSERT INTO workers
		(userid, workerid, workername, difficultydefault, idlenotificationenabled, idlenotificationtime,
		 createdate, createby, createcode, createinet, expirydate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		row.UserID, row.WorkerID, row.WorkerName, row.DifficultyDefault, row.IdleNotificationEnabled, row.IdleNotificationMinutes,
		row.CreateDate, row.CreateBy, row.CreateCode, row.CreateInet, row.ExpiryDate)
	return ckerr.Wrap("entity.Workers.insert", err)
}

// UpdateSettings applies the history-preserving update pattern: if any of
// the three mutable settings differ from the current live row, the live
// row is expired and a new one inserted in one transaction (spec.md
// §4.D). It returns the row unchanged (and updated=false) if nothing
// differs.
func (w *Workers) UpdateSettings(ctx context.Context, gw dbgateway.DB, code string, current Worker, difficulty int64, idleEnabled string, idleMinutes int64) (Worker, bool, error) {
	if current.DifficultyDefault == difficulty && current.IdleNotificationEnabled == idleEnabled && current.IdleNotificationMinutes == idleMinutes {
		return current, false, nil
	}

	now := time.Now().UTC()
	next := current
	next.DifficultyDefault = difficulty
	next.IdleNotificationEnabled = idleEnabled
	next.IdleNotificationMinutes = idleMinutes
	next.History = NewHistory(code)

	insertSQL := `INSERT INTO workers
		(userid, workerid, workername, difficultydefault, idlenotificationenabled, idlenotificationtime,
		 createdate, createby, createcode, createinet, expirydate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	insertArgs := []interface{}{
		next.UserID, next.WorkerID, next.WorkerName, next.DifficultyDefault, next.IdleNotificationEnabled, next.IdleNotificationMinutes,
		next.CreateDate, next.CreateBy, next.CreateCode, next.CreateInet, next.ExpiryDate,
	}

	err := gw.ExpireAndInsert(ctx, "workers",
		"workerid = $2 AND expirydate = $3",
		[]interface{}{current.WorkerID, ckconst.DefaultExpiry},
		now, insertSQL, insertArgs)
	if err != nil {
		return Worker{}, false, ckerr.Wrap("entity.Workers.UpdateSettings", err)
	}

	w.tb.Delete(current)
	current.ExpiryDate = now
	w.tb.Insert(current)
	w.tb.Insert(next)
	return next, true, nil
}

// Fill populates the mirror from every live row in the database.
func (w *Workers) Fill(ctx context.Context, gw dbgateway.DB) error {
	rows, err := gw.Query(ctx, `SELECT userid, workerid, workername, difficultydefault, idlenotificationenabled, idlenotificationtime,
		createdate, createby, createcode, createinet, expirydate
		FROM workers WHERE expirydate = $1`, ckconst.DefaultExpiry)
	if err != nil {
		return ckerr.Wrap("entity.Workers.Fill query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row Worker
		if err := rows.Scan(&row.UserID, &row.WorkerID, &row.WorkerName, &row.DifficultyDefault,
			&row.IdleNotificationEnabled, &row.IdleNotificationMinutes,
			&row.CreateDate, &row.CreateBy, &row.CreateCode, &row.CreateInet, &row.ExpiryDate); err != nil {
			return ckerr.Wrap("entity.Workers.Fill scan", err)
		}
		w.tb.Insert(row)
	}
	return ckerr.Wrap("entity.Workers.Fill rows", rows.Err())
}

// Reload discards the mirror and repopulates it from the database.
func (w *Workers) Reload(ctx context.Context, gw dbgateway.DB) error {
	w.tb.Clear()
	return w.Fill(ctx, gw)
}

// Len reports how many rows the mirror holds.
func (w *Workers) Len() int { return w.tb.Len() }
