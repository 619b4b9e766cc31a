package entity

import (
	"context"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/table"
)

// WorkInfo is the spec.md §3 "workinfo" row: a single block-template work
// unit. workinfoid is supplied by the pool process, not allocated by
// ckdb's idcontrol sequence.
type WorkInfo struct {
	WorkInfoID      int64
	PoolInstance    string
	TransactionTree []byte
	MerkleHash      string
	PrevHash        string
	Coinbase1       []byte
	Coinbase2       []byte
	Version         string
	Bits            string
	NTime           string
	Reward          float64
	History
}

func workInfoLess(a, b WorkInfo) bool {
	if a.WorkInfoID != b.WorkInfoID {
		return a.WorkInfoID < b.WorkInfoID
	}
	return a.ExpiryDate.After(b.ExpiryDate)
}

func workInfoSameKey(a, b WorkInfo) bool { return a.WorkInfoID == b.WorkInfoID }
func workInfoIsLive(w WorkInfo) bool     { return w.IsLive() }

// WorkInfos is the in-memory mirror of the workinfo table.
type WorkInfos struct {
	tb *table.Table[WorkInfo]
}

// NewWorkInfos constructs an empty WorkInfos mirror.
func NewWorkInfos() *WorkInfos {
	return &WorkInfos{tb: table.New(workInfoLess)}
}

// Find returns the live workinfo row for workinfoid. Shares and
// shareerrors call this to resolve their required reference (spec.md §3
// invariant 2).
func (w *WorkInfos) Find(workinfoid int64) (WorkInfo, bool) {
	probe := WorkInfo{WorkInfoID: workinfoid, History: History{ExpiryDate: ckconst.DefaultExpiry}}
	return w.tb.Find(probe, workInfoSameKey, workInfoIsLive)
}

// Add records a new workinfo row. workinfo is never updated in place —
// each workinfoid from the pool process is a distinct work unit.
func (w *WorkInfos) Add(ctx context.Context, gw dbgateway.DB, code string, row WorkInfo) (WorkInfo, error) {
	row.History = NewHistory(code)

	_, err := gw.Exec(ctx, `INSERT INTO workinfo
		(workinfoid, poolinstance, transactiontree, merklehash, prevhash, coinbase1, coinbase2, version, bits, ntime, reward,
		 createdate, createby, createcode, createinet, expirydate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		row.WorkInfoID, row.PoolInstance, row.TransactionTree, row.MerkleHash, row.PrevHash, row.Coinbase1, row.Coinbase2,
		row.Version, row.Bits, row.NTime, row.Reward,
		row.CreateDate, row.CreateBy, row.CreateCode, row.CreateInet, row.ExpiryDate)
	if err != nil {
		return WorkInfo{}, ckerr.Wrap("entity.WorkInfos.Add insert", err)
	}

	w.tb.Insert(row)
	return row, nil
}

// Fill populates the mirror from every live row in the database.
func (w *WorkInfos) Fill(ctx context.Context, gw dbgateway.DB) error {
	rows, err := gw.Query(ctx, `SELECT workinfoid, poolinstance, transactiontree, merklehash, prevhash, coinbase1, coinbase2,
		version, bits, ntime, reward, createdate, createby, createcode, createinet, expirydate
		FROM workinfo WHERE expirydate = $1`, ckconst.DefaultExpiry)
	if err != nil {
		return ckerr.Wrap("entity.WorkInfos.Fill query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row WorkInfo
		if err := rows.Scan(&row.WorkInfoID, &row.PoolInstance, &row.TransactionTree, &row.MerkleHash, &row.PrevHash,
			&row.Coinbase1, &row.Coinbase2, &row.Version, &row.Bits, &row.NTime, &row.Reward,
			&row.CreateDate, &row.CreateBy, &row.CreateCode, &row.CreateInet, &row.ExpiryDate); err != nil {
			return ckerr.Wrap("entity.WorkInfos.Fill scan", err)
		}
		w.tb.Insert(row)
	}
	return ckerr.Wrap("entity.WorkInfos.Fill rows", rows.Err())
}

// Reload is a deliberate no-op for workinfo (spec.md §9 open-question
// decision (a): "never supported"). The live set stays whatever Fill
// loaded at boot; workinfo rows are numerous and blob-heavy enough that a
// full reload mid-run is not worth the cost, and nothing in the ingest
// path requires picking up workinfo rows created by another instance.
func (w *WorkInfos) Reload(ctx context.Context, gw dbgateway.DB) error {
	return nil
}

// Len reports how many rows the mirror holds.
func (w *WorkInfos) Len() int { return w.tb.Len() }
