package entity

import (
	"context"
	"sync"
	"time"

	"github.com/ckpool/ckdb/internal/ckconst"
	"github.com/ckpool/ckdb/internal/ckerr"
	"github.com/ckpool/ckdb/internal/dbgateway"
	"github.com/ckpool/ckdb/internal/table"
)

// PoolStat is the spec.md §3 "poolstats" row. It carries the Simple
// (append-only, no expiry) date-control bundle, so it has no ExpiryDate.
type PoolStat struct {
	PoolInstance string
	Elapsed      int64
	Users        int64
	Workers      int64
	HashRate     string
	HashRate5m   string
	HashRate1hr  string
	HashRate24hr string
	Diff         float64
	Accepted     float64
	Rejected     float64
	CreateDate   time.Time
}

func poolStatLess(a, b PoolStat) bool {
	if a.PoolInstance != b.PoolInstance {
		return a.PoolInstance < b.PoolInstance
	}
	return a.CreateDate.Before(b.CreateDate)
}

// PoolStats is the in-memory mirror of the poolstats table, plus the
// per-poolinstance "last stored" watermark that implements spec.md §4.D's
// STATS_PER throttle (scenario S5).
type PoolStats struct {
	tb *table.Table[PoolStat]

	mu        sync.Mutex
	lastStore map[string]time.Time
}

// NewPoolStats constructs an empty PoolStats mirror.
func NewPoolStats() *PoolStats {
	return &PoolStats{tb: table.New(poolStatLess), lastStore: make(map[string]time.Time)}
}

// Add always links row into memory. It additionally writes row to the
// database if the last stored row for row.PoolInstance is more than
// STATS_PER older than row.CreateDate (or there is no prior stored row),
// in which case it reports stored=true.
func (p *PoolStats) Add(ctx context.Context, gw dbgateway.DB, row PoolStat) (stored bool, err error) {
	p.tb.Insert(row)

	p.mu.Lock()
	last, seen := p.lastStore[row.PoolInstance]
	shouldStore := !seen || row.CreateDate.Sub(last) > ckconst.StatsPer
	if shouldStore {
		p.lastStore[row.PoolInstance] = row.CreateDate
	}
	p.mu.Unlock()

	if !shouldStore {
		return false, nil
	}

	_, err = gw.Exec(ctx, `INSERT INTO poolstats
		(poolinstance, elapsed, users, workers, hashrate, hashrate5m, hashrate1hr, hashrate24hr, diff, accepted, rejected, createdate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		row.PoolInstance, row.Elapsed, row.Users, row.Workers, row.HashRate, row.HashRate5m, row.HashRate1hr, row.HashRate24hr,
		row.Diff, row.Accepted, row.Rejected, row.CreateDate)
	if err != nil {
		return false, ckerr.Wrap("entity.PoolStats.Add insert", err)
	}
	return true, nil
}

// Latest returns the most recently inserted row (live or not — poolstats
// has no expiry) for poolinstance.
func (p *PoolStats) Latest(poolinstance string) (PoolStat, bool) {
	var found PoolStat
	ok := false
	probe := PoolStat{PoolInstance: poolinstance, CreateDate: ckconst.DateEOT}
	p.tb.DescendLessOrEqual(probe, func(row PoolStat) bool {
		if row.PoolInstance != poolinstance {
			return false
		}
		found, ok = row, true
		return false
	})
	return found, ok
}

// Fill populates the mirror and the last-store watermark from the
// database's most recent row per poolinstance. Unlike the History
// entities there is no "expirydate = DEFAULT_EXPIRY" filter — every row
// is permanent, so Fill loads the full table.
func (p *PoolStats) Fill(ctx context.Context, gw dbgateway.DB) error {
	rows, err := gw.Query(ctx, `SELECT poolinstance, elapsed, users, workers, hashrate, hashrate5m, hashrate1hr, hashrate24hr,
		diff, accepted, rejected, createdate FROM poolstats ORDER BY poolinstance, createdate`)
	if err != nil {
		return ckerr.Wrap("entity.PoolStats.Fill query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row PoolStat
		if err := rows.Scan(&row.PoolInstance, &row.Elapsed, &row.Users, &row.Workers,
			&row.HashRate, &row.HashRate5m, &row.HashRate1hr, &row.HashRate24hr,
			&row.Diff, &row.Accepted, &row.Rejected, &row.CreateDate); err != nil {
			return ckerr.Wrap("entity.PoolStats.Fill scan", err)
		}
		p.tb.Insert(row)
		p.mu.Lock()
		p.lastStore[row.PoolInstance] = row.CreateDate
		p.mu.Unlock()
	}
	return ckerr.Wrap("entity.PoolStats.Fill rows", rows.Err())
}

// Reload discards the mirror and repopulates it from the database.
func (p *PoolStats) Reload(ctx context.Context, gw dbgateway.DB) error {
	p.tb.Clear()
	p.mu.Lock()
	p.lastStore = make(map[string]time.Time)
	p.mu.Unlock()
	return p.Fill(ctx, gw)
}

// Len reports how many rows the mirror holds.
func (p *PoolStats) Len() int { return p.tb.Len() }
