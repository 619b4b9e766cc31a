package handler

import (
	"context"
	"time"

	"github.com/ckpool/ckdb/internal/ckdlog"
	"github.com/ckpool/ckdb/internal/codec"
	"github.com/ckpool/ckdb/internal/entity"
	"github.com/ckpool/ckdb/internal/transfer"
)

// PoolStats records a periodic pool-statistics snapshot, throttling DB
// writes per spec.md §4.D (scenario S5). The in-memory mirror is always
// updated; the reply does not distinguish whether the DB write actually
// happened, matching the source's web-facing behavior.
func (h *Handlers) PoolStats(ctx context.Context, tm *transfer.Map) string {
	poolinstance, err := tm.RequireName("poolinstance", 1, transfer.PatternUsername)
	if err != nil {
		return err.Error()
	}

	row := entity.PoolStat{PoolInstance: poolinstance, CreateDate: time.Now().UTC()}

	if v, ok := tm.OptionalName("elapsed"); ok {
		row.Elapsed, _ = codec.DecodeInt64(v)
	}
	if v, ok := tm.OptionalName("users"); ok {
		row.Users, _ = codec.DecodeInt64(v)
	}
	if v, ok := tm.OptionalName("workers"); ok {
		row.Workers, _ = codec.DecodeInt64(v)
	}
	row.HashRate, _ = tm.OptionalName("hashrate")
	row.HashRate5m, _ = tm.OptionalName("hashrate5m")
	row.HashRate1hr, _ = tm.OptionalName("hashrate1hr")
	row.HashRate24hr, _ = tm.OptionalName("hashrate24hr")
	if v, ok := tm.OptionalName("diff"); ok {
		row.Diff, _ = codec.DecodeDouble(v)
	}
	if v, ok := tm.OptionalName("accepted"); ok {
		row.Accepted, _ = codec.DecodeDouble(v)
	}
	if v, ok := tm.OptionalName("rejected"); ok {
		row.Rejected, _ = codec.DecodeDouble(v)
	}

	if _, err := h.State.PoolStats.Add(ctx, h.State.DB, row); err != nil {
		ckdlog.Errorf("handler.PoolStats: %v", err)
		return replyBadDBE
	}
	return replyOK
}
