package entity

import (
	"context"
	"testing"
	"time"
)

func TestPoolStatsAddStoresFirstRow(t *testing.T) {
	gw := newFakeDB()
	ps := NewPoolStats()

	stored, err := ps.Add(context.Background(), gw, PoolStat{PoolInstance: "pool0", CreateDate: time.Now().UTC()})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !stored {
		t.Fatal("expected the first row for a poolinstance to always be stored")
	}
}

func TestPoolStatsAddThrottlesWithinStatsPer(t *testing.T) {
	gw := newFakeDB()
	ps := NewPoolStats()
	base := time.Now().UTC()

	if _, err := ps.Add(context.Background(), gw, PoolStat{PoolInstance: "pool0", CreateDate: base}); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	stored, err := ps.Add(context.Background(), gw, PoolStat{PoolInstance: "pool0", CreateDate: base.Add(time.Minute)})
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if stored {
		t.Fatal("expected a row within STATS_PER of the last stored row to be throttled")
	}
}

func TestPoolStatsAddStoresAgainPastStatsPer(t *testing.T) {
	gw := newFakeDB()
	ps := NewPoolStats()
	base := time.Now().UTC()

	if _, err := ps.Add(context.Background(), gw, PoolStat{PoolInstance: "pool0", CreateDate: base}); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	stored, err := ps.Add(context.Background(), gw, PoolStat{PoolInstance: "pool0", CreateDate: base.Add(10 * time.Minute)})
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if !stored {
		t.Fatal("expected a row past STATS_PER to be stored")
	}
}

func TestPoolStatsLatestReturnsMostRecent(t *testing.T) {
	gw := newFakeDB()
	ps := NewPoolStats()
	base := time.Now().UTC()

	ps.Add(context.Background(), gw, PoolStat{PoolInstance: "pool0", CreateDate: base, HashRate: "1"})
	ps.Add(context.Background(), gw, PoolStat{PoolInstance: "pool0", CreateDate: base.Add(time.Minute), HashRate: "2"})

	latest, ok := ps.Latest("pool0")
	if !ok {
		t.Fatal("expected Latest to find a row")
	}
	if latest.HashRate != "2" {
		t.Fatalf("Latest hashrate = %q, want 2 (the most recent row)", latest.HashRate)
	}
}

func TestPoolStatsLatestMissingPoolInstance(t *testing.T) {
	ps := NewPoolStats()
	if _, ok := ps.Latest("nope"); ok {
		t.Fatal("expected no row for unseen poolinstance")
	}
}
