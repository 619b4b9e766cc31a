package entity

import (
	"context"
	"testing"
)

func TestWorkersEnsureExistsCreatesOnFirstCall(t *testing.T) {
	gw := newFakeDB()
	workers := NewWorkers()

	row, created, err := workers.EnsureExists(context.Background(), gw, "authorise", 100, "worker.1")
	if err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	if !created {
		t.Fatal("expected created=true on first call")
	}
	if row.DifficultyDefault != DefaultDifficulty {
		t.Fatalf("difficultydefault = %d, want default %d", row.DifficultyDefault, DefaultDifficulty)
	}
	if row.IdleNotificationMinutes != DefaultIdleMinutes {
		t.Fatalf("idlenotificationminutes = %d, want default %d", row.IdleNotificationMinutes, DefaultIdleMinutes)
	}
}

func TestWorkersEnsureExistsIsIdempotent(t *testing.T) {
	gw := newFakeDB()
	workers := NewWorkers()

	first, _, err := workers.EnsureExists(context.Background(), gw, "authorise", 100, "worker.1")
	if err != nil {
		t.Fatalf("first EnsureExists: %v", err)
	}
	second, created, err := workers.EnsureExists(context.Background(), gw, "authorise", 100, "worker.1")
	if err != nil {
		t.Fatalf("second EnsureExists: %v", err)
	}
	if created {
		t.Fatal("expected created=false on second call for same (userid, workername)")
	}
	if second.WorkerID != first.WorkerID {
		t.Fatalf("second call returned different workerid %d, want %d", second.WorkerID, first.WorkerID)
	}
	if workers.Len() != 1 {
		t.Fatalf("expected exactly one row in mirror, got %d", workers.Len())
	}
}

func TestWorkersUpdateSettingsNoopWhenUnchanged(t *testing.T) {
	gw := newFakeDB()
	workers := NewWorkers()
	current, _, _ := workers.EnsureExists(context.Background(), gw, "authorise", 100, "worker.1")

	_, updated, err := workers.UpdateSettings(context.Background(), gw, "workers.set",
		current, current.DifficultyDefault, current.IdleNotificationEnabled, current.IdleNotificationMinutes)
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if updated {
		t.Fatal("expected updated=false when settings are unchanged")
	}
	if workers.Len() != 1 {
		t.Fatalf("expected no new row inserted, mirror has %d rows", workers.Len())
	}
}

func TestWorkersUpdateSettingsExpiresAndInsertsOnChange(t *testing.T) {
	gw := newFakeDB()
	workers := NewWorkers()
	current, _, _ := workers.EnsureExists(context.Background(), gw, "authorise", 100, "worker.1")

	next, updated, err := workers.UpdateSettings(context.Background(), gw, "workers.set", current, 50, "y", 30)
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if !updated {
		t.Fatal("expected updated=true when difficulty changes")
	}
	if next.DifficultyDefault != 50 {
		t.Fatalf("difficultydefault = %d, want 50", next.DifficultyDefault)
	}

	found, ok := workers.Find(100, "worker.1")
	if !ok {
		t.Fatal("expected live row to still resolve after update")
	}
	if found.DifficultyDefault != 50 {
		t.Fatalf("live row difficultydefault = %d, want 50", found.DifficultyDefault)
	}
	if !found.IsLive() {
		t.Fatal("expected the new row to be the live one")
	}
}
