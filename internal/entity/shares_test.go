package entity

import (
	"context"
	"testing"
	"time"

	"github.com/ckpool/ckdb/internal/ckerr"
)

func setupWorkInfoAndWorker(t *testing.T) (*WorkInfos, *Workers) {
	t.Helper()
	gw := newFakeDB()
	wi := NewWorkInfos()
	if _, err := wi.Add(context.Background(), gw, "sharelog.workinfo", WorkInfo{WorkInfoID: 9999}); err != nil {
		t.Fatalf("workinfo Add: %v", err)
	}
	workers := NewWorkers()
	if _, _, err := workers.EnsureExists(context.Background(), gw, "authorise", 7, "worker.1"); err != nil {
		t.Fatalf("worker EnsureExists: %v", err)
	}
	time.Sleep(time.Millisecond)
	return wi, workers
}

func TestSharesAddSucceedsWhenReferencesResolve(t *testing.T) {
	wi, workers := setupWorkInfoAndWorker(t)
	shares := NewShares()

	row, err := shares.Add(wi, workers, Share{WorkInfoID: 9999, UserID: 7, WorkerName: "worker.1", Nonce: "abc"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !row.IsLive() {
		t.Fatal("expected inserted share to be live")
	}
	if shares.Len() != 1 {
		t.Fatalf("expected 1 share in mirror, got %d", shares.Len())
	}
}

func TestSharesAddFailsOnUnknownWorkInfo(t *testing.T) {
	wi, workers := setupWorkInfoAndWorker(t)
	shares := NewShares()

	_, err := shares.Add(wi, workers, Share{WorkInfoID: 424242, UserID: 7, WorkerName: "worker.1"})
	if !ckerr.IsIntegrity(err) {
		t.Fatalf("expected ErrIntegrity for unknown workinfoid, got %v", err)
	}
}

func TestSharesAddFailsOnUnknownWorker(t *testing.T) {
	wi, workers := setupWorkInfoAndWorker(t)
	shares := NewShares()

	_, err := shares.Add(wi, workers, Share{WorkInfoID: 9999, UserID: 7, WorkerName: "no.such.worker"})
	if !ckerr.IsIntegrity(err) {
		t.Fatalf("expected ErrIntegrity for unknown worker, got %v", err)
	}
}

func TestShareErrorsAddSameIntegrityRules(t *testing.T) {
	wi, workers := setupWorkInfoAndWorker(t)
	shareErrors := NewShareErrors()

	if _, err := shareErrors.Add(wi, workers, ShareError{WorkInfoID: 9999, UserID: 7, WorkerName: "worker.1", ErrNum: 23}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := shareErrors.Add(wi, workers, ShareError{WorkInfoID: 1, UserID: 7, WorkerName: "worker.1"}); !ckerr.IsIntegrity(err) {
		t.Fatalf("expected ErrIntegrity for unknown workinfoid, got %v", err)
	}
}
