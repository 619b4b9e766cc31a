package entity

import (
	"context"
	"testing"
)

func TestAuthsAddRecordsEveryEvent(t *testing.T) {
	gw := newFakeDB()
	auths := NewAuths()

	first, err := auths.Add(context.Background(), gw, "authorise", 7, "worker.1", 1, "e1", "cgminer/4.10")
	if err != nil {
		t.Fatalf("first Add: %v", err)
	}
	second, err := auths.Add(context.Background(), gw, "authorise", 7, "worker.1", 1, "e2", "cgminer/4.10")
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if first.AuthID == second.AuthID {
		t.Fatal("expected distinct authids for repeated authorise events on the same worker")
	}
	if auths.Len() != 2 {
		t.Fatalf("expected one row per authorise call, got Len=%d", auths.Len())
	}
}

func TestAuthsAddPropagatesAllocationError(t *testing.T) {
	gw := newFakeDB()
	gw.failNextNextID = true
	auths := NewAuths()

	if _, err := auths.Add(context.Background(), gw, "authorise", 7, "worker.1", 1, "e1", "cgminer/4.10"); err == nil {
		t.Fatal("expected error when authid allocation fails")
	}
}
