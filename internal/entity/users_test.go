package entity

import (
	"context"
	"testing"

	"github.com/ckpool/ckdb/internal/ckerr"
)

func TestBernsteinHashDeterministic(t *testing.T) {
	a := SecondaryUserID("alice", "alice@example.com")
	b := SecondaryUserID("alice", "alice@example.com")
	if a != b {
		t.Fatalf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("secondaryuserid want 16 hex chars, got %d (%s)", len(a), a)
	}
}

func TestBernsteinHashDiffersOnEmail(t *testing.T) {
	a := SecondaryUserID("alice", "alice@example.com")
	b := SecondaryUserID("alice", "alice+other@example.com")
	if a == b {
		t.Fatalf("expected different hashes for different emailaddress, got %s for both", a)
	}
}

func TestUsersAddThenFindReturnsLiveRow(t *testing.T) {
	gw := newFakeDB()
	users := NewUsers()

	row, err := users.Add(context.Background(), gw, "adduser", "alice", "alice@example.com", "hash123")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if row.UserID == 0 {
		t.Fatal("expected allocated nonzero userid")
	}

	found, ok := users.Find("alice")
	if !ok {
		t.Fatal("expected to find alice after Add")
	}
	if found.UserID != row.UserID {
		t.Fatalf("found userid %d, want %d", found.UserID, row.UserID)
	}
}

func TestUsersAddDuplicateUsernameConflicts(t *testing.T) {
	gw := newFakeDB()
	users := NewUsers()

	if _, err := users.Add(context.Background(), gw, "adduser", "alice", "alice@example.com", "hash123"); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	_, err := users.Add(context.Background(), gw, "adduser", "alice", "other@example.com", "hash456")
	if !ckerr.IsConflict(err) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}
}

func TestUsersFindMissingUsername(t *testing.T) {
	users := NewUsers()
	if _, ok := users.Find("nobody"); ok {
		t.Fatal("expected no row for unregistered username")
	}
}

func TestUsersAddUserIDGapWithinBounds(t *testing.T) {
	gw := newFakeDB()
	users := NewUsers()

	row, err := users.Add(context.Background(), gw, "adduser", "alice", "alice@example.com", "hash123")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if row.UserID < 666 || row.UserID > 999 {
		t.Fatalf("first userid gap should land in [666,999], got %d", row.UserID)
	}
}
