package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/crown/internal/crown"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestStore_RecordReignSkipsRepeats(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	old := crown.State{Holder: "SP1", Price: 5000000, Message: "old"}
	next := crown.State{Holder: "SP2", Price: 7000000, Message: "new reign"}

	for i, st := range []crown.State{old, old, next, next} {
		if err := store.RecordReign(ctx, st, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordReign(%d): %v", i, err)
		}
	}

	events, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Holder != "SP2" || events[0].Price != 7000000 || events[0].Kind != KindReign {
		t.Fatalf("newest event = %+v", events[0])
	}
	if !events[1].At.Equal(base) {
		t.Fatalf("oldest At = %v, want %v", events[1].At, base)
	}
	if events[0].ID == "" || events[0].ID == events[1].ID {
		t.Fatalf("event ids = %q, %q; want distinct", events[0].ID, events[1].ID)
	}
}

func TestStore_RecentMergesClaimsAndReigns(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	if err := store.RecordReign(ctx, crown.State{Holder: "SP1", Price: 1, Message: "a"}, base); err != nil {
		t.Fatalf("RecordReign: %v", err)
	}
	if err := store.RecordClaim(ctx, crown.ClaimAttempt{
		Message: "mine", Payer: "SP2", Price: 1, TxID: "0xabc",
		Status: crown.ClaimAccepted, At: base.Add(time.Second),
	}); err != nil {
		t.Fatalf("RecordClaim: %v", err)
	}
	if err := store.RecordClaim(ctx, crown.ClaimAttempt{
		Message: "again", Payer: "SP2", Price: 1, Error: "signing cancelled",
		Status: crown.ClaimCancelled, At: base.Add(2 * time.Second),
	}); err != nil {
		t.Fatalf("RecordClaim: %v", err)
	}

	events, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (limit)", len(events))
	}
	if events[0].Kind != KindClaim || events[0].Status != crown.ClaimCancelled || events[0].Error != "signing cancelled" {
		t.Fatalf("events[0] = %+v", events[0])
	}
	if events[1].Status != crown.ClaimAccepted || events[1].TxID != "0xabc" || events[1].Holder != "SP2" {
		t.Fatalf("events[1] = %+v", events[1])
	}
}

func TestStore_RecordClaimRejectsUnknownStatus(t *testing.T) {
	store := openTempStore(t)
	if err := store.RecordClaim(context.Background(), crown.ClaimAttempt{Message: "x", Status: "pending"}); err == nil {
		t.Fatal("RecordClaim returned nil error for unknown status")
	}
}

func TestOpen_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := first.RecordReign(ctx, crown.State{Holder: "SP1", Price: 1, Message: "a"}, time.Now()); err != nil {
		t.Fatalf("RecordReign: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer second.Close()
	if err := second.RecordReign(ctx, crown.State{Holder: "SP1", Price: 1, Message: "a"}, time.Now()); err != nil {
		t.Fatalf("RecordReign after reopen: %v", err)
	}
	events, err := second.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events after reopen = %d, want 1", len(events))
	}
}
