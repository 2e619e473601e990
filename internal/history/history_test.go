package history

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Expected clean close, got %v", err)
		}
	})
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{RequestID: "req-1", SourceURL: "https://youtu.be/a", Channel: "general", Outcome: "delivered", RemoteAddr: "10.0.0.1"},
		{RequestID: "req-2", SourceURL: "https://youtu.be/b", Channel: "memes", Outcome: "rejected_duration"},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Expected record of %s to succeed, got %v", e.RequestID, err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Expected recent query to succeed, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}

	// Same-second inserts fall back to id ordering, newest first
	if got[0].RequestID != "req-2" {
		t.Errorf("Expected req-2 first, got %s", got[0].RequestID)
	}
	if got[1].RequestID != "req-1" {
		t.Errorf("Expected req-1 second, got %s", got[1].RequestID)
	}
	if got[1].Outcome != "delivered" || got[1].Channel != "general" {
		t.Errorf("Entry fields not preserved: %+v", got[1])
	}
	if got[1].RemoteAddr != "10.0.0.1" {
		t.Errorf("Expected remote addr 10.0.0.1, got %q", got[1].RemoteAddr)
	}
	if got[0].RemoteAddr != "" {
		t.Errorf("Expected empty remote addr, got %q", got[0].RemoteAddr)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("Expected created-at timestamp to be set")
	}
}

func TestRecordUpsertsOutcome(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := Entry{RequestID: "req-1", SourceURL: "https://youtu.be/a", Channel: "general", Outcome: "download_failed"}
	if err := s.Record(ctx, e); err != nil {
		t.Fatalf("Expected first record to succeed, got %v", err)
	}
	e.Outcome = "delivered"
	if err := s.Record(ctx, e); err != nil {
		t.Fatalf("Expected re-record to succeed, got %v", err)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Expected recent query to succeed, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected a single row after upsert, got %d", len(got))
	}
	if got[0].Outcome != "delivered" {
		t.Errorf("Expected upserted outcome delivered, got %s", got[0].Outcome)
	}
}

func TestRecentLimitFloor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, Entry{RequestID: "req-1", SourceURL: "u", Channel: "c", Outcome: "delivered"}); err != nil {
		t.Fatalf("Expected record to succeed, got %v", err)
	}
	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Expected recent with zero limit to succeed, got %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected default limit to return the row, got %d entries", len(got))
	}
}
