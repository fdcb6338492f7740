package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"preparser/internal/audit"
	"preparser/internal/engine"
)

func TestRecordAndRecentOutcomes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	j, err := audit.Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	now := time.Now()
	records := []engine.AuditRecord{
		{RequestID: 1, Kind: engine.KindParse, Domains: engine.Mask(engine.DomainParse), Status: engine.StatusOk, AcceptedAt: now, TerminatedAt: now},
		{RequestID: 2, Kind: engine.KindThumbnail, Domains: engine.Mask(engine.DomainThumbnail), Status: engine.StatusTimeout, AcceptedAt: now, TerminatedAt: now},
		{RequestID: 3, Kind: engine.KindParse, Domains: engine.Mask(engine.DomainParse), Status: engine.StatusInterrupted, AcceptedAt: now, TerminatedAt: now},
	}
	for _, rec := range records {
		j.Record(rec)
	}

	// Record is meant to be called from a fire-and-forget goroutine by the
	// coordinator; here we call it synchronously, so results are visible
	// immediately.
	outcomes, err := j.RecentOutcomes(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentOutcomes: %v", err)
	}
	if len(outcomes) != len(records) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(records))
	}
	// newest first
	if outcomes[0].RequestID != 3 || outcomes[0].Status != engine.StatusInterrupted {
		t.Fatalf("unexpected newest outcome: %+v", outcomes[0])
	}
	if outcomes[2].RequestID != 1 || outcomes[2].Status != engine.StatusOk {
		t.Fatalf("unexpected oldest outcome: %+v", outcomes[2])
	}
}

func TestRecentOutcomesRespectsLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	j, err := audit.Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	for i := 0; i < 5; i++ {
		j.Record(engine.AuditRecord{RequestID: engine.RequestID(i + 1), Status: engine.StatusOk, TerminatedAt: time.Now()})
	}

	outcomes, err := j.RecentOutcomes(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentOutcomes: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := audit.Open("", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReopenSameSchemaVersionSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	j1, err := audit.Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	j1.Close()

	j2, err := audit.Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	j2.Close()
}
