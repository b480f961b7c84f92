package store

import (
	"context"
	"testing"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/val"
)

func TestAppendInvocation_Persists(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inv := createTestInvocation("inv1", "sess1", "alice", caps.OpInitMax, 1)
	if err := s.AppendInvocation(ctx, inv); err != nil {
		t.Fatalf("AppendInvocation() failed: %v", err)
	}

	records, err := s.ReadAudit(ctx, "alice")
	if err != nil {
		t.Fatalf("ReadAudit() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.ID != "inv1" {
		t.Errorf("ID = %q, want %q", got.ID, "inv1")
	}
	if got.Session != "sess1" {
		t.Errorf("Session = %q, want %q", got.Session, "sess1")
	}
	if got.Op != caps.OpInitMax {
		t.Errorf("Op = %q, want %q", got.Op, caps.OpInitMax)
	}
	if got.Outcome != caps.OutcomeOK {
		t.Errorf("Outcome = %q, want %q", got.Outcome, caps.OutcomeOK)
	}
	if got.EngineVersion != caps.EngineVersion {
		t.Errorf("EngineVersion = %q, want %q", got.EngineVersion, caps.EngineVersion)
	}
}

func TestAppendInvocation_DuplicateIDIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inv := createTestInvocation("inv1", "sess1", "alice", caps.OpInsert, 1)
	if err := s.AppendInvocation(ctx, inv); err != nil {
		t.Fatalf("first AppendInvocation() failed: %v", err)
	}
	if err := s.AppendInvocation(ctx, inv); err != nil {
		t.Fatalf("duplicate AppendInvocation() failed: %v", err)
	}

	records, err := s.ReadAudit(ctx, "alice")
	if err != nil {
		t.Fatalf("ReadAudit() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestAppendInvocation_RoundTripsArgAndResult(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inv := createTestInvocation("inv1", "sess1", "alice", caps.OpInsert, 1)
	inv.Arg = val.NewRec(val.F("age", val.NewInt(25)))
	inv.Result = val.NewInt(25)
	if err := s.AppendInvocation(ctx, inv); err != nil {
		t.Fatalf("AppendInvocation() failed: %v", err)
	}

	records, err := s.ReadAudit(ctx, "alice")
	if err != nil {
		t.Fatalf("ReadAudit() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.Arg == nil || val.Compare(got.Arg, inv.Arg) != 0 {
		t.Errorf("Arg = %v, want %v", got.Arg, inv.Arg)
	}
	if got.Result == nil || val.Compare(got.Result, inv.Result) != 0 {
		t.Errorf("Result = %v, want %v", got.Result, inv.Result)
	}
}

func TestAppendInvocation_FailureRecordWithoutResult(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// A failed extract has neither arg nor result
	inv := createTestInvocation("inv1", "sess1", "alice", caps.OpExtract, 1)
	inv.Outcome = caps.OutcomeEmptyHeap
	if err := s.AppendInvocation(ctx, inv); err != nil {
		t.Fatalf("AppendInvocation() failed: %v", err)
	}

	records, err := s.ReadAudit(ctx, "alice")
	if err != nil {
		t.Fatalf("ReadAudit() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.Outcome != caps.OutcomeEmptyHeap {
		t.Errorf("Outcome = %q, want %q", got.Outcome, caps.OutcomeEmptyHeap)
	}
	if got.Arg != nil {
		t.Errorf("Arg = %v, want nil", got.Arg)
	}
	if got.Result != nil {
		t.Errorf("Result = %v, want nil", got.Result)
	}
	if got.Succeeded() {
		t.Error("Succeeded() = true for failure record")
	}
}
