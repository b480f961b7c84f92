package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/val"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestInvocation creates a successful audit record with minimal fields.
func createTestInvocation(id, session, principal string, op caps.OpKind, seq int64) caps.Invocation {
	return caps.Invocation{
		ID:            id,
		Session:       session,
		Principal:     principal,
		Op:            op,
		Outcome:       caps.OutcomeOK,
		Seq:           seq,
		EngineVersion: caps.EngineVersion,
	}
}

// intElements builds an element sequence from ints.
func intElements(ns ...int64) []val.Value {
	elements := make([]val.Value, len(ns))
	for i, n := range ns {
		elements[i] = val.NewInt(n)
	}
	return elements
}
