package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/val"
)

func TestCheckoutGuard_AcquireRelease(t *testing.T) {
	g := newCheckoutGuard()

	assert.True(t, g.acquire("alice"))
	assert.Equal(t, 1, g.heldCount())

	g.release("alice")
	assert.Equal(t, 0, g.heldCount())

	assert.True(t, g.acquire("alice"), "released principal can be acquired again")
}

func TestCheckoutGuard_ReacquireFails(t *testing.T) {
	g := newCheckoutGuard()

	require.True(t, g.acquire("alice"))
	assert.False(t, g.acquire("alice"), "held principal must not be acquired twice")
}

func TestCheckoutGuard_PrincipalsIndependent(t *testing.T) {
	g := newCheckoutGuard()

	require.True(t, g.acquire("alice"))
	assert.True(t, g.acquire("bob"), "holds are per principal")
	assert.Equal(t, 2, g.heldCount())
}

func TestCheckoutGuard_ReleaseUnheldIsNoOp(t *testing.T) {
	g := newCheckoutGuard()

	g.release("nobody")
	assert.Equal(t, 0, g.heldCount())
}

func TestCheckoutGuard_ThreadSafe(t *testing.T) {
	g := newCheckoutGuard()
	const goroutines = 100

	var wg sync.WaitGroup
	wins := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- g.acquire("alice")
		}()
	}

	wg.Wait()
	close(wins)

	// Exactly one goroutine may win the hold.
	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won)
}

func TestDispatch_ReentryFailsFast(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, s, nil)
	ctx := context.Background()

	initMaxHeap(t, e, "alice")

	// Simulate an in-flight dispatch holding the bundle.
	require.True(t, e.checkouts.acquire("alice"))

	err := e.ExecuteInsert(ctx, "alice", val.NewInt(1))
	require.Error(t, err)
	assert.True(t, IsBundleHeld(err), "re-entry must fail fast, not block")

	records, readErr := s.ReadAudit(ctx, "alice")
	require.NoError(t, readErr)
	require.Len(t, records, 2)
	assert.Equal(t, caps.OutcomeBundleHeld, records[1].Outcome)

	// Once the in-flight dispatch finishes, the principal dispatches again.
	e.checkouts.release("alice")
	require.NoError(t, e.ExecuteInsert(ctx, "alice", val.NewInt(1)))
}

func TestDispatch_ReentryOtherPrincipalUnaffected(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, s, nil)
	ctx := context.Background()

	initMaxHeap(t, e, "alice")
	initMaxHeap(t, e, "bob")

	require.True(t, e.checkouts.acquire("alice"))
	defer e.checkouts.release("alice")

	// Bob's bundle is not held; his dispatches proceed.
	require.NoError(t, e.ExecuteInsert(ctx, "bob", val.NewInt(7)))
}

func TestDispatch_GuardReleasedAfterSuccess(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, s, nil)
	ctx := context.Background()

	initMaxHeap(t, e, "alice")
	require.NoError(t, e.ExecuteInsert(ctx, "alice", val.NewInt(1)))

	assert.Equal(t, 0, e.checkouts.heldCount())
}

func TestDispatch_GuardReleasedAfterFailure(t *testing.T) {
	s := setupTestStore(t)
	e := newTestEngine(t, s, nil)
	ctx := context.Background()

	initMaxHeap(t, e, "alice")

	_, err := e.ExecuteExtract(ctx, "alice")
	require.Error(t, err)

	assert.Equal(t, 0, e.checkouts.heldCount(),
		"failed dispatch must not strand the hold")
}
