package engine

import "sync"

// checkoutGuard tracks principals whose bundle this process has checked out.
//
// The storage checkout (deleting the bundles row inside the dispatch
// transaction) makes the bundle's absence durable, but a dispatch that
// re-enters the engine for the same principal would not see that absence:
// its own transaction still holds the row's deletion uncommitted. The guard
// closes that window in memory - the second dispatch fails fast with
// BUNDLE_HELD instead of deadlocking on the storage transaction.
//
// Guard state is per-process and never persisted. A crash mid-dispatch
// rolls the transaction back, so the bundle row reappears and a fresh
// process starts with an empty guard and a consistent store.
type checkoutGuard struct {
	mu   sync.Mutex
	held map[string]bool // map[principal]checked out
}

// newCheckoutGuard creates an empty guard.
func newCheckoutGuard() *checkoutGuard {
	return &checkoutGuard{
		held: make(map[string]bool),
	}
}

// acquire marks the principal's bundle as held.
// Returns false if it is already held by an in-flight dispatch.
func (g *checkoutGuard) acquire(principal string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held[principal] {
		return false
	}
	g.held[principal] = true
	return true
}

// release clears the hold for a principal.
// Safe to call for a principal that is not held.
func (g *checkoutGuard) release(principal string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.held, principal)
}

// heldCount returns the number of principals currently held.
// Used for testing and introspection.
func (g *checkoutGuard) heldCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.held)
}
