package engine

import (
	"sync"

	"github.com/google/uuid"
)

// TokenSource generates session tokens for audit correlation.
// Implemented by UUIDv7Source (production) and FixedSource (tests).
type TokenSource interface {
	Generate() string
}

// UUIDv7Source generates time-sortable UUIDv7 session tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by creation time. This is helpful for debugging and audit
// inspection across engine runs.
//
// Uses github.com/google/uuid package for RFC 4122 compliant UUIDs.
//
// Thread-safety: UUIDv7Source is stateless and safe for concurrent use.
type UUIDv7Source struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Format: "550e8400-e29b-41d4-a716-446655440000" (36 characters)
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Source) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedSource returns predetermined session tokens for testing.
//
// This enables deterministic test execution and golden trace comparison.
// Tests can provide a known sequence of tokens and verify exact output.
//
// Thread-safety: FixedSource is safe for concurrent use via internal mutex.
type FixedSource struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedSource creates a source that returns tokens in order.
//
// Example:
//
//	src := NewFixedSource("sess-1", "sess-2")
//	src.Generate() // "sess-1"
//	src.Generate() // "sess-2"
//	src.Generate() // panic: all tokens exhausted
func NewFixedSource(tokens ...string) *FixedSource {
	return &FixedSource{
		tokens: tokens,
		idx:    0,
	}
}

// Generate returns the next predetermined token.
// Thread-safe: uses mutex to protect index access.
//
// Panics if all tokens have been consumed. This is a fail-fast approach
// to catch test misconfiguration (test created more engines than expected).
func (g *FixedSource) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedSource: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
