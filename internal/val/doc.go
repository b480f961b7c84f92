// Package val provides the constrained value model for everything hoard
// persists, hashes, or replays.
//
// This package contains type definitions and serialization only. All other
// internal packages may import val; val imports nothing internal. This
// keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers (floats break
//     deterministic hashing and replay)
//   - NO null - a value is always one of int, string, bool, record
//   - NO arrays in element position - a stored heap element is a scalar
//     or a flat record, never a sequence
//   - All persisted serialization goes through MarshalCanonical
package val
