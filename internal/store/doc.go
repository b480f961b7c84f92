// Package store provides SQLite-backed durable storage for hoard principals.
//
// The store holds three tables:
//   - Slots: one heap per principal (ordering, elements, version)
//   - Bundles: storable operation handle bundles; row presence is the capability
//   - Invocations: append-only audit log of every dispatch
//
// # Storage Rules
//
// Logical identity and time:
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Enables deterministic replay regardless of wall time
//
// Deterministic query results:
//   - Audit queries include: ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Ensures identical results across replays
//
// Serialized columns:
//   - Elements, handles, args and results are RFC 8785 canonical JSON
//   - Absent values are stored as the empty string, NEVER NULL
//
// Checkout discipline:
//   - CheckoutBundle deletes the bundle row; CheckinBundle restores it
//   - Both run inside one transaction, so an aborted dispatch leaves the
//     bundle attached exactly as it was before the dispatch began
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Invocation IDs and bundle digests are computed via functions in
// internal/caps/hash.go using RFC 8785 canonical JSON and SHA-256 with
// domain separation.
package store
