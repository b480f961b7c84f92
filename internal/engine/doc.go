// Package engine implements the hoard capability dispatcher.
//
// The engine is the heart of hoard - it holds the logical clock, checks
// capability bundles in and out of storage, runs the heap operations the
// stored handles name, and appends the audit record for every dispatch.
//
// ARCHITECTURE:
//
// Dispatch Protocol (extract, invoke, reinsert):
// Every Execute call follows the same sequence inside one transaction:
//  1. Take a seq from the logical clock
//  2. Check the principal's bundle out of storage (row deleted in-tx)
//  3. Resolve the stored handle against the static operation registry
//  4. Run the operation against the principal's heap slot
//  5. Check the bundle back in, append the audit record, commit
//
// While step 4 runs, the bundle is absent from storage: a nested or
// concurrent dispatch for the same principal cannot acquire it and fails
// fast with BUNDLE_HELD instead of aliasing mutable state. A failing
// operation aborts the whole transaction, so the bundle and heap revert
// to their pre-dispatch state and the failure is recorded in the audit
// log in its own transaction.
//
// Handles are tags over a fixed operation enumeration, resolved against
// named top-level functions at dispatch time. No stored handle ever
// carries code or captured state, which is what keeps dispatch behavior
// identical across process restarts.
//
// Logical Clock:
// Every dispatch is stamped with a monotonic seq from Clock.Next(),
// resumed from the store's high-water mark at engine construction.
// Wall-clock timestamps are never used for ordering.
//
// Determinism:
// Comparators derive from the one total order over canonical values, the
// sift tie-break is fixed, and audit reads are fully ordered. Replaying a
// principal's successful audit records therefore reproduces the stored
// heap array exactly, which is what VerifyPrincipal checks.
package engine
