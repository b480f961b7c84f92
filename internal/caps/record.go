package caps

import "github.com/roach88/hoard/internal/val"

// Version constants for the stored record schema and engine.
const (
	// EngineVersion is the hoard engine version, stamped on audit records.
	EngineVersion = "0.1.0"
)

// Outcome categorizes how a dispatched operation ended.
// Outcomes are the stable wire vocabulary of the audit log; error strings
// may change, outcome codes must not.
type Outcome string

const (
	// OutcomeOK marks a successful operation.
	OutcomeOK Outcome = "ok"

	// OutcomeEmptyHeap marks an extract against an empty heap.
	OutcomeEmptyHeap Outcome = "empty_heap"

	// OutcomeNotInitialized marks a dispatch before the required state
	// existed (no bundle for the principal, or no heap for a heap op).
	OutcomeNotInitialized Outcome = "not_initialized"

	// OutcomeAlreadyInitialized marks an init against existing state.
	OutcomeAlreadyInitialized Outcome = "already_initialized"

	// OutcomeInvalidArgument marks an operation fed a malformed argument.
	OutcomeInvalidArgument Outcome = "invalid_argument"

	// OutcomeQuotaExceeded marks an insert beyond the capacity quota.
	OutcomeQuotaExceeded Outcome = "quota_exceeded"

	// OutcomeBundleHeld marks a re-entrant dispatch rejected while the
	// principal's bundle was checked out.
	OutcomeBundleHeld Outcome = "bundle_held"
)

// Invocation is one audit record: a single dispatch of a stored operation,
// successful or not. Records are append-only and stamped with the logical
// clock, never wall time.
type Invocation struct {
	// ID is the content-addressed identity (see InvocationID).
	ID string `json:"id"`

	// Session is the engine session token the dispatch ran under.
	Session string `json:"session"`

	// Principal owns the slot and bundle the dispatch targeted.
	Principal string `json:"principal"`

	// Op is the dispatched operation kind.
	Op OpKind `json:"op"`

	// Arg is the operation argument; nil for argument-less kinds.
	Arg val.Value `json:"arg,omitempty"`

	// Outcome is how the dispatch ended.
	Outcome Outcome `json:"outcome"`

	// Result is the returned value; nil unless the operation returns one.
	Result val.Value `json:"result,omitempty"`

	// Seq is the logical clock stamp.
	Seq int64 `json:"seq"`

	// EngineVersion records the engine that produced this record.
	EngineVersion string `json:"engine_version"`
}

// Succeeded reports whether the record describes a successful dispatch.
// Only successful records mutate state; failures are log-only.
func (inv Invocation) Succeeded() bool {
	return inv.Outcome == OutcomeOK
}
