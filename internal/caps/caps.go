// Package caps defines the storable operation capability model: the fixed
// enumeration of operation kinds, the handles that reference them, the
// per-principal bundle of handles, and the audit records their invocations
// produce.
//
// A Handle is a tagged reference into the engine's static operation
// registry. Handles never capture code or environment - dispatch is by tag
// against named top-level functions, so a handle read back from storage
// years later still resolves to the same operation.
package caps

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/hoard/internal/val"
)

// OpKind identifies one of the storable operations.
// The enumeration is fixed: these four kinds are the complete set.
type OpKind string

const (
	// OpInitMax creates the principal's heap with the max ordering.
	OpInitMax OpKind = "init_max"

	// OpInitMin creates the principal's heap with the min ordering.
	OpInitMin OpKind = "init_min"

	// OpInsert adds one element to the principal's heap.
	OpInsert OpKind = "insert"

	// OpExtract removes and returns the principal's top element.
	OpExtract OpKind = "extract"
)

// Kinds returns the complete operation enumeration in fixed order.
func Kinds() []OpKind {
	return []OpKind{OpInitMax, OpInitMin, OpInsert, OpExtract}
}

// Valid reports whether k is a member of the operation enumeration.
func (k OpKind) Valid() bool {
	switch k {
	case OpInitMax, OpInitMin, OpInsert, OpExtract:
		return true
	}
	return false
}

// String returns the wire form of the kind.
func (k OpKind) String() string {
	return string(k)
}

// ParseOpKind validates a wire string into an OpKind.
func ParseOpKind(s string) (OpKind, error) {
	k := OpKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown operation kind %q (valid: init_max, init_min, insert, extract)", s)
	}
	return k, nil
}

// Handle is the storable operation value: a tagged reference naming an
// entry in the static operation registry.
type Handle struct {
	Kind OpKind `json:"kind"`
}

// Bundle is the per-principal set of exactly four handles, one per
// operation kind. Its presence in storage IS the capability: the execution
// protocol checks the bundle out (removing it) before dispatch and back in
// afterwards, so a principal whose bundle is absent cannot dispatch.
type Bundle struct {
	InitMax Handle `json:"init_max"`
	InitMin Handle `json:"init_min"`
	Insert  Handle `json:"insert"`
	Extract Handle `json:"extract"`
}

// NewBundle constructs the canonical four-handle bundle.
func NewBundle() Bundle {
	return Bundle{
		InitMax: Handle{Kind: OpInitMax},
		InitMin: Handle{Kind: OpInitMin},
		Insert:  Handle{Kind: OpInsert},
		Extract: Handle{Kind: OpExtract},
	}
}

// Validate checks that every slot holds the handle of its kind.
// A bundle deserialized from storage must pass before dispatch.
func (b Bundle) Validate() error {
	slots := []struct {
		name string
		got  OpKind
		want OpKind
	}{
		{"init_max", b.InitMax.Kind, OpInitMax},
		{"init_min", b.InitMin.Kind, OpInitMin},
		{"insert", b.Insert.Kind, OpInsert},
		{"extract", b.Extract.Kind, OpExtract},
	}
	for _, s := range slots {
		if s.got != s.want {
			return fmt.Errorf("bundle slot %s holds kind %q, want %q", s.name, s.got, s.want)
		}
	}
	return nil
}

// HandleFor selects the handle for the given operation kind.
func (b Bundle) HandleFor(k OpKind) (Handle, error) {
	switch k {
	case OpInitMax:
		return b.InitMax, nil
	case OpInitMin:
		return b.InitMin, nil
	case OpInsert:
		return b.Insert, nil
	case OpExtract:
		return b.Extract, nil
	default:
		return Handle{}, fmt.Errorf("unknown operation kind %q", k)
	}
}

// MarshalBundle serializes a bundle to canonical JSON for storage.
func MarshalBundle(b Bundle) ([]byte, error) {
	m := map[string]any{
		"init_max": map[string]any{"kind": string(b.InitMax.Kind)},
		"init_min": map[string]any{"kind": string(b.InitMin.Kind)},
		"insert":   map[string]any{"kind": string(b.Insert.Kind)},
		"extract":  map[string]any{"kind": string(b.Extract.Kind)},
	}
	data, err := val.MarshalCanonical(m)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}
	return data, nil
}

// UnmarshalBundle deserializes and validates a stored bundle.
func UnmarshalBundle(data []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("unmarshal bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return b, nil
}

// Ordering is the persisted heap policy tag.
type Ordering string

const (
	// OrderingMax keeps the largest element on top.
	OrderingMax Ordering = "max"

	// OrderingMin keeps the smallest element on top.
	OrderingMin Ordering = "min"
)

// Valid reports whether o is a known ordering.
func (o Ordering) Valid() bool {
	return o == OrderingMax || o == OrderingMin
}

// ParseOrdering validates a wire string into an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	o := Ordering(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown ordering %q (valid: max, min)", s)
	}
	return o, nil
}
