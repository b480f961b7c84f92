package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/heap"
	"github.com/roach88/hoard/internal/store"
	"github.com/roach88/hoard/internal/val"
)

// Views read the heap slot directly and bypass the bundle entirely. They
// take no seq, write nothing, and work even while a dispatch holds the
// principal's bundle checked out.

// Peek returns the top element of the principal's heap without removing it.
//
// Slots persist elements in heap-array order, so the top is element 0.
func (e *Engine) Peek(ctx context.Context, principal string) (val.Value, error) {
	slot, err := e.readSlot(ctx, principal)
	if err != nil {
		return nil, err
	}
	if len(slot.Elements) == 0 {
		return nil, &heap.EmptyError{Op: "peek"}
	}
	return slot.Elements[0], nil
}

// Size returns the number of elements in the principal's heap.
func (e *Engine) Size(ctx context.Context, principal string) (int, error) {
	slot, err := e.readSlot(ctx, principal)
	if err != nil {
		return 0, err
	}
	return len(slot.Elements), nil
}

// IsEmpty reports whether the principal's heap has no elements.
func (e *Engine) IsEmpty(ctx context.Context, principal string) (bool, error) {
	slot, err := e.readSlot(ctx, principal)
	if err != nil {
		return false, err
	}
	return len(slot.Elements) == 0, nil
}

// Stat describes one principal's current state for diagnostics.
type Stat struct {
	Principal      string
	Ordering       caps.Ordering
	Size           int
	Version        int64
	UpdatedSeq     int64
	BundleAttached bool

	// Top is the heap's top element, nil when the heap is empty.
	Top val.Value
}

// Stat reports the principal's heap and bundle state in one read.
func (e *Engine) Stat(ctx context.Context, principal string) (Stat, error) {
	slot, err := e.readSlot(ctx, principal)
	if err != nil {
		return Stat{}, err
	}

	attached, err := e.store.HasBundle(ctx, principal)
	if err != nil {
		return Stat{}, fmt.Errorf("stat %s: %w", principal, err)
	}

	st := Stat{
		Principal:      slot.Principal,
		Ordering:       slot.Ordering,
		Size:           len(slot.Elements),
		Version:        slot.Version,
		UpdatedSeq:     slot.UpdatedSeq,
		BundleAttached: attached,
	}
	if len(slot.Elements) > 0 {
		st.Top = slot.Elements[0]
	}
	return st, nil
}

// readSlot loads the principal's slot, mapping absence to the typed
// error callers can test for.
func (e *Engine) readSlot(ctx context.Context, principal string) (store.Slot, error) {
	if principal == "" {
		return store.Slot{}, NewInvalidArgumentError(principal, "", "principal must not be empty")
	}
	slot, err := e.store.GetSlot(ctx, principal)
	if err != nil {
		if errors.Is(err, store.ErrNoSlot) {
			return store.Slot{}, NewNotInitializedError(principal, "", "heap not initialized")
		}
		return store.Slot{}, fmt.Errorf("read slot for %s: %w", principal, err)
	}
	return slot, nil
}
