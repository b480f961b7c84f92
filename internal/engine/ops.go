package engine

import (
	"context"
	"errors"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/heap"
	"github.com/roach88/hoard/internal/order"
	"github.com/roach88/hoard/internal/store"
	"github.com/roach88/hoard/internal/val"
)

// opRequest carries one dispatch's inputs into an operation.
type opRequest struct {
	principal   string
	op          caps.OpKind
	arg         val.Value
	seq         int64
	maxElements int
}

// opFunc is the signature every registered operation implements. It runs
// inside the dispatch transaction: reads and writes go through tx, and a
// returned error aborts the whole dispatch.
type opFunc func(ctx context.Context, tx *store.Tx, req opRequest) (val.Value, error)

// opRegistry maps each operation kind to its implementation. Stored
// handles are tags resolved against this table at dispatch time: the
// behavior always lives in these named top-level functions, never in
// captured code, which is what makes handles serializable in the first
// place.
var opRegistry = map[caps.OpKind]opFunc{
	caps.OpInitMax: opInitMax,
	caps.OpInitMin: opInitMin,
	caps.OpInsert:  opInsert,
	caps.OpExtract: opExtract,
}

func opInitMax(ctx context.Context, tx *store.Tx, req opRequest) (val.Value, error) {
	return opInit(ctx, tx, req, caps.OrderingMax)
}

func opInitMin(ctx context.Context, tx *store.Tx, req opRequest) (val.Value, error) {
	return opInit(ctx, tx, req, caps.OrderingMin)
}

// opInit creates the principal's heap slot with the given ordering.
// Fails if the slot already exists: re-initialization would silently
// discard elements, so the caller must be told instead.
func opInit(ctx context.Context, tx *store.Tx, req opRequest, ordering caps.Ordering) (val.Value, error) {
	exists, err := tx.HasSlot(ctx, req.principal)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewAlreadyInitializedError(req.principal, req.op, "heap already initialized")
	}

	err = tx.WriteSlot(ctx, store.Slot{
		Principal:  req.principal,
		Ordering:   ordering,
		Elements:   []val.Value{},
		UpdatedSeq: req.seq,
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// opInsert adds one element to the principal's heap.
func opInsert(ctx context.Context, tx *store.Tx, req opRequest) (val.Value, error) {
	if req.arg == nil {
		return nil, NewInvalidArgumentError(req.principal, req.op, "insert requires an element")
	}

	slot, err := tx.ReadSlot(ctx, req.principal)
	if err != nil {
		if errors.Is(err, store.ErrNoSlot) {
			return nil, NewNotInitializedError(req.principal, req.op,
				"heap not initialized: dispatch init_max or init_min first")
		}
		return nil, err
	}

	if req.maxElements > 0 && len(slot.Elements) >= req.maxElements {
		return nil, NewQuotaExceededError(req.principal, req.op, len(slot.Elements), req.maxElements)
	}

	h := heap.Heapify(slot.Elements, comparatorFor(slot.Ordering))
	h.Insert(req.arg)

	slot.Elements = h.Items()
	slot.UpdatedSeq = req.seq
	if err := tx.WriteSlot(ctx, slot); err != nil {
		return nil, err
	}
	return nil, nil
}

// opExtract removes and returns the top element of the principal's heap.
func opExtract(ctx context.Context, tx *store.Tx, req opRequest) (val.Value, error) {
	slot, err := tx.ReadSlot(ctx, req.principal)
	if err != nil {
		if errors.Is(err, store.ErrNoSlot) {
			return nil, NewNotInitializedError(req.principal, req.op,
				"heap not initialized: dispatch init_max or init_min first")
		}
		return nil, err
	}

	h := heap.Heapify(slot.Elements, comparatorFor(slot.Ordering))
	top, err := h.Extract()
	if err != nil {
		return nil, err
	}

	slot.Elements = h.Items()
	slot.UpdatedSeq = req.seq
	if err := tx.WriteSlot(ctx, slot); err != nil {
		return nil, err
	}
	return top, nil
}

// comparatorFor returns the element comparator for a slot's ordering.
// Both directions derive from the same total order over canonical
// values, so persisted heaps replay identically on every run.
func comparatorFor(o caps.Ordering) order.Comparator[val.Value] {
	return order.FromCompare(val.Compare, o == caps.OrderingMax)
}
