package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/store"
	"github.com/roach88/hoard/internal/val"
)

// Engine dispatches storable heap operations for principals.
//
// Every mutation runs the same protocol: take a seq from the logical clock,
// check the principal's bundle out of storage, resolve the requested handle
// against the static operation registry, run the operation, check the bundle
// back in, and append the audit record - all inside one storage transaction.
// A failure at any point aborts the transaction wholly, so the bundle and
// heap reappear exactly as they were before the dispatch began.
//
// Views (Peek, Size, IsEmpty, Stat) read the slot directly and never touch
// the bundle, so they work even while a dispatch holds it.
//
// Thread-safety model:
//   - Execute methods: safe from any goroutine; concurrent dispatches for
//     the same principal fail fast with BUNDLE_HELD
//   - Views: safe from any goroutine
type Engine struct {
	store     *store.Store
	clock     *Clock
	checkouts *checkoutGuard
	session   string

	// maxElements caps heap size per principal; 0 means unlimited.
	maxElements int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithMaxElements sets the per-principal heap size limit.
//
// Default: 0 (unlimited).
// Use WithMaxElements(3) for testing quota enforcement.
func WithMaxElements(n int) Option {
	return func(e *Engine) {
		e.maxElements = n
	}
}

// WithClock replaces the resumed clock.
// Used for testing with a predetermined clock position.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine bound to the given store.
//
// The logical clock resumes from the store's high-water mark, so seqs
// assigned by this engine never collide with recorded ones. The token
// source mints this engine run's session token, which stamps every audit
// record the run produces.
func New(ctx context.Context, s *store.Store, tokens TokenSource, opts ...Option) (*Engine, error) {
	last, err := s.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume clock: %w", err)
	}

	e := &Engine{
		store:     s,
		clock:     NewClockAt(last),
		checkouts: newCheckoutGuard(),
		session:   tokens.Generate(),
	}

	// Apply options
	for _, opt := range opts {
		opt(e)
	}

	slog.Debug("engine session started",
		"session", e.session,
		"resume_seq", last,
		"max_elements", e.maxElements,
	)

	return e, nil
}

// Session returns this engine run's session token.
func (e *Engine) Session() string {
	return e.session
}

// Clock returns the engine's logical clock.
// Used for testing and introspection.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// MaxElements returns the configured per-principal heap size limit.
// Used for testing and diagnostics.
func (e *Engine) MaxElements() int {
	return e.maxElements
}

// InitializeModule attaches the four-handle bundle to a principal.
//
// This is the only way a principal gains dispatch capability: the stored
// bundle's presence is the capability, and every Execute call checks it
// out before running. Initialization does not create the heap - the
// principal dispatches its stored init_max or init_min handle for that.
//
// Returns AlreadyInitializedError if the principal already holds a bundle.
func (e *Engine) InitializeModule(ctx context.Context, principal string) error {
	if principal == "" {
		return NewInvalidArgumentError(principal, "", "principal must not be empty")
	}
	if !e.checkouts.acquire(principal) {
		return NewBundleHeldError(principal, "")
	}
	defer e.checkouts.release(principal)

	seq := e.clock.Next()

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("initialize %s: %w", principal, err)
	}
	defer tx.Rollback()

	inserted, err := tx.AttachBundle(ctx, principal, caps.NewBundle(), seq)
	if err != nil {
		return fmt.Errorf("initialize %s: %w", principal, err)
	}
	if !inserted {
		return NewAlreadyInitializedError(principal, "", "module already initialized")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("initialize %s: %w", principal, err)
	}

	slog.Info("module initialized",
		"principal", principal,
		"session", e.session,
		"seq", seq,
	)

	return nil
}

// ExecuteInitMax dispatches the principal's stored init_max handle,
// creating an empty heap that keeps its largest element on top.
func (e *Engine) ExecuteInitMax(ctx context.Context, principal string) error {
	_, err := e.execute(ctx, principal, caps.OpInitMax, nil)
	return err
}

// ExecuteInitMin dispatches the principal's stored init_min handle,
// creating an empty heap that keeps its smallest element on top.
func (e *Engine) ExecuteInitMin(ctx context.Context, principal string) error {
	_, err := e.execute(ctx, principal, caps.OpInitMin, nil)
	return err
}

// ExecuteInsert dispatches the principal's stored insert handle, adding
// one element to the heap.
func (e *Engine) ExecuteInsert(ctx context.Context, principal string, element val.Value) error {
	_, err := e.execute(ctx, principal, caps.OpInsert, element)
	return err
}

// ExecuteExtract dispatches the principal's stored extract handle,
// removing and returning the heap's top element.
func (e *Engine) ExecuteExtract(ctx context.Context, principal string) (val.Value, error) {
	return e.execute(ctx, principal, caps.OpExtract, nil)
}

// execute runs the dispatch protocol for one operation:
//
//  1. Take a seq from the logical clock.
//  2. Acquire the in-process checkout guard (fail fast on re-entry).
//  3. Check the bundle out of storage (its row is deleted in-tx).
//  4. Resolve the requested handle against the static registry.
//  5. Run the operation against the slot.
//  6. Check the bundle back in, append the audit record, commit.
//
// On operation failure the transaction aborts wholly - bundle and slot
// revert to their pre-dispatch state - and the failure is then recorded
// in the audit log in its own transaction.
func (e *Engine) execute(ctx context.Context, principal string, kind caps.OpKind, arg val.Value) (val.Value, error) {
	if principal == "" {
		return nil, NewInvalidArgumentError(principal, kind, "principal must not be empty")
	}

	seq := e.clock.Next()

	if !e.checkouts.acquire(principal) {
		dispatchErr := NewBundleHeldError(principal, kind)
		e.recordFailure(ctx, principal, kind, arg, seq, dispatchErr)
		return nil, dispatchErr
	}
	defer e.checkouts.release(principal)

	slog.Debug("dispatching",
		"principal", principal,
		"op", kind,
		"seq", seq,
		"session", e.session,
	)

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}
	defer tx.Rollback()

	bundle, err := tx.CheckoutBundle(ctx, principal)
	if err != nil {
		// The failure record needs its own transaction, so the dispatch
		// transaction must release the connection first.
		tx.Rollback()
		if errors.Is(err, store.ErrNoBundle) {
			dispatchErr := NewNotInitializedError(principal, kind, "module not initialized")
			e.recordFailure(ctx, principal, kind, arg, seq, dispatchErr)
			return nil, dispatchErr
		}
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}

	handle, err := bundle.HandleFor(kind)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}

	opFn, ok := opRegistry[handle.Kind]
	if !ok {
		return nil, fmt.Errorf("dispatch %s for %s: no registered operation for handle kind %q",
			kind, principal, handle.Kind)
	}

	result, err := opFn(ctx, tx, opRequest{
		principal:   principal,
		op:          handle.Kind,
		arg:         arg,
		seq:         seq,
		maxElements: e.maxElements,
	})
	if err != nil {
		tx.Rollback()
		if outcome := outcomeFor(err); outcome != "" {
			e.recordFailure(ctx, principal, kind, arg, seq, err)
			return nil, err
		}
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}

	if err := tx.CheckinBundle(ctx, principal, bundle, seq); err != nil {
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}

	inv, err := e.newInvocation(principal, kind, arg, caps.OutcomeOK, result, seq)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}
	if err := tx.AppendInvocation(ctx, inv); err != nil {
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("dispatch %s for %s: %w", kind, principal, err)
	}

	slog.Info("dispatch complete",
		"principal", principal,
		"op", kind,
		"seq", seq,
		"outcome", caps.OutcomeOK,
		"id", inv.ID,
	)

	return result, nil
}

// newInvocation builds an audit record with a content-addressed ID.
func (e *Engine) newInvocation(principal string, kind caps.OpKind, arg val.Value, outcome caps.Outcome, result val.Value, seq int64) (caps.Invocation, error) {
	id, err := caps.InvocationID(e.session, principal, kind, arg, seq)
	if err != nil {
		return caps.Invocation{}, fmt.Errorf("compute invocation ID: %w", err)
	}
	return caps.Invocation{
		ID:            id,
		Session:       e.session,
		Principal:     principal,
		Op:            kind,
		Arg:           arg,
		Outcome:       outcome,
		Result:        result,
		Seq:           seq,
		EngineVersion: caps.EngineVersion,
	}, nil
}

// recordFailure appends a failure audit record in its own transaction,
// after the dispatch transaction has rolled back. The failed dispatch
// must appear in the audit log even though it left no other trace.
//
// Audit write failures are logged and swallowed so they never mask the
// dispatch error the caller is about to receive.
func (e *Engine) recordFailure(ctx context.Context, principal string, kind caps.OpKind, arg val.Value, seq int64, dispatchErr error) {
	outcome := outcomeFor(dispatchErr)

	inv, err := e.newInvocation(principal, kind, arg, outcome, nil, seq)
	if err != nil {
		slog.Error("failure record not built",
			"principal", principal,
			"op", kind,
			"seq", seq,
			"error", err,
		)
		return
	}

	if err := e.store.AppendInvocation(ctx, inv); err != nil {
		slog.Error("failure record not written",
			"principal", principal,
			"op", kind,
			"seq", seq,
			"error", err,
		)
		return
	}

	slog.Info("dispatch failed",
		"principal", principal,
		"op", kind,
		"seq", seq,
		"outcome", outcome,
		"error", dispatchErr,
	)
}
