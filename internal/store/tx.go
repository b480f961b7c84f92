package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/hoard/internal/caps"
)

// Sentinel errors for absent rows. Callers map these to their own domain
// errors; database/sql never leaks past this package.
var (
	// ErrNoSlot is returned when a principal has no stored heap.
	ErrNoSlot = errors.New("slot not found")

	// ErrNoBundle is returned when a principal has no attached bundle.
	ErrNoBundle = errors.New("bundle not attached")
)

// Tx wraps a SQL transaction carrying one initialization or dispatch.
// The dispatch protocol runs checkout, the operation's writes, checkin and
// the audit append inside a single Tx, so an abort at any point restores
// the pre-dispatch state exactly.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Safe to call after Commit (no-op).
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// AttachBundle inserts a principal's handle bundle.
// Uses ON CONFLICT(principal) DO NOTHING for idempotency and returns
// whether a new row was inserted; inserted=false means the principal
// already holds a bundle.
func (t *Tx) AttachBundle(ctx context.Context, principal string, b caps.Bundle, seq int64) (inserted bool, err error) {
	handlesJSON, err := marshalBundle(b)
	if err != nil {
		return false, fmt.Errorf("attach bundle: %w", err)
	}

	digest, err := caps.BundleDigest(b)
	if err != nil {
		return false, fmt.Errorf("attach bundle: %w", err)
	}

	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO bundles
		(principal, handles, digest, attached_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(principal) DO NOTHING
	`,
		principal,
		handlesJSON,
		digest,
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("attach bundle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("attach bundle: rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CheckoutBundle removes and returns the principal's handle bundle.
// Returns ErrNoBundle if no bundle is attached (never initialized, or
// checked out by an in-flight dispatch that has since been torn down).
//
// The stored digest is verified against the recomputed bundle digest
// before the row is deleted, so a corrupted bundles row fails the
// dispatch instead of dispatching garbage.
func (t *Tx) CheckoutBundle(ctx context.Context, principal string) (caps.Bundle, error) {
	var handlesJSON, digest string
	err := t.tx.QueryRowContext(ctx, `
		SELECT handles, digest FROM bundles WHERE principal = ?
	`, principal).Scan(&handlesJSON, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return caps.Bundle{}, ErrNoBundle
	}
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("checkout bundle: %w", err)
	}

	bundle, err := unmarshalBundle(handlesJSON)
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("checkout bundle: %w", err)
	}

	computed, err := caps.BundleDigest(bundle)
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("checkout bundle: %w", err)
	}
	if computed != digest {
		return caps.Bundle{}, fmt.Errorf("checkout bundle: digest mismatch for %q: stored %s, computed %s",
			principal, digest, computed)
	}

	result, err := t.tx.ExecContext(ctx, `
		DELETE FROM bundles WHERE principal = ?
	`, principal)
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("checkout bundle: delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("checkout bundle: rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return caps.Bundle{}, fmt.Errorf("checkout bundle: expected 1 row deleted, got %d", rowsAffected)
	}

	return bundle, nil
}

// CheckinBundle reattaches a checked-out bundle at the end of a dispatch.
// A conflict here means the protocol was violated (checkin without
// checkout), so unlike AttachBundle it is a plain INSERT.
func (t *Tx) CheckinBundle(ctx context.Context, principal string, b caps.Bundle, seq int64) error {
	handlesJSON, err := marshalBundle(b)
	if err != nil {
		return fmt.Errorf("checkin bundle: %w", err)
	}

	digest, err := caps.BundleDigest(b)
	if err != nil {
		return fmt.Errorf("checkin bundle: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO bundles
		(principal, handles, digest, attached_seq)
		VALUES (?, ?, ?, ?)
	`,
		principal,
		handlesJSON,
		digest,
		seq,
	)
	if err != nil {
		return fmt.Errorf("checkin bundle: %w", err)
	}

	return nil
}

// HasSlot reports whether the principal has a stored heap.
func (t *Tx) HasSlot(ctx context.Context, principal string) (bool, error) {
	var count int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM slots WHERE principal = ?
	`, principal).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return count > 0, nil
}

// ReadSlot returns the principal's stored heap.
// Returns ErrNoSlot if the principal has none.
func (t *Tx) ReadSlot(ctx context.Context, principal string) (Slot, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT principal, ordering, elements, version, created_seq, updated_seq
		FROM slots WHERE principal = ?
	`, principal)
	return scanSlot(row)
}

// WriteSlot inserts or replaces the principal's stored heap.
// On insert the version starts at 1 and created_seq is taken from
// slot.UpdatedSeq; on update the version is bumped and created_seq is
// preserved. Version and CreatedSeq on the argument are ignored.
func (t *Tx) WriteSlot(ctx context.Context, slot Slot) error {
	elementsJSON, err := marshalElements(slot.Elements)
	if err != nil {
		return fmt.Errorf("write slot: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO slots
		(principal, ordering, elements, version, created_seq, updated_seq)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET
			ordering    = excluded.ordering,
			elements    = excluded.elements,
			version     = slots.version + 1,
			updated_seq = excluded.updated_seq
	`,
		slot.Principal,
		string(slot.Ordering),
		elementsJSON,
		slot.UpdatedSeq,
		slot.UpdatedSeq,
	)
	if err != nil {
		return fmt.Errorf("write slot: %w", err)
	}

	return nil
}

// AppendInvocation inserts an audit record within the transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations (e.g., UNIQUE seq) still
// return errors.
func (t *Tx) AppendInvocation(ctx context.Context, inv caps.Invocation) error {
	argJSON, err := marshalOptionalValue(inv.Arg)
	if err != nil {
		return fmt.Errorf("append invocation: %w", err)
	}

	resultJSON, err := marshalOptionalValue(inv.Result)
	if err != nil {
		return fmt.Errorf("append invocation: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO invocations
		(id, session, principal, op, arg, outcome, result, seq, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		inv.ID,
		inv.Session,
		inv.Principal,
		string(inv.Op),
		argJSON,
		string(inv.Outcome),
		resultJSON,
		inv.Seq,
		inv.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("append invocation: %w", err)
	}

	return nil
}
