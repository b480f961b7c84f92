package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/val"
)

// Slot is a principal's stored heap: the ordering policy plus the element
// sequence in heap-array order. Version and CreatedSeq are storage-managed;
// WriteSlot ignores them on input.
type Slot struct {
	Principal  string
	Ordering   caps.Ordering
	Elements   []val.Value
	Version    int64
	CreatedSeq int64
	UpdatedSeq int64
}

// GetSlot returns the principal's stored heap outside any transaction.
// Returns ErrNoSlot if the principal has none.
//
// Views (peek, size, stat) read through here: they never touch the
// bundles table, so they work even while a dispatch holds the bundle.
func (s *Store) GetSlot(ctx context.Context, principal string) (Slot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT principal, ordering, elements, version, created_seq, updated_seq
		FROM slots WHERE principal = ?
	`, principal)
	return scanSlot(row)
}

// HasBundle reports whether the principal currently has a bundle attached.
func (s *Store) HasBundle(ctx context.Context, principal string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bundles WHERE principal = ?
	`, principal).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check bundle: %w", err)
	}
	return count > 0, nil
}

// GetBundle returns the principal's attached bundle without removing it,
// verifying the stored digest. Returns ErrNoBundle if none is attached.
func (s *Store) GetBundle(ctx context.Context, principal string) (caps.Bundle, error) {
	var handlesJSON, digest string
	err := s.db.QueryRowContext(ctx, `
		SELECT handles, digest FROM bundles WHERE principal = ?
	`, principal).Scan(&handlesJSON, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return caps.Bundle{}, ErrNoBundle
	}
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("get bundle: %w", err)
	}

	bundle, err := unmarshalBundle(handlesJSON)
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("get bundle: %w", err)
	}

	computed, err := caps.BundleDigest(bundle)
	if err != nil {
		return caps.Bundle{}, fmt.Errorf("get bundle: %w", err)
	}
	if computed != digest {
		return caps.Bundle{}, fmt.Errorf("get bundle: digest mismatch for %q: stored %s, computed %s",
			principal, digest, computed)
	}

	return bundle, nil
}

// LastSeq returns the highest logical clock value recorded anywhere in the
// store, or 0 for an empty store. The engine resumes its clock from here,
// so every table a seq can land in is consulted.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(last) FROM (
			SELECT COALESCE(MAX(seq), 0) AS last FROM invocations
			UNION ALL
			SELECT COALESCE(MAX(attached_seq), 0) FROM bundles
			UNION ALL
			SELECT COALESCE(MAX(updated_seq), 0) FROM slots
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq, nil
}

// ListPrincipals returns every principal known to the store - any with a
// slot, a bundle, or audit records - in lexicographic order.
//
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListPrincipals(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT principal FROM slots
		UNION
		SELECT principal FROM bundles
		UNION
		SELECT principal FROM invocations
		ORDER BY principal ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query principals: %w", err)
	}
	defer rows.Close()

	var principals []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan principal: %w", err)
		}
		principals = append(principals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate principals: %w", err)
	}

	// Return empty slice instead of nil
	if principals == nil {
		principals = []string{}
	}

	return principals, nil
}

// ReadAudit returns all audit records for a principal with deterministic
// ordering: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the principal has no records.
func (s *Store) ReadAudit(ctx context.Context, principal string) ([]caps.Invocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, principal, op, arg, outcome, result, seq, engine_version
		FROM invocations
		WHERE principal = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, principal)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var invocations []caps.Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit: %w", err)
	}

	// Return empty slice instead of nil
	if invocations == nil {
		invocations = []caps.Invocation{}
	}

	return invocations, nil
}

// ReadAllAudit returns every audit record in the store with deterministic
// ordering. Used for session traces. Results ordered by seq ASC, id ASC.
func (s *Store) ReadAllAudit(ctx context.Context) ([]caps.Invocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, principal, op, arg, outcome, result, seq, engine_version
		FROM invocations
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all audit: %w", err)
	}
	defer rows.Close()

	var invocations []caps.Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate all audit: %w", err)
	}

	if invocations == nil {
		invocations = []caps.Invocation{}
	}

	return invocations, nil
}

// CountInvocations returns the total number of audit records in the store.
func (s *Store) CountInvocations(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invocations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invocations: %w", err)
	}
	return count, nil
}

// scanSlot scans a single slots row.
func scanSlot(row *sql.Row) (Slot, error) {
	var slot Slot
	var ordering, elementsJSON string

	err := row.Scan(
		&slot.Principal, &ordering, &elementsJSON,
		&slot.Version, &slot.CreatedSeq, &slot.UpdatedSeq,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, ErrNoSlot
	}
	if err != nil {
		return Slot{}, fmt.Errorf("scan slot: %w", err)
	}

	ord, err := caps.ParseOrdering(ordering)
	if err != nil {
		return Slot{}, fmt.Errorf("scan slot: %w", err)
	}
	slot.Ordering = ord

	elements, err := unmarshalElements(elementsJSON)
	if err != nil {
		return Slot{}, fmt.Errorf("scan slot: %w", err)
	}
	slot.Elements = elements

	return slot, nil
}

// scanInvocation scans an invocations row into an audit record.
func scanInvocation(rows *sql.Rows) (caps.Invocation, error) {
	var inv caps.Invocation
	var op, outcome string
	var argJSON, resultJSON string

	if err := rows.Scan(
		&inv.ID, &inv.Session, &inv.Principal, &op, &argJSON,
		&outcome, &resultJSON, &inv.Seq, &inv.EngineVersion,
	); err != nil {
		return caps.Invocation{}, fmt.Errorf("scan invocation: %w", err)
	}

	kind, err := caps.ParseOpKind(op)
	if err != nil {
		return caps.Invocation{}, fmt.Errorf("scan invocation: %w", err)
	}
	inv.Op = kind
	inv.Outcome = caps.Outcome(outcome)

	arg, err := unmarshalOptionalValue(argJSON)
	if err != nil {
		return caps.Invocation{}, err
	}
	inv.Arg = arg

	result, err := unmarshalOptionalValue(resultJSON)
	if err != nil {
		return caps.Invocation{}, err
	}
	inv.Result = result

	return inv, nil
}
