package store

import (
	"context"
	"fmt"

	"github.com/roach88/hoard/internal/caps"
)

// AppendInvocation inserts an audit record in its own implicit transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations (e.g., UNIQUE seq) will
// still return errors.
//
// The dispatch protocol writes successful records through Tx.AppendInvocation
// so they commit atomically with the slot and bundle writes. This standalone
// variant records failed dispatches after their transaction has rolled back:
// the failure must appear in the audit log even though the dispatch left no
// other trace.
func (s *Store) AppendInvocation(ctx context.Context, inv caps.Invocation) error {
	argJSON, err := marshalOptionalValue(inv.Arg)
	if err != nil {
		return fmt.Errorf("append invocation: %w", err)
	}

	resultJSON, err := marshalOptionalValue(inv.Result)
	if err != nil {
		return fmt.Errorf("append invocation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
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
