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

// Report summarizes one principal's audit-replay verification.
type Report struct {
	Principal string

	// Records is the number of audit records read, Skipped the number
	// of failure records excluded from replay.
	Records int
	Skipped int

	Consistent bool
	Problems   []string
}

// VerifyPrincipal replays the principal's successful audit records and
// checks the result against the stored slot.
//
// Sift order is deterministic, so an honest history replays to an array
// identical to the stored one element by element, not merely to an
// equivalent heap. Extract records also carry the element they returned,
// which the replayed heap must reproduce.
//
// A principal the store has never seen fails with a not-initialized
// dispatch error rather than reporting an empty history as consistent.
func (e *Engine) VerifyPrincipal(ctx context.Context, principal string) (Report, error) {
	records, err := e.store.ReadAudit(ctx, principal)
	if err != nil {
		return Report{}, fmt.Errorf("verify %s: %w", principal, err)
	}

	// With no records, the principal must still be known through a bundle
	// or a stored heap. An initialized module that never dispatched has a
	// bundle and verifies vacuously; a mistyped principal has nothing.
	if len(records) == 0 {
		attached, err := e.store.HasBundle(ctx, principal)
		if err != nil {
			return Report{}, fmt.Errorf("verify %s: %w", principal, err)
		}
		if !attached {
			if _, err := e.store.GetSlot(ctx, principal); err != nil {
				if errors.Is(err, store.ErrNoSlot) {
					return Report{}, NewNotInitializedError(principal, "", "module not initialized")
				}
				return Report{}, fmt.Errorf("verify %s: %w", principal, err)
			}
		}
	}

	report := Report{Principal: principal, Records: len(records)}

	var elements []val.Value
	var ordering caps.Ordering
	initialized := false
	succeeded := 0

	for _, rec := range records {
		if !rec.Succeeded() {
			report.Skipped++
			continue
		}
		succeeded++

		switch rec.Op {
		case caps.OpInitMax:
			ordering = caps.OrderingMax
			elements = []val.Value{}
			initialized = true
		case caps.OpInitMin:
			ordering = caps.OrderingMin
			elements = []val.Value{}
			initialized = true
		case caps.OpInsert:
			if !initialized {
				report.Problems = append(report.Problems,
					fmt.Sprintf("seq %d: insert succeeded before any init", rec.Seq))
				continue
			}
			if rec.Arg == nil {
				report.Problems = append(report.Problems,
					fmt.Sprintf("seq %d: insert record carries no element", rec.Seq))
				continue
			}
			h := heap.Heapify(elements, comparatorFor(ordering))
			h.Insert(rec.Arg)
			elements = h.Items()
		case caps.OpExtract:
			if !initialized {
				report.Problems = append(report.Problems,
					fmt.Sprintf("seq %d: extract succeeded before any init", rec.Seq))
				continue
			}
			h := heap.Heapify(elements, comparatorFor(ordering))
			top, err := h.Extract()
			if err != nil {
				report.Problems = append(report.Problems,
					fmt.Sprintf("seq %d: extract succeeded but replayed heap is empty", rec.Seq))
				continue
			}
			elements = h.Items()
			if rec.Result == nil {
				report.Problems = append(report.Problems,
					fmt.Sprintf("seq %d: extract record carries no result", rec.Seq))
			} else if val.Compare(top, rec.Result) != 0 {
				report.Problems = append(report.Problems,
					fmt.Sprintf("seq %d: extract recorded %s but replay produced %s",
						rec.Seq, renderValue(rec.Result), renderValue(top)))
			}
		default:
			report.Problems = append(report.Problems,
				fmt.Sprintf("seq %d: unknown operation %q", rec.Seq, rec.Op))
		}
	}

	slot, err := e.store.GetSlot(ctx, principal)
	switch {
	case errors.Is(err, store.ErrNoSlot):
		if initialized {
			report.Problems = append(report.Problems,
				"successful init recorded but no heap stored")
		}
	case err != nil:
		return Report{}, fmt.Errorf("verify %s: %w", principal, err)
	case !initialized:
		report.Problems = append(report.Problems,
			"heap stored but no successful init recorded")
	default:
		if slot.Ordering != ordering {
			report.Problems = append(report.Problems,
				fmt.Sprintf("stored ordering %s, replay produced %s", slot.Ordering, ordering))
		}
		if len(slot.Elements) != len(elements) {
			report.Problems = append(report.Problems,
				fmt.Sprintf("stored heap has %d elements, replay produced %d",
					len(slot.Elements), len(elements)))
		} else {
			for i := range elements {
				if val.Compare(slot.Elements[i], elements[i]) != 0 {
					report.Problems = append(report.Problems,
						fmt.Sprintf("element %d: stored %s, replay produced %s",
							i, renderValue(slot.Elements[i]), renderValue(elements[i])))
				}
			}
		}
	}

	if succeeded > 0 {
		attached, err := e.store.HasBundle(ctx, principal)
		if err != nil {
			return Report{}, fmt.Errorf("verify %s: %w", principal, err)
		}
		if !attached {
			report.Problems = append(report.Problems,
				"successful dispatches recorded but no bundle attached")
		}
	}

	report.Consistent = len(report.Problems) == 0
	return report, nil
}

// VerifyAll verifies every principal the store knows about.
func (e *Engine) VerifyAll(ctx context.Context) ([]Report, error) {
	principals, err := e.store.ListPrincipals(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify all: %w", err)
	}

	reports := make([]Report, 0, len(principals))
	for _, p := range principals {
		report, err := e.VerifyPrincipal(ctx, p)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// renderValue formats a value for a problem message.
func renderValue(v val.Value) string {
	b, err := val.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
