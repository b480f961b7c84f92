package harness

import (
	"context"
	"fmt"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/engine"
	"github.com/roach88/hoard/internal/val"
)

// EvaluateExpectations checks every step outcome against the expect
// list. Steps without an expect entry must succeed. Returns one error
// message per mismatched step.
func EvaluateExpectations(result *Result, expects []Expectation) []string {
	expected := make(map[int]string, len(expects))
	for _, exp := range expects {
		expected[exp.Step] = exp.Outcome
	}

	var errors []string
	for i, step := range result.Steps {
		want := string(caps.OutcomeOK)
		if o, ok := expected[i+1]; ok {
			want = o
		}
		if step.Outcome != want {
			errors = append(errors, fmt.Sprintf("step %d: expected outcome %s, got %s", i+1, want, step.Outcome))
		}
	}
	return errors
}

// EvaluateFinalChecks compares heap state after the run against the
// scenario's final checks. Unset check fields are not compared.
func EvaluateFinalChecks(ctx context.Context, eng *engine.Engine, checks []FinalCheck) []string {
	var errors []string
	for i, check := range checks {
		st, err := eng.Stat(ctx, check.Principal)
		if err != nil {
			errors = append(errors, fmt.Sprintf("final[%d]: stat %s: %s", i, check.Principal, engine.OutcomeOf(err)))
			continue
		}

		if check.Size != nil && st.Size != *check.Size {
			errors = append(errors, fmt.Sprintf("final[%d]: %s: expected size %d, got %d", i, check.Principal, *check.Size, st.Size))
		}

		if check.Ordering != "" && string(st.Ordering) != check.Ordering {
			errors = append(errors, fmt.Sprintf("final[%d]: %s: expected ordering %s, got %s", i, check.Principal, check.Ordering, st.Ordering))
		}

		if check.Top != nil {
			want, err := toValue(check.Top)
			if err != nil {
				errors = append(errors, fmt.Sprintf("final[%d]: %s: bad top value: %v", i, check.Principal, err))
				continue
			}
			switch {
			case st.Top == nil:
				errors = append(errors, fmt.Sprintf("final[%d]: %s: expected top %s, heap is empty", i, check.Principal, renderValue(want)))
			case val.Compare(want, st.Top) != 0:
				errors = append(errors, fmt.Sprintf("final[%d]: %s: expected top %s, got %s", i, check.Principal, renderValue(want), renderValue(st.Top)))
			}
		}
	}
	return errors
}
