package harness

import "fmt"

// StepResult is one executed step: its rendered trace line and the
// outcome code used for expectation matching.
type StepResult struct {
	Line    string `json:"line"`
	Outcome string `json:"outcome"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every step outcome matched and all final checks held.
	Pass bool `json:"pass"`

	// Scenario is the scenario name, echoed into the trace header.
	Scenario string `json:"scenario"`

	// Steps contains one entry per executed step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result for the named scenario.
func NewResult(scenario string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Steps:    []StepResult{},
		Errors:   []string{},
	}
}

// AddStep appends a step's trace line, numbering it after the steps
// already recorded.
func (r *Result) AddStep(desc, outcome string) {
	line := fmt.Sprintf("step %d: %s -> %s", len(r.Steps)+1, desc, outcome)
	r.Steps = append(r.Steps, StepResult{Line: line, Outcome: outcome})
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
