package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hoard/internal/caps"
)

// Scenario defines a conformance test scenario.
// Scenarios drive a fresh engine through a sequence of steps and check
// the outcome of each step against the expect list.
type Scenario struct {
	// Name uniquely identifies this scenario.
	// It doubles as the golden file name, so keep it filename-safe.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is an optional fixed session token for deterministic
	// invocation IDs. Defaults to DefaultSession.
	Session string `yaml:"session,omitempty"`

	// Quota is an optional per-heap element limit. Zero means unlimited.
	Quota int `yaml:"quota,omitempty"`

	// Steps is the sequence of operations to run, in order.
	Steps []Step `yaml:"steps"`

	// Expect overrides the expected outcome for individual steps.
	// Steps without an entry are expected to succeed.
	Expect []Expectation `yaml:"expect,omitempty"`

	// Final checks heap state after all steps have run.
	Final []FinalCheck `yaml:"final,omitempty"`
}

// Step is one scenario action. Exactly one of the four fields is set.
type Step struct {
	// Init names a principal to initialize (attach a bundle to).
	Init string `yaml:"init,omitempty"`

	// Exec dispatches one stored operation handle.
	Exec *ExecStep `yaml:"exec,omitempty"`

	// View reads heap state without touching the bundle.
	View *ViewStep `yaml:"view,omitempty"`

	// Verify names a principal whose audit trail to replay.
	Verify string `yaml:"verify,omitempty"`
}

// ExecStep dispatches a stored operation for a principal.
type ExecStep struct {
	Principal string `yaml:"principal"`

	// Op is one of init_max, init_min, insert, extract.
	Op string `yaml:"op"`

	// Arg is the operation argument. Only insert takes one, and an
	// insert without an arg is a legitimate invalid_argument scenario.
	Arg interface{} `yaml:"arg,omitempty"`
}

// ViewStep reads heap state for a principal.
type ViewStep struct {
	Principal string `yaml:"principal"`

	// Kind is one of peek, size, is_empty.
	Kind string `yaml:"kind"`
}

// View kind constants.
const (
	ViewPeek    = "peek"
	ViewSize    = "size"
	ViewIsEmpty = "is_empty"
)

// Expectation pins the expected outcome of one step.
type Expectation struct {
	// Step is the 1-based step index.
	Step int `yaml:"step"`

	// Outcome is the expected outcome code (e.g. "ok", "empty_heap").
	Outcome string `yaml:"outcome"`
}

// FinalCheck validates a principal's heap state after the run.
// Unset fields are not checked (subset semantics).
type FinalCheck struct {
	Principal string `yaml:"principal"`

	// Size is the expected element count.
	Size *int `yaml:"size,omitempty"`

	// Top is the expected top element.
	Top interface{} `yaml:"top,omitempty"`

	// Ordering is the expected heap ordering, "max" or "min".
	Ordering string `yaml:"ordering,omitempty"`
}

// OutcomeDivergent is the outcome a verify step reports when replaying
// the audit trail does not reproduce the stored heap.
const OutcomeDivergent = "divergent"

// validOutcomes lists outcome codes an expectation may name.
var validOutcomes = map[string]bool{
	string(caps.OutcomeOK):                 true,
	string(caps.OutcomeEmptyHeap):          true,
	string(caps.OutcomeNotInitialized):     true,
	string(caps.OutcomeAlreadyInitialized): true,
	string(caps.OutcomeInvalidArgument):    true,
	string(caps.OutcomeQuotaExceeded):      true,
	string(caps.OutcomeBundleHeld):         true,
	OutcomeDivergent:                       true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns all scenario YAML files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			switch filepath.Ext(path) {
			case ".yaml", ".yml":
				files = append(files, path)
			}
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Quota < 0 {
		return fmt.Errorf("quota must be non-negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, exp := range s.Expect {
		if exp.Step < 1 || exp.Step > len(s.Steps) {
			return fmt.Errorf("expect[%d]: step %d out of range (1..%d)", i, exp.Step, len(s.Steps))
		}
		if !validOutcomes[exp.Outcome] {
			return fmt.Errorf("expect[%d]: unknown outcome %q", i, exp.Outcome)
		}
	}

	for i, check := range s.Final {
		if check.Principal == "" {
			return fmt.Errorf("final[%d]: principal is required", i)
		}
		if check.Size == nil && check.Top == nil && check.Ordering == "" {
			return fmt.Errorf("final[%d]: at least one of size, top, ordering is required", i)
		}
		if check.Ordering != "" {
			if _, err := caps.ParseOrdering(check.Ordering); err != nil {
				return fmt.Errorf("final[%d]: %v", i, err)
			}
		}
	}

	return nil
}

// validateStep checks that a step names exactly one action and that the
// action's fields are well-formed.
func validateStep(index int, step *Step) error {
	set := 0
	if step.Init != "" {
		set++
	}
	if step.Exec != nil {
		set++
	}
	if step.View != nil {
		set++
	}
	if step.Verify != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of init, exec, view, verify is required", index)
	}

	if step.Exec != nil {
		if step.Exec.Principal == "" {
			return fmt.Errorf("steps[%d]: exec principal is required", index)
		}
		kind, err := caps.ParseOpKind(step.Exec.Op)
		if err != nil {
			return fmt.Errorf("steps[%d]: %v", index, err)
		}
		if step.Exec.Arg != nil && kind != caps.OpInsert {
			return fmt.Errorf("steps[%d]: op %s takes no arg", index, kind)
		}
	}

	if step.View != nil {
		if step.View.Principal == "" {
			return fmt.Errorf("steps[%d]: view principal is required", index)
		}
		switch step.View.Kind {
		case ViewPeek, ViewSize, ViewIsEmpty:
		default:
			return fmt.Errorf("steps[%d]: unknown view kind %q", index, step.View.Kind)
		}
	}

	return nil
}
