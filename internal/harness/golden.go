package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RenderTrace renders a result as the byte-exact trace compared against
// golden files: a scenario header followed by one line per step.
func RenderTrace(result *Result) []byte {
	var buf bytes.Buffer
	buf.WriteString("scenario: ")
	buf.WriteString(result.Scenario)
	buf.WriteByte('\n')
	for _, step := range result.Steps {
		buf.WriteString(step.Line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its trace against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also assert on Pass and Errors.
// Test failure (via goldie) occurs if the trace doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already-obtained result's trace against the
// named golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, RenderTrace(result))
}
