package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScenarioReport records one scenario's run within a suite.
type ScenarioReport struct {
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Pass          bool     `json:"pass"`
	GoldenUpdated bool     `json:"golden_updated,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// SuiteOptions controls scenario selection and golden-trace handling.
type SuiteOptions struct {
	// Filter is a glob matched against each scenario file's base name
	// without extension; empty selects every file.
	Filter string

	// Update rewrites golden traces from the current run instead of
	// comparing against them.
	Update bool
}

// Summary aggregates results across a scenario suite.
type Summary struct {
	Reports []ScenarioReport `json:"scenarios"`
	Total   int              `json:"total"`
	Passed  int              `json:"passed"`
	Failed  int              `json:"failed"`
}

// RunSuite runs the scenario file at path, or every scenario YAML under
// it when path is a directory.
//
// Load errors, run errors, failed assertions, and golden mismatches all
// fail a scenario. A scenario without a golden trace passes on its
// assertions alone. Scenarios run in path order for stable output.
func RunSuite(path string, opts SuiteOptions) (*Summary, error) {
	paths, err := collectScenarios(path, opts.Filter)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Reports: make([]ScenarioReport, 0, len(paths))}
	for _, p := range paths {
		report := runScenarioFile(p, opts.Update)
		summary.Reports = append(summary.Reports, report)
		summary.Total++
		if report.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	return summary, nil
}

// GoldenPath returns the conventional golden-trace location for a
// scenario file: a golden directory beside it, same base name.
func GoldenPath(scenarioPath string) string {
	dir := filepath.Dir(scenarioPath)
	base := filepath.Base(scenarioPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func collectScenarios(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scenario path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := FindScenarios(path)
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}
	if filter == "" {
		return files, nil
	}

	var kept []string
	for _, f := range files {
		base := filepath.Base(f)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		matched, err := filepath.Match(filter, name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", filter, err)
		}
		if matched {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

func runScenarioFile(path string, update bool) ScenarioReport {
	base := filepath.Base(path)
	report := ScenarioReport{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("failed to load scenario: %v", err))
		return report
	}
	report.Name = scenario.Name

	result, err := Run(scenario)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("scenario execution failed: %v", err))
		return report
	}
	report.Errors = append(report.Errors, result.Errors...)

	if update {
		if err := writeGolden(path, result); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("failed to update golden trace: %v", err))
		} else {
			report.GoldenUpdated = true
		}
	} else if err := compareGolden(path, result); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}

	report.Pass = len(report.Errors) == 0
	return report
}

func writeGolden(scenarioPath string, result *Result) error {
	goldenPath := GoldenPath(scenarioPath)
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	return os.WriteFile(goldenPath, RenderTrace(result), 0644)
}

func compareGolden(scenarioPath string, result *Result) error {
	want, err := os.ReadFile(GoldenPath(scenarioPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read golden trace: %v", err)
	}
	if !bytes.Equal(want, RenderTrace(result)) {
		return fmt.Errorf("trace does not match golden file (run with --update to regenerate)")
	}
	return nil
}
