package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden traces
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-path>",
		Short: "Run scenario harness",
		Long: `Run YAML scenarios against a fresh in-memory engine.

The path names one scenario file or a directory to walk. Each scenario
drives real dispatches, checks per-step outcome expectations and final
heap state, and compares the step trace against a golden file beside
the scenario (golden/<name>.golden) when one exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid path, bad filter)

Examples:
  hoard test ./scenarios
  hoard test ./scenarios/capability_round_trip.yaml
  hoard test ./scenarios --filter "min_*"
  hoard test ./scenarios --update
  hoard test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden traces")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	summary, err := harness.RunSuite(path, harness.SuiteOptions{
		Filter: opts.Filter,
		Update: opts.Update,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, summary)
	}
	return outputTestText(cmd, summary)
}

// outputTestJSON outputs the suite summary as JSON.
func outputTestJSON(cmd *cobra.Command, summary *harness.Summary) error {
	response := CLIResponse{Status: "ok", Data: summary}
	if summary.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeTest,
			Message: fmt.Sprintf("%d scenario(s) failed", summary.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}

// outputTestText outputs the suite summary as text.
func outputTestText(cmd *cobra.Command, summary *harness.Summary) error {
	w := cmd.OutOrStdout()

	if summary.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	for _, report := range summary.Reports {
		switch {
		case report.Pass && report.GoldenUpdated:
			fmt.Fprintf(w, "✓ %s (golden updated)\n", report.Name)
		case report.Pass:
			fmt.Fprintf(w, "✓ %s\n", report.Name)
		default:
			fmt.Fprintf(w, "✗ %s\n", report.Name)
			for _, e := range report.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
