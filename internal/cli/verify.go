package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/engine"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Principal string // verify one principal instead of all
}

// PrincipalReport is one principal's verification result.
type PrincipalReport struct {
	Principal  string   `json:"principal"`
	Records    int      `json:"records"`
	Skipped    int      `json:"skipped"`
	Consistent bool     `json:"consistent"`
	Problems   []string `json:"problems,omitempty"`
}

// VerifyResult is the overall verification result.
type VerifyResult struct {
	Reports   []PrincipalReport `json:"reports"`
	Checked   int               `json:"checked"`
	Divergent int               `json:"divergent"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay audit records against stored heap state",
		Long: `Replay each principal's successful audit records and check that the
result matches the stored heap element by element.

Sift order is deterministic, so an honest history reproduces the stored
array exactly, including every element that past extracts returned. Any
difference reports the principal as divergent.

Exit codes:
  0 - Every checked principal is consistent
  1 - Divergence detected, or the named principal is not initialized
  2 - Command error

Examples:
  hoard verify --db ./hoard.db
  hoard verify --db ./hoard.db --principal alice
  hoard verify --db ./hoard.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Principal, "principal", "", "verify only this principal")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	ctx := cmd.Context()

	eng, st, err := openEngine(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(st)

	var reports []engine.Report
	if opts.Principal != "" {
		report, err := eng.VerifyPrincipal(ctx, opts.Principal)
		if err != nil {
			return dispatchFailure(f, err)
		}
		reports = []engine.Report{report}
	} else {
		reports, err = eng.VerifyAll(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "verification failed", err)
		}
	}

	result := VerifyResult{Reports: make([]PrincipalReport, 0, len(reports))}
	for _, r := range reports {
		result.Checked++
		if !r.Consistent {
			result.Divergent++
		}
		result.Reports = append(result.Reports, PrincipalReport{
			Principal:  r.Principal,
			Records:    r.Records,
			Skipped:    r.Skipped,
			Consistent: r.Consistent,
			Problems:   r.Problems,
		})
	}

	if opts.Format == "json" {
		return outputVerifyJSON(cmd, result)
	}
	return outputVerifyText(cmd, result)
}

// outputVerifyJSON outputs the verification result as JSON.
func outputVerifyJSON(cmd *cobra.Command, result VerifyResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Divergent > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDiverged,
			Message: fmt.Sprintf("%d principal(s) divergent", result.Divergent),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Divergent > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d principal(s) divergent", result.Divergent))
	}
	return nil
}

// outputVerifyText outputs the verification result as text.
func outputVerifyText(cmd *cobra.Command, result VerifyResult) error {
	w := cmd.OutOrStdout()

	if result.Checked == 0 {
		fmt.Fprintln(w, "No principals found.")
		return nil
	}

	for _, r := range result.Reports {
		if r.Consistent {
			fmt.Fprintf(w, "✓ %s: consistent (%d records, %d skipped)\n", r.Principal, r.Records, r.Skipped)
			continue
		}
		fmt.Fprintf(w, "✗ %s: divergent (%d records, %d skipped)\n", r.Principal, r.Records, r.Skipped)
		for _, p := range r.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Verify Summary: %d checked, %d divergent\n", result.Checked, result.Divergent)

	if result.Divergent > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d principal(s) divergent", result.Divergent))
	}

	fmt.Fprintln(w, "✓ All principals consistent")
	return nil
}
