package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/profile"
)

// FileValidation is one profile file's validation result.
type FileValidation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Name  string `json:"name,omitempty"` // compiled profile name
	Error string `json:"error,omitempty"`
}

// ValidateResult is the overall validation result.
type ValidateResult struct {
	Files   []FileValidation `json:"files"`
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <profile.cue>...",
		Short: "Validate ordering profiles without running them",
		Long: `Compile ordering profile CUE files and report what each declares.

A profile must define a top-level profile struct with a name and a
direction; field and collation are optional. Unknown fields, invalid
directions, and unparseable collation tags are rejected, the same
checks sort and topk apply before using a profile.

Exit codes:
  0 - All profiles compile
  1 - One or more profiles rejected
  2 - Command error

Examples:
  hoard validate by_age.cue
  hoard validate profiles/*.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	w := cmd.OutOrStdout()
	result := ValidateResult{Files: make([]FileValidation, 0, len(paths))}

	for _, path := range paths {
		fv := FileValidation{Path: path}

		src, err := os.ReadFile(path)
		if err != nil {
			fv.Error = fmt.Sprintf("read profile: %v", err)
		} else if p, cErr := profile.CompileProfile(src); cErr != nil {
			fv.Error = cErr.Error()
		} else {
			fv.Valid = true
			fv.Name = p.Name
			if opts.Format != "json" {
				fmt.Fprintf(w, "✓ %s: %s\n", path, describeProfile(p))
			}
		}

		if fv.Valid {
			result.Valid++
		} else {
			result.Invalid++
			if opts.Format != "json" {
				fmt.Fprintf(w, "✗ %s: %s\n", path, fv.Error)
			}
		}
		result.Files = append(result.Files, fv)
	}

	if opts.Format == "json" {
		return outputValidateJSON(cmd, result)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Validation Summary: %d valid, %d invalid\n", result.Valid, result.Invalid)

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d profile(s) failed validation", result.Invalid))
	}

	fmt.Fprintln(w, "✓ All profiles compile")
	return nil
}

// outputValidateJSON outputs the validation result as JSON.
func outputValidateJSON(cmd *cobra.Command, result ValidateResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Invalid > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeCompile,
			Message: fmt.Sprintf("%d profile(s) failed validation", result.Invalid),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d profile(s) failed validation", result.Invalid))
	}
	return nil
}
