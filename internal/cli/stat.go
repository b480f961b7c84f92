package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/val"
)

// StatResult is the success payload for the stat command.
type StatResult struct {
	Principal      string          `json:"principal"`
	Ordering       string          `json:"ordering"`
	Size           int             `json:"size"`
	Version        int64           `json:"version"`
	UpdatedSeq     int64           `json:"updated_seq"`
	BundleAttached bool            `json:"bundle_attached"`
	Top            json.RawMessage `json:"top,omitempty"`
}

// NewStatCommand creates the stat command.
func NewStatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <principal>",
		Short: "Show the principal's heap and bundle state",
		Long: `Show the principal's heap and bundle state in one read.

Reports the ordering, element count, slot version, the audit sequence
of the last write, whether the capability bundle is attached, and the
top element when the heap is non-empty.

Exit codes:
  0 - State printed
  1 - Heap not initialized
  2 - Command error

Examples:
  hoard stat alice --db ./hoard.db
  hoard stat alice --db ./hoard.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runStat(opts *RootOptions, principal string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)
	ctx := cmd.Context()

	eng, st, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	stat, err := eng.Stat(ctx, principal)
	if err != nil {
		return dispatchFailure(f, err)
	}

	result := StatResult{
		Principal:      stat.Principal,
		Ordering:       string(stat.Ordering),
		Size:           stat.Size,
		Version:        stat.Version,
		UpdatedSeq:     stat.UpdatedSeq,
		BundleAttached: stat.BundleAttached,
	}
	if stat.Top != nil {
		data, mErr := val.MarshalCanonical(stat.Top)
		if mErr != nil {
			return WrapExitError(ExitCommandError, "failed to render element", mErr)
		}
		result.Top = json.RawMessage(data)
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "principal: %s\n", result.Principal)
	fmt.Fprintf(w, "ordering:  %s\n", result.Ordering)
	fmt.Fprintf(w, "size:      %d\n", result.Size)
	if result.Top != nil {
		fmt.Fprintf(w, "top:       %s\n", string(result.Top))
	}
	fmt.Fprintf(w, "version:   %d\n", result.Version)
	fmt.Fprintf(w, "updated:   seq %d\n", result.UpdatedSeq)
	if result.BundleAttached {
		fmt.Fprintf(w, "bundle:    attached\n")
	} else {
		fmt.Fprintf(w, "bundle:    absent\n")
	}
	return nil
}
