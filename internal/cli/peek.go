package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/val"
)

// PeekResult is the success payload for the peek command.
type PeekResult struct {
	Principal string          `json:"principal"`
	Top       json.RawMessage `json:"top"`
}

// NewPeekCommand creates the peek command.
func NewPeekCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peek <principal>",
		Short: "Show the heap's top element without removing it",
		Long: `Show the top element of the principal's heap without removing it.

Peek is a pure view: it consults no capability and leaves no audit
record. Text output is the element's canonical JSON, so the value can
be piped onward as-is.

Exit codes:
  0 - Top element printed
  1 - Heap empty or not initialized
  2 - Command error

Examples:
  hoard peek alice --db ./hoard.db
  hoard peek alice --db ./hoard.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeek(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runPeek(opts *RootOptions, principal string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)
	ctx := cmd.Context()

	eng, st, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	top, err := eng.Peek(ctx, principal)
	if err != nil {
		return dispatchFailure(f, err)
	}

	data, err := val.MarshalCanonical(top)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render element", err)
	}

	if opts.Format == "json" {
		return f.Success(PeekResult{Principal: principal, Top: json.RawMessage(data)})
	}

	fmt.Fprintln(f.Writer, string(data))
	return nil
}
