package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SizeResult is the success payload for the size command.
type SizeResult struct {
	Principal string `json:"principal"`
	Size      int    `json:"size"`
}

// NewSizeCommand creates the size command.
func NewSizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size <principal>",
		Short: "Show the heap's element count",
		Long: `Show the element count of the principal's heap.

Size is a pure view: it consults no capability and leaves no audit
record. Text output is the bare count.

Exit codes:
  0 - Count printed
  1 - Heap not initialized
  2 - Command error

Examples:
  hoard size alice --db ./hoard.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSize(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSize(opts *RootOptions, principal string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)
	ctx := cmd.Context()

	eng, st, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	size, err := eng.Size(ctx, principal)
	if err != nil {
		return dispatchFailure(f, err)
	}

	if opts.Format == "json" {
		return f.Success(SizeResult{Principal: principal, Size: size})
	}

	fmt.Fprintln(f.Writer, size)
	return nil
}
