package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult is the success payload for the init command.
type InitResult struct {
	Principal string `json:"principal"`
	Session   string `json:"session"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <principal>",
		Short: "Initialize the capability module for a principal",
		Long: `Initialize the capability module for a principal.

Stores the principal's bundle of operation capabilities (init_max,
init_min, insert, extract) without creating a heap. Dispatch init_max
or init_min afterwards to choose the ordering.

Exit codes:
  0 - Module initialized
  1 - Already initialized for this principal
  2 - Command error (no database, bad arguments)

Examples:
  hoard init alice --db ./hoard.db
  HOARD_DB=./hoard.db hoard init alice --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, principal string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts)
	ctx := cmd.Context()

	eng, st, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := eng.InitializeModule(ctx, principal); err != nil {
		return dispatchFailure(f, err)
	}

	if opts.Format == "json" {
		return f.Success(InitResult{Principal: principal, Session: eng.Session()})
	}

	fmt.Fprintf(f.Writer, "✓ init %s -> ok\n", principal)
	f.VerboseLog("session %s", eng.Session())
	return nil
}
