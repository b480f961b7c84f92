package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/heapalgo"
	"github.com/roach88/hoard/internal/order"
	"github.com/roach88/hoard/internal/val"
)

// TopKOptions holds flags for the topk command.
type TopKOptions struct {
	*RootOptions
	Profile string // ordering profile CUE file
}

// TopKResult is the success payload for the topk command.
type TopKResult struct {
	K      int               `json:"k"`
	Count  int               `json:"count"`
	Values []json.RawMessage `json:"values"`
}

// NewTopKCommand creates the topk command.
func NewTopKCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TopKOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "topk <k> [value...]",
		Short: "Select the k largest values",
		Long: `Select the k largest values from arguments, or from one value per
line on stdin when only k is given.

Output is the selection in ascending order, so the overall largest
value comes last. With --profile the profile's ordering decides what
"largest" means; the selection still prints lowest-ranked first. If
fewer than k values are supplied, all of them are returned.

Exit codes:
  0 - Selection printed
  1 - k is not positive
  2 - Command error (malformed k or value, bad profile)

Examples:
  hoard topk 3 5 2 8 1 9 3 7
  printf '5\n2\n8\n' | hoard topk 2
  hoard topk 2 '{"age": 30}' '{"age": 25}' '{"age": 41}' --profile by_age.cue`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopK(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "", "ordering profile CUE file")

	return cmd
}

func runTopK(opts *TopKOptions, args []string, cmd *cobra.Command) error {
	k, err := strconv.Atoi(args[0])
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("k must be an integer, got %q", args[0]))
	}

	values, err := readValues(args[1:], cmd.InOrStdin())
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	comparator := order.FromCompare(val.Compare, true)
	if opts.Profile != "" {
		p, err := loadProfile(opts.Profile)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid profile", err)
		}
		comparator, err = p.Comparator()
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid profile", err)
		}
	}

	f := newFormatter(cmd, opts.RootOptions)

	top, err := heapalgo.KLargestFunc(values, k, comparator)
	if err != nil {
		if heapalgo.IsInvalidArgument(err) {
			_ = f.Error(string(caps.OutcomeInvalidArgument), err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		return WrapExitError(ExitCommandError, "selection failed", err)
	}

	raw, err := marshalValues(top)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render values", err)
	}

	if opts.Format == "json" {
		return f.Success(TopKResult{K: k, Count: len(raw), Values: raw})
	}

	for _, r := range raw {
		fmt.Fprintln(f.Writer, string(r))
	}
	return nil
}
