package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/caps"
	"github.com/roach88/hoard/internal/val"
)

// ExecResult is the success payload for the exec command.
type ExecResult struct {
	Principal string          `json:"principal"`
	Op        string          `json:"op"`
	Outcome   string          `json:"outcome"`
	Result    json.RawMessage `json:"result,omitempty"` // extract's element
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <principal> <op> [value]",
		Short: "Dispatch a stored operation capability",
		Long: `Dispatch one of the principal's stored operation capabilities.

The op is one of init_max, init_min, insert, extract. Only insert takes
a value: canonical JSON (10, "pear", {"age": 30}) or a bare word, which
is read as a string. Every dispatch with a decidable outcome is recorded
in the audit log, failures included.

Exit codes:
  0 - Dispatch succeeded
  1 - Dispatch rejected (not_initialized, empty_heap, quota_exceeded, ...)
  2 - Command error (unknown op, missing value, no database)

Examples:
  hoard exec alice init_max --db ./hoard.db
  hoard exec alice insert 10 --db ./hoard.db
  hoard exec alice insert '{"age": 30, "name": "ana"}' --db ./hoard.db
  hoard exec alice extract --db ./hoard.db --format json`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runExec(opts *RootOptions, args []string, cmd *cobra.Command) error {
	principal := args[0]

	kind, err := caps.ParseOpKind(args[1])
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	var arg val.Value
	switch {
	case kind == caps.OpInsert && len(args) < 3:
		return NewExitError(ExitCommandError, "insert requires a value argument")
	case kind != caps.OpInsert && len(args) == 3:
		return NewExitError(ExitCommandError, fmt.Sprintf("op %s takes no value argument", kind))
	case kind == caps.OpInsert:
		arg, err = parseValue(args[2])
		if err != nil {
			return NewExitError(ExitCommandError, err.Error())
		}
	}

	f := newFormatter(cmd, opts)
	ctx := cmd.Context()

	eng, st, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	var extracted val.Value
	switch kind {
	case caps.OpInitMax:
		err = eng.ExecuteInitMax(ctx, principal)
	case caps.OpInitMin:
		err = eng.ExecuteInitMin(ctx, principal)
	case caps.OpInsert:
		err = eng.ExecuteInsert(ctx, principal, arg)
	case caps.OpExtract:
		extracted, err = eng.ExecuteExtract(ctx, principal)
	}
	if err != nil {
		return dispatchFailure(f, err)
	}

	result := ExecResult{Principal: principal, Op: string(kind), Outcome: string(caps.OutcomeOK)}
	if extracted != nil {
		data, mErr := val.MarshalCanonical(extracted)
		if mErr != nil {
			return WrapExitError(ExitCommandError, "failed to render result", mErr)
		}
		result.Result = json.RawMessage(data)
	}

	if opts.Format == "json" {
		return f.Success(result)
	}

	line := fmt.Sprintf("exec %s %s", principal, kind)
	if kind == caps.OpInsert {
		data, mErr := val.MarshalCanonical(arg)
		if mErr != nil {
			return WrapExitError(ExitCommandError, "failed to render value", mErr)
		}
		line += " " + string(data)
	}
	if result.Result != nil {
		line += " = " + string(result.Result)
	}
	fmt.Fprintf(f.Writer, "✓ %s -> ok\n", line)
	return nil
}
