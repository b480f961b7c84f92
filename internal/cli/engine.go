package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/hoard/internal/engine"
	"github.com/roach88/hoard/internal/store"
)

// newFormatter builds a command's OutputFormatter over cobra's writers.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openEngine opens the capability store named by --db/HOARD_DB and
// starts an engine over it. The caller owns closing the returned store.
func openEngine(ctx context.Context, opts *RootOptions) (*engine.Engine, *store.Store, error) {
	if opts.Database == "" {
		return nil, nil, NewExitError(ExitCommandError, "database path required (set --db or HOARD_DB)")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	var engOpts []engine.Option
	if opts.Quota > 0 {
		engOpts = append(engOpts, engine.WithMaxElements(opts.Quota))
	}
	eng, err := engine.New(ctx, st, engine.UUIDv7Source{}, engOpts...)
	if err != nil {
		_ = st.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	return eng, st, nil
}

// closeStore logs close problems instead of failing; the command's
// result is already decided by the time it runs.
func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// dispatchFailure renders a failed dispatch or view and converts it to
// the domain-failure exit code. Errors without an outcome code are
// infrastructure problems and exit as command errors instead.
func dispatchFailure(f *OutputFormatter, err error) error {
	outcome := engine.OutcomeOf(err)
	if outcome == "" {
		return WrapExitError(ExitCommandError, "store access failed", err)
	}
	_ = f.Error(string(outcome), err.Error(), nil)
	return NewExitError(ExitFailure, err.Error())
}
