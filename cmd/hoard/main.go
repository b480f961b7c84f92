// Command hoard manages per-principal priority heaps in a SQLite
// capability store and exposes the heap toolkit (sort, top-k, ordering
// profiles) for one-shot use.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/hoard/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Errors carrying ExitFailure were already rendered by the
		// command's formatter; everything else has not been shown yet.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != cli.ExitFailure {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
