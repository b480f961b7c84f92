package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Defaults come from
// HOARD_-prefixed environment variables; flags override them.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // capability store path
	Quota    int    // max elements per principal, 0 = unbounded
	LogLevel string // slog level name
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hoard CLI.
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := LoadConfig()
	opts := &RootOptions{LogLevel: cfg.LogLevel}

	cmd := &cobra.Command{
		Use:   "hoard",
		Short: "Hoard - a durable heap with storable operation capabilities",
		Long: `Hoard keeps one priority heap per principal in a SQLite capability
store. Heap operations are stored capabilities: init, insert, and extract
run through an audited checkout protocol, and every dispatch leaves an
audit record that can be replayed to verify the stored state.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return fmt.Errorf("invalid environment: %w", cfgErr)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.LogLevel, opts.Verbose)
			return nil
		},
	}

	// Global flags, with environment-supplied defaults.
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", cfg.Database, "path to the capability store (or HOARD_DB)")
	cmd.PersistentFlags().IntVar(&opts.Quota, "quota", cfg.Quota, "max elements per principal, 0 = unbounded (or HOARD_QUOTA)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewPeekCommand(opts))
	cmd.AddCommand(NewSizeCommand(opts))
	cmd.AddCommand(NewStatCommand(opts))
	cmd.AddCommand(NewSortCommand(opts))
	cmd.AddCommand(NewTopKCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
