package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/lmittmann/tint"
)

// envPrefix namespaces the environment variables read by LoadConfig,
// e.g. HOARD_DB and HOARD_QUOTA.
const envPrefix = "hoard"

// Config holds the environment-supplied defaults for the CLI. Flags
// override every field, so the environment only sets the baseline.
type Config struct {
	// Database is the capability store path (HOARD_DB).
	Database string `envconfig:"DB"`

	// Format selects the output rendering: text or json (HOARD_FORMAT).
	Format string `envconfig:"FORMAT" default:"text"`

	// LogLevel is the slog level name: debug, info, warn, or error
	// (HOARD_LOG_LEVEL).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Quota bounds elements per principal; zero means unbounded
	// (HOARD_QUOTA).
	Quota int `envconfig:"QUOTA"`
}

// LoadConfig reads HOARD_-prefixed environment variables. On error the
// returned Config still carries usable built-in defaults so the root
// command can register flags before surfacing the problem.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{Format: "text", LogLevel: "info"}, err
	}
	return cfg, nil
}

// setupLogging installs the default slog logger on stderr so log lines
// never mix into command output. Verbose forces debug regardless of the
// configured level.
func setupLogging(level string, verbose bool) {
	logLevel := parseLogLevel(level)
	if verbose {
		logLevel = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
	})
	slog.SetDefault(slog.New(handler))
}

// parseLogLevel maps a level name to its slog level, defaulting to info
// for anything unrecognized.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
