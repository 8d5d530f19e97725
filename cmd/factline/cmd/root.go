// Package cmd implements the factline command tree.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/factline/registry/internal/config"
	"github.com/factline/registry/pkg/logging"
)

var (
	configFile string
	cfg        *config.Config

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "factline",
	Short: "Government registry reconciliation CLI",
	Long: `Factline maintains a canonical registry of government organizations,
people and positions, reconciled from multiple public sources.

It syncs upstream feeds through a matching and merging pipeline, tracks
who held which position over time, and answers point-in-time queries
against the canonical record set.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default $HOME/.factline.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.BoolP("quiet", "q", false, "suppress non-error output")
	pf.StringP("output", "o", "text", "output format (text|json|yaml)")
	pf.String("db", "", "SQLite database path (overrides config)")

	for _, name := range []string{"verbose", "quiet", "output"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
	_ = viper.BindPFlag("db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("config", pf.Lookup("config"))
}

// setup loads configuration and wires logging before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	switch {
	case cfg.Quiet:
		level = zerolog.ErrorLevel
	case cfg.Verbose:
		level = zerolog.DebugLevel
	default:
		if parsed, perr := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); perr == nil {
			level = parsed
		}
	}
	logger := logging.NewConsole().Level(level)
	if cfg.LogFormat == "json" {
		logger = logging.NewJSON(os.Stderr).Level(level)
	}
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), &logger))
	return nil
}
