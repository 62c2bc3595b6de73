package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/motion/internal/config"
	"github.com/okian/motion/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "motion",
		Short: "Classify arm motions as lift or sweep",
		Long: `motion labels recorded arm motions by nearest-neighbour voting against a
reference library of labeled actions.

Reference records are text lines of numbers (velocity, position, effort
triples, grouped 8 joints per bin) ending in the label "lift" or "sweep".

Configuration is read from defaults, then the YAML file named by
MOTION_CONFIG, then MOTION_* environment variables. Flags override all three.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(),
		newClassifyCmd(),
		newPrintCmd(),
		newImportCmd(),
		newGenerateCmd(),
	)
	return root
}

// setup initialises logging to w and loads configuration with the command's
// flag overrides applied.
func setup(cmd *cobra.Command, w io.Writer) (*config.Config, error) {
	if err := logger.InitWithWriter(w); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	overrideString(cmd, "log-level", &cfg.LogLevel)
	overrideString(cmd, "data", &cfg.DataFile)
	overrideString(cmd, "db", &cfg.DBPath)
	overrideString(cmd, "addr", &cfg.Addr)
	overrideInt(cmd, "workers", &cfg.WorkerCount)
	overrideBool(cmd, "strict-bins", &cfg.StrictBins)
	overrideBool(cmd, "watch", &cfg.WatchDataFile)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

func overrideString(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		if v, err := cmd.Flags().GetInt(name); err == nil {
			*dst = v
		}
	}
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			*dst = v
		}
	}
}

// openInput opens path for reading; "-" is the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
