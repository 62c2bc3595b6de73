package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/motion/internal/adapters/render"
	app "github.com/okian/motion/internal/app"
	"github.com/okian/motion/internal/config"
	"github.com/spf13/cobra"
)

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the reference library, lifts first",
		Long: `Loads the reference library and prints every action as "vel pos eff " per
sample followed by its label: all lifts, then all sweeps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printLibrary(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("data", "", "reference record file")
	cmd.Flags().String("db", "", "SQLite reference store")
	cmd.Flags().Bool("strict-bins", true, "skip reference records that do not fill whole bins")
	return cmd
}

func printLibrary(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.DataFile == "" && cfg.DBPath == "" {
		return fmt.Errorf("%w: print needs --data or --db", config.ErrInvalidConfig)
	}
	// Start seeds the library; the job pipeline is never used here.
	svc := newService(cfg, append(withReferenceSources(cfg), app.WithWorkerCount(1))...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("load library: %w", err)
	}
	defer func() { _ = svc.Stop(context.WithoutCancel(ctx)) }()

	return render.WriteLibrary(out, svc.Library())
}
