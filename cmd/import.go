package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/motion/internal/adapters/repository"
	app "github.com/okian/motion/internal/app"
	"github.com/okian/motion/internal/config"
	"github.com/okian/motion/pkg/logger"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy reference records from a data file into the SQLite store",
		Long: `Reads labeled records from --data ("-" for stdin) and appends every kept
action to the store at --db. Ingestion statistics are printed as JSON.`,
		Example: `  motion import --data reference.csv --db motion.db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.DataFile == "" || cfg.DBPath == "" {
				return fmt.Errorf("%w: import needs --data and --db", config.ErrInvalidConfig)
			}
			in, err := openInput(cmd, cfg.DataFile)
			if err != nil {
				return err
			}
			defer in.Close()
			return importRecords(cmd.Context(), cfg, in, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("data", "", `reference record file, "-" for stdin`)
	cmd.Flags().String("db", "", "SQLite reference store")
	cmd.Flags().Bool("strict-bins", true, "skip reference records that do not fill whole bins")
	return cmd
}

func importRecords(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	store, err := repository.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	svc := newService(cfg, app.WithStore(store))
	stats, err := svc.LoadLibrary(ctx, in)
	if err != nil {
		return fmt.Errorf("import %s: %w", cfg.DataFile, err)
	}

	counts, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count stored actions: %w", err)
	}
	logger.Get().Info(ctx, "import complete",
		logger.Int("imported", stats.Kept()),
		logger.Any("stored", counts))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}
