package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/motion/internal/adapters/ingest"
	app "github.com/okian/motion/internal/app"
	"github.com/okian/motion/internal/config"
	"github.com/okian/motion/internal/domain/types"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label each input action against a reference library",
		Long: `Loads the reference library from --data (and --db if set), reads one action
per line from --input (labels on input lines are ignored) and prints one label
per line in input order. An action with no samples prints an empty line.`,
		Example: `  motion classify --data reference.csv --input unknown.csv
  cat unknown.csv | motion classify --data reference.csv --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			in, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer in.Close()
			return classifyStream(cmd.Context(), cfg, in, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("data", "", "reference record file")
	cmd.Flags().String("db", "", "SQLite reference store")
	cmd.Flags().StringVar(&input, "input", "-", `actions to classify, "-" for stdin`)
	cmd.Flags().Int("workers", 0, "classification workers")
	cmd.Flags().Bool("strict-bins", true, "skip reference records that do not fill whole bins")
	return cmd
}

// classifyStream runs every action read from in through the service's job
// pipeline and writes the labels to out in input order.
func classifyStream(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	if cfg.DataFile == "" && cfg.DBPath == "" {
		return fmt.Errorf("%w: a reference library needs --data or --db", config.ErrInvalidConfig)
	}
	actions, err := ingest.ReadActions(ctx, in)
	if err != nil {
		return err
	}

	svc := newService(cfg, append(withReferenceSources(cfg),
		app.WithQueueSize(max(len(actions), 1)),
		app.WithResultRetention(max(len(actions), 1)),
	)...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() { _ = svc.Stop(context.WithoutCancel(ctx)) }()

	jobIDs := make([]string, len(actions))
	for i, action := range actions {
		id, _, err := svc.Submit(ctx, "", action)
		if err != nil {
			return fmt.Errorf("submit action %d: %w", i+1, err)
		}
		jobIDs[i] = id
	}
	for i, id := range jobIDs {
		job, err := svc.Wait(ctx, id)
		if err != nil {
			return fmt.Errorf("wait for action %d: %w", i+1, err)
		}
		if job.Status == types.JobFailed {
			return fmt.Errorf("classify action %d: %s", i+1, job.Error)
		}
		if _, err := fmt.Fprintln(out, job.Result.Label); err != nil {
			return fmt.Errorf("write label: %w", err)
		}
	}
	return nil
}
