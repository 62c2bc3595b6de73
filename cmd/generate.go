package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/motion/internal/domain/classify"
	"github.com/okian/motion/internal/domain/library"
	"github.com/okian/motion/internal/synth"
	"github.com/okian/motion/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	filePermission = 0o600
	remoteTimeout  = 10 * time.Second
)

type generateOptions struct {
	synth.Config
	probes int
	out    string
	target string
}

func newGenerateCmd() *cobra.Command {
	opts := generateOptions{Config: synth.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic labeled dataset",
		Long: `Generates --actions labeled reference records of --bins bins each. The same
--seed always yields the same records.

With --probes N, N more actions are generated from the same distribution and
classified against the references; the accuracy report is printed as JSON on
stderr. With --target the references are posted to a running server and the
probes are classified there instead of locally.`,
		Example: `  motion generate --actions 100 --bins 4 --seed 42 --out reference.csv
  motion generate --actions 100 --probes 20 --target http://localhost:9080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := setup(cmd, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return runGenerate(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Actions, "actions", opts.Actions, "reference actions to generate")
	f.IntVar(&opts.Bins, "bins", opts.Bins, "bins per action")
	f.Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	f.Float64Var(&opts.LiftShare, "lift-share", opts.LiftShare, "fraction of lift actions")
	f.Float64Var(&opts.Noise, "noise", opts.Noise, "per-sample noise standard deviation")
	f.IntVar(&opts.probes, "probes", 0, "extra actions to classify against the references")
	f.StringVar(&opts.out, "out", "-", `output file, "-" for stdout`)
	f.StringVar(&opts.target, "target", "", "base URL of a motion server to post references to")
	return cmd
}

func runGenerate(ctx context.Context, opts generateOptions, stdout, stderr io.Writer) error {
	cfg := opts.Config
	cfg.Actions = opts.Actions + opts.probes
	records, err := synth.Generate(ctx, cfg)
	if err != nil {
		return err
	}
	refs, probes := synth.Split(records, opts.Actions)

	var c classify.Classifier
	if opts.target != "" {
		client := synth.NewClient(opts.target, remoteTimeout)
		if err := client.CheckHealth(ctx); err != nil {
			return err
		}
		stats, err := client.PostLibrary(ctx, refs)
		if err != nil {
			return err
		}
		logger.Get().Info(ctx, "references posted",
			logger.String("target", opts.target),
			logger.Int("kept", stats.Kept()))
		c = client
	} else {
		if err := writeRecords(opts.out, stdout, refs); err != nil {
			return err
		}
		lib := library.New(library.WithStrictBins(true))
		for _, r := range refs {
			lib.Add(r.Action, r.Label.String())
		}
		c = classify.New(lib)
	}

	if len(probes) == 0 {
		return nil
	}
	report, err := synth.Evaluate(ctx, c, probes, cfg.Workers)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stderr)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeRecords(path string, stdout io.Writer, records []synth.Record) error {
	if path == "-" {
		return synth.WriteRecords(stdout, records)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := synth.WriteRecords(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
