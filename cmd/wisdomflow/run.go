package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/internal/pipeline"
)

type runFlags struct {
	resume       bool
	skipExisting bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.resume, "resume", false, "skip sources whose transcript already exists")
	cmd.Flags().BoolVar(&f.skipExisting, "skip-existing", false, "skip refinement tasks whose output already exists")
}

func (f *runFlags) apply(cfg *config.Config) {
	if f.resume {
		cfg.Run.Resume = true
	}
	if f.skipExisting {
		cfg.Run.SkipExisting = true
	}
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:          "run [input]",
		Short:        "Run the full pipeline: acquisition then refinement",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := opts.load()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			return runPipeline(cmd.Context(), cfg, l, inputArg(args), pipeline.FullFlow)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAcquireCommand(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:          "acquire [input]",
		Short:        "Run acquisition only: produce raw transcripts",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := opts.load()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			return runPipeline(cmd.Context(), cfg, l, inputArg(args), pipeline.AcquisitionFlow)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRefineCommand(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:          "refine",
		Short:        "Run refinement only over existing transcripts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := opts.load()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			return runPipeline(cmd.Context(), cfg, l, "", pipeline.RefinementFlow)
		},
	}
	flags.register(cmd)
	return cmd
}

func inputArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// runPipeline executes one flow with signal-based cancellation and prints
// the run summary.
func runPipeline(ctx context.Context, cfg *config.Config, l logger.Logger, input string, build func(pipeline.Deps) *flow.Flow[*pipeline.State]) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := pipeline.NewDeps(cfg, l)
	state := pipeline.NewState(cfg, input)
	state.Cancelled = func() bool { return ctx.Err() != nil }
	state.Notify = func(msg string, sev domain.Severity) {
		switch sev {
		case domain.SeverityError:
			l.Error(ctx, "%s", msg)
		case domain.SeverityWarning:
			l.Warn(ctx, "%s", msg)
		default:
			l.Info(ctx, "%s", msg)
		}
	}
	state.Progress = func(p int) {
		l.Debug(ctx, "progress: %d%%", p)
	}

	if err := build(deps).Run(ctx, state); err != nil {
		return err
	}

	printSummary(state)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	fmt.Printf("Run %s finished.\n", state.RunID[:8])
	return nil
}
