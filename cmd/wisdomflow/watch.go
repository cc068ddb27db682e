package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/wisdomflow/internal/pipeline"
	"github.com/nguyentantai21042004/wisdomflow/internal/watcher"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "watch",
		Short:        "Watch the inbox directory and acquire new files as they arrive",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Paths.Inbox == "" {
				return fmt.Errorf("paths.inbox is required for watch mode")
			}
			if err := os.MkdirAll(cfg.Paths.Inbox, 0755); err != nil {
				return fmt.Errorf("create inbox: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps := pipeline.NewDeps(cfg, l)
			handler := func(ctx context.Context, path string) error {
				state := pipeline.NewState(cfg, path)
				state.Cancelled = func() bool { return ctx.Err() != nil }
				return pipeline.AcquisitionFlow(deps).Run(ctx, state)
			}

			w, err := watcher.New(cfg.Paths.Inbox, handler, l, cfg.Performance.ProcessWorkers)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
