package main

import (
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// load reads the config and builds the logger, honoring the log level
// override.
func (o *rootOptions) load() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	return cfg, logger.New(level), nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "wisdomflow",
		Short:        "Turn media, podcasts and documents into LLM-refined documents",
		Long:         "wisdomflow acquires raw text from streaming URLs, local media, podcast feeds and documents, then refines it into styled markdown documents.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newRunCommand(opts),
		newAcquireCommand(opts),
		newRefineCommand(opts),
		newWatchCommand(opts),
	)
	return cmd
}
