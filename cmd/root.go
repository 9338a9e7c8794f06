// Package cmd defines and implements the CLI commands for the wordfreq executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/essay-wordfreq/internal/clock/system"
	"github.com/JakeFAU/essay-wordfreq/internal/config"
	"github.com/JakeFAU/essay-wordfreq/internal/fetcher"
	"github.com/JakeFAU/essay-wordfreq/internal/logging"
	"github.com/JakeFAU/essay-wordfreq/internal/pipeline"
	"github.com/JakeFAU/essay-wordfreq/internal/scheduler"
	"github.com/JakeFAU/essay-wordfreq/internal/storage/jsonfile"
	"github.com/JakeFAU/essay-wordfreq/internal/vocab"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordfreq",
		Short: "Batch URL word-frequency service.",
		Long: `wordfreq ingests batches of URLs, filters the fetched text against a
reference vocabulary, and answers top-K word-frequency queries by job id.
Per-URL word counts are cached on disk so URLs are never fetched twice.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (optional)")
	cmd.AddCommand(newServeCmd(), newCountCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared logger.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// buildRunner wires the durable stores, fetcher and scheduler into a pipeline runner.
func buildRunner(cfg config.Config, logger *zap.Logger) (*pipeline.Runner, error) {
	cache, err := jsonfile.NewCache(cfg.Storage.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	registry, err := jsonfile.NewRegistry(cfg.Storage.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	loader := vocab.NewLoader(cfg.Vocabulary.SourceURL, cfg.VocabularyTimeout(), logger)
	retrying := fetcher.New(fetcher.Config{
		MaxRetries:  cfg.Fetch.MaxRetries,
		BackoffBase: cfg.BackoffBase(),
		Timeout:     cfg.FetchTimeout(),
		UserAgent:   cfg.Fetch.UserAgent,
	}, logger)
	sched := scheduler.New(retrying, cache, scheduler.Config{
		BatchSize:   cfg.Pipeline.BatchSize,
		Concurrency: cfg.Pipeline.Concurrency,
	}, logger)

	return pipeline.New(loader, sched, cache, registry, system.New(), cfg.Pipeline.DefaultTopWords, logger), nil
}
