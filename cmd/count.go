package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/essay-wordfreq/internal/id/uuid"
	"github.com/JakeFAU/essay-wordfreq/internal/metrics"
)

func newCountCmd() *cobra.Command {
	var topWords int

	cmd := &cobra.Command{
		Use:   "count <url-file>",
		Short: "Process a local file of URLs and print the top words.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()
			metrics.Init()

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read url file: %w", err)
			}
			urls := strings.Split(string(content), "\n")

			runner, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			jobID, err := uuid.NewGenerator().NewID()
			if err != nil {
				return err
			}
			if err := runner.Process(cmd.Context(), jobID, args[0], urls); err != nil {
				return err
			}

			result, err := runner.Query(cmd.Context(), jobID, topWords)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(map[string]any{
				"top_words":   result.TopWords,
				"failed_urls": result.FailedURLs,
				"file_id":     result.JobID,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&topWords, "top-words", 0, "number of top words to return (default 10)")
	return cmd
}
