package main

import (
	"context"
	"fmt"
	"os"

	"video-strategist/agents/strategist"
	"video-strategist/agents/strategist/youtube"
	"video-strategist/shared/ai"
	"video-strategist/shared/config"
	"video-strategist/shared/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "strategist",
	Short: "Video content strategy reports from trending and search results",
	Long: `strategist discovers reference videos for a topic, analyzes the strongest
of them and produces a structured content strategy report.

Example usage:
  strategist serve                                  # HTTP API on server.port
  strategist run --prompt "drone photography"       # One report to stdout
  strategist digest                                 # Scheduled email digest
  strategist authorize                              # Store a YouTube OAuth token`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			if err := os.Setenv("CONFIG_FILE", cfgFile); err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logging.Init(cfg.Server.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_FILE or config.yaml)")
}

func newPipeline(ctx context.Context) (*strategist.Pipeline, error) {
	client, err := youtube.NewClient(ctx, &cfg.YouTube)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	generator, err := ai.NewGeminiGenerator(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return strategist.New(cfg, client, generator), nil
}
