package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"video-strategist/agents/strategist"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce one strategy report and print it as JSON",
	Long: `Run the full pipeline once and write the report document to stdout.

Examples:
  strategist run --prompt "drone photography" --content-type shorts --region US`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("prompt", "", "topic or request to build a strategy for")
	runCmd.Flags().String("content-type", "both", "shorts, videos or both")
	runCmd.Flags().String("region", "", "ISO 3166-1 alpha-2 region code")
	_ = runCmd.MarkFlagRequired("prompt")
}

func runOnce(cmd *cobra.Command, args []string) error {
	prompt, _ := cmd.Flags().GetString("prompt")
	contentType, _ := cmd.Flags().GetString("content-type")
	region, _ := cmd.Flags().GetString("region")

	req, err := strategist.NewRequest(prompt, contentType, region)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if cfg.Server.PipelineTimeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cfg.Server.PipelineTimeout)
		defer stop()
	}

	pipeline, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	doc, err := pipeline.Run(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
