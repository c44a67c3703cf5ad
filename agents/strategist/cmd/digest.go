package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"video-strategist/agents/strategist"
	"video-strategist/shared/email"
	"video-strategist/shared/scheduler"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Email strategy reports for the configured requests on a schedule",
	Long: `Run every configured digest request and mail the reports, on digest.schedule.

Examples:
  strategist digest            # Run on the cron schedule with a health endpoint
  strategist digest --once     # Run once and exit`,
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)

	digestCmd.Flags().Bool("once", false, "run the digest once and exit")
}

func runDigest(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("once")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := strategist.NewDigestAgent(cfg, func() (strategist.Runner, strategist.Mailer, error) {
		pipeline, err := newPipeline(ctx)
		if err != nil {
			return nil, nil, err
		}
		return pipeline, email.NewSender(&cfg.Email), nil
	})
	s := scheduler.New(cfg, agent)

	if once {
		if err := agent.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize agent: %w", err)
		}
		return s.RunOnce(ctx)
	}

	slog.Info("starting digest scheduler")
	if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
