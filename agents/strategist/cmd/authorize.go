package main

import (
	"video-strategist/agents/strategist/youtube"

	"github.com/spf13/cobra"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Authorize YouTube access with the OAuth device flow and save the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return youtube.Authorize(cmd.Context(), &cfg.YouTube, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
}
