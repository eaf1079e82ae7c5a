package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "trackbot",
		Short:         "Chat bot that searches for and delivers audio tracks",
		Long:          "trackbot runs a Telegram bot that looks up tracks with yt-dlp and sends them back as audio, processing each user's requests in order, one at a time.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"path to a config file (default: trackbot.yaml in the working directory, if present)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(&configFile),
		newSearchCmd(&configFile),
		newFetchCmd(&configFile),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version + "\n"))
			return err
		},
	}
}
