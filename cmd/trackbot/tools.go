package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/trackbot/internal/config"
	"github.com/phrazzld/trackbot/internal/platform/logger"
	"github.com/phrazzld/trackbot/internal/platform/ytdlp"
	"github.com/spf13/cobra"
)

// loadClient builds a yt-dlp client for the one-shot operator commands.
// Logs go to stderr so stdout stays parseable.
func loadClient(configFile string) (*config.Config, *ytdlp.Client, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(os.Stderr, cfg.Server.LogLevel)
	client, err := ytdlp.NewClient(cfg.Fetcher, nil, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func newSearchCmd(configFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search for tracks and print title and URL per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := loadClient(*configFile)
			if err != nil {
				return err
			}
			if limit < 1 {
				limit = cfg.Fetcher.SearchLimit
			}
			return runSearch(cmd.Context(), client, strings.Join(args, " "), limit, cmd)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default: fetcher.search_limit)")

	return cmd
}

func runSearch(ctx context.Context, client *ytdlp.Client, query string, limit int, cmd *cobra.Command) error {
	tracks, err := client.Search(ctx, query, limit)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		_, err := fmt.Fprintln(cmd.ErrOrStderr(), "no results")
		return err
	}
	for _, t := range tracks {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Title, t.URL); err != nil {
			return err
		}
	}
	return nil
}

func newFetchCmd(configFile *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download one URL as audio and print the file path and title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := loadClient(*configFile)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = filepath.Join(cfg.Storage.BaseDir, "cli")
			}
			return runFetch(cmd.Context(), client, args[0], dir, cmd)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "target directory (default: <storage.base_dir>/cli)")

	return cmd
}

func runFetch(ctx context.Context, client *ytdlp.Client, url, dir string, cmd *cobra.Command) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	path, title, err := client.Fetch(ctx, url, dir)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, title)
	return err
}
