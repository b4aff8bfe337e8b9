package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deplist/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local plan cache",
		Long: `Manage the on-disk cache of resolved plans and rendered graphs.

A Redis cache configured with cache.url is not touched by these commands.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached plans and graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrune(cmd.Context(), true)
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrune(cmd.Context(), false)
		},
	}
}

func (c *CLI) runPrune(ctx context.Context, all bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Cache.URL != "" {
		printWarning("Redis cache at %s is managed by its TTLs", cfg.Cache.URL)
	}

	removed, kept, err := pruneCache(ctx, cfg.Cache.Dir, all)
	if err != nil {
		return err
	}
	if removed == 0 && kept == 0 {
		printInfo("Cache is empty")
		return nil
	}
	printSuccess("Removed %d cached entries", removed)
	if kept > 0 {
		printDetail("%d entries still valid", kept)
	}
	printDetail("Directory: %s", cfg.Cache.Dir)
	return nil
}

// pruneCache removes expired entries, or all entries, from the file cache
// at dir. A missing directory counts as empty.
func pruneCache(ctx context.Context, dir string, all bool) (removed, kept int, err error) {
	if dir == "" {
		return 0, 0, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("open cache: %w", err)
	}
	return fc.Prune(ctx, all)
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.Cache.Dir)
			return nil
		},
	}
}
