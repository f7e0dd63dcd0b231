package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ridasset/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached results and rendered graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context, w io.Writer) error {
	if c.Config.Cache.Disabled {
		printInfo(w, "Cache is disabled")
		return nil
	}
	backend, _, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	clearer, ok := backend.(cache.Clearer)
	if !ok {
		printInfo(w, "Cache is disabled")
		return nil
	}
	count, err := clearer.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if count == 0 {
		printInfo(w, "Cache is empty")
		return nil
	}
	printSuccess(w, "Cleared %d cached entries", count)
	printDetail(w, "Location: %s", c.cacheLocation())
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation is the Redis URL when Redis is configured, else the cache
// directory.
func (c *CLI) cacheLocation() string {
	if c.Config.Cache.Redis != "" {
		return c.Config.Cache.Redis
	}
	return c.Config.Cache.Dir
}
