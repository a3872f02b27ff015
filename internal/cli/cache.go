package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/internal/config"
	"github.com/matzehuels/mindmap/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the document and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached documents and renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			switch cfg.Cache.Backend {
			case config.CacheNull, config.CacheMemory:
				printInfo("The %s cache keeps nothing between runs", cfg.Cache.Backend)
				return nil
			case config.CacheRedis:
				rc, err := cache.NewRedisCache(cmd.Context(), cfg.Cache.Redis)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(cmd.Context(), cfg.CacheKeyPrefix())
				if err != nil {
					return err
				}
				printSuccess("Cleared %s", plural(n, "key"))
				printDetail("Redis: %s", cfg.Cache.Redis.Addr)
				return nil
			}

			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				return err
			}
			cleared := 0
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				fc, err := cache.NewFileCache(filepath.Join(dir, e.Name()))
				if err != nil {
					return err
				}
				if err := fc.Clear(); err != nil {
					return err
				}
				cleared++
			}
			printSuccess("Cleared %s", plural(cleared, "cache"))
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.config().CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
