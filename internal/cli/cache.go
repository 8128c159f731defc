package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sco1/dl-vsix/pkg/cache"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

// newCacheCmd creates the cache management command.
func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local VSIX package cache",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/dlvsix/config.toml)")

	cmd.AddCommand(newCacheInfoCmd(&configPath))
	cmd.AddCommand(newCacheListCmd(&configPath))
	cmd.AddCommand(newCacheRemoveCmd(&configPath))
	cmd.AddCommand(newCachePurgeCmd(&configPath))
	cmd.AddCommand(newCacheExportCmd(&configPath))

	return cmd
}

// openConfiguredCache opens the package cache per the resolved config.
func openConfiguredCache(cmd *cobra.Command, configPath string) (*cache.Cache, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	return cache.New(dir, cfg.CacheMaxSizeMB, loggerFromContext(cmd.Context()))
}

// newCacheInfoCmd creates the "cache info" subcommand.
func newCacheInfoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print summary info for the package cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConfiguredCache(cmd, *configPath)
			if err != nil {
				return err
			}

			printKeyValue("Cache Location:", c.Dir())
			printKeyValue("Cached Extensions:", fmt.Sprintf("%d", c.Len()))
			printKeyValue("Cache Size:", fmt.Sprintf("%.2f / %.2f MB", c.Size(), c.MaxSize()))
			return nil
		},
	}
}

// newCacheListCmd creates the "cache list" subcommand.
func newCacheListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the VSIX packages currently in the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConfiguredCache(cmd, *configPath)
			if err != nil {
				return err
			}

			entries := c.Entries()
			if len(entries) == 0 {
				printInfo("No cached extensions.")
				return nil
			}

			printInfo("Cache contents:")
			for _, e := range entries {
				printDetail("- %s", e)
			}
			return nil
		},
	}
}

// newCacheRemoveCmd creates the "cache remove" subcommand.
func newCacheRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <extension-id>",
		Short: "Remove an extension from the package cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := vsix.ParseID(args[0])
			if err != nil {
				return err
			}

			c, err := openConfiguredCache(cmd, *configPath)
			if err != nil {
				return err
			}

			removed, err := c.Remove(ext)
			if err != nil {
				return err
			}
			if !removed {
				printWarning("Extension not in cache: %s", ext)
				return nil
			}
			printSuccess("Removed %s from cache", ext)
			return nil
		},
	}
}

// newCachePurgeCmd creates the "cache purge" subcommand.
func newCachePurgeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove all VSIX packages from the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openConfiguredCache(cmd, *configPath)
			if err != nil {
				return err
			}

			count := c.Len()
			if err := c.Purge(); err != nil {
				return err
			}
			printSuccess("Purged %s cached extensions", styleNumber.Render(fmt.Sprintf("%d", count)))
			printDetail("Directory: %s", c.Dir())
			return nil
		},
	}
}

// newCacheExportCmd creates the "cache export" subcommand.
func newCacheExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <extension-id> <dest-dir>",
		Short: "Copy a cached VSIX package to a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := vsix.ParseID(args[0])
			if err != nil {
				return err
			}

			c, err := openConfiguredCache(cmd, *configPath)
			if err != nil {
				return err
			}

			dest, err := c.CopyTo(ext, args[1])
			if err != nil {
				return err
			}
			printSuccess("Exported %s", dest)
			return nil
		},
	}
}
