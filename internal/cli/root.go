// Package cli implements the dlvsix command-line interface.
//
// This package provides commands for downloading VSIX extension bundles
// from the Visual Studio Marketplace (optionally following transitive
// extension dependencies) and for managing the local package cache. The
// CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
//   - download: Fetch one extension or a JSON-specified batch
//   - cache: Inspect and manage the local VSIX package cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sco1/dl-vsix/pkg/buildinfo"
)

// Execute runs the dlvsix CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (download,
// cache), configures logging based on the --verbose flag, and executes
// the command tree against ctx so SIGINT cancels in-flight downloads at
// the next queue boundary.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "dlvsix",
		Short:        "Download VSIX bundles for offline extension installation",
		Long:         `dlvsix downloads VSIX extension bundles from the Visual Studio Marketplace for offline installation, following declared extension dependencies and keeping a size-bounded local package cache.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newDownloadCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
