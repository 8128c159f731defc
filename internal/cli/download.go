package cli

import (
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sco1/dl-vsix/pkg/cache"
	"github.com/sco1/dl-vsix/pkg/download"
	"github.com/sco1/dl-vsix/pkg/errors"
	"github.com/sco1/dl-vsix/pkg/marketplace"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

// downloadOpts holds the command-line flags for the download command.
type downloadOpts struct {
	specPath   string // JSON-specified collection of extensions
	outDir     string // download directory
	followDeps bool   // trace extension dependencies
	zipOutput  bool   // zip the downloaded extension(s)
	noCache    bool   // skip the local package cache
	force      bool   // force re-insert of same-version packages
	refresh    bool   // bypass the version-lookup cache
	configPath string // config file override
}

// newDownloadCmd creates the download command.
//
// A single extension ID and a spec file are mutually exclusive sources.
// The output directory is created if it does not exist.
func newDownloadCmd() *cobra.Command {
	opts := downloadOpts{outDir: "./vsix", followDeps: true}

	cmd := &cobra.Command{
		Use:   "download [extension-id]",
		Short: "Download VSIX bundles from the Visual Studio Marketplace",
		Long: `Download VSIX bundles for offline extension installation.

Provide a single extension by ID, or a JSON spec file with an "extensions"
list via --spec. Declared extension dependencies are followed by default.

Examples:
  dlvsix download ms-python.python
  dlvsix download --spec extensions.json -o ./bundles
  dlvsix download ms-python.python --zip --deps=false`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := resolveSeeds(args, opts.specPath)
			if err != nil {
				return err
			}
			return runDownload(cmd, seeds, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.specPath, "spec", "s", "", "JSON-specified collection of extensions")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", opts.outDir, "download directory")
	cmd.Flags().BoolVar(&opts.followDeps, "deps", opts.followDeps, "trace extension dependencies")
	cmd.Flags().BoolVarP(&opts.zipOutput, "zip", "z", false, "zip the downloaded extension(s)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the local package cache")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "force re-caching of same-version packages")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the version-lookup cache")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: ~/.config/dlvsix/config.toml)")

	return cmd
}

// resolveSeeds builds the seed extension set from either a single ID
// argument or a spec file; exactly one source must be provided.
func resolveSeeds(args []string, specPath string) ([]vsix.Extension, error) {
	switch {
	case len(args) == 1 && specPath != "":
		return nil, errors.New(errors.ErrCodeInvalidConfig, "provide either an extension ID or --spec, not both")
	case len(args) == 1:
		ext, err := vsix.ParseID(args[0])
		if err != nil {
			return nil, err
		}
		return []vsix.Extension{ext}, nil
	case specPath != "":
		return parseSpecFile(specPath)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "provide an extension ID or --spec")
	}
}

func runDownload(cmd *cobra.Command, seeds []vsix.Extension, opts downloadOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	client, err := marketplace.NewClient(cfg.VersionTTL())
	if err != nil {
		return err
	}

	pkgCache, err := openCache(cfg, opts.noCache, logger)
	if err != nil {
		return err
	}

	engine := download.NewEngine(client, pkgCache, logger)
	prog := newProgress(logger)

	report, err := engine.Run(ctx, seeds, opts.outDir, download.Options{
		FollowDependencies: opts.followDeps,
		Refresh:            opts.refresh,
		Force:              opts.force,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Downloaded %d extensions", len(report.Downloaded)))

	printReport(report, opts.outDir)

	if opts.zipOutput {
		zipPath := filepath.Join(filepath.Dir(filepath.Clean(opts.outDir)), "zipped_extensions.zip")
		if err := zipDir(opts.outDir, zipPath); err != nil {
			return fmt.Errorf("zip output: %w", err)
		}
		printSuccess("Zipped extensions to %s", zipPath)
	}

	if len(report.Failed) > 0 {
		return errors.New(errors.ErrCodeRegistry, "%d of %d extensions failed to download", len(report.Failed), len(report.Failed)+len(report.Downloaded))
	}
	return nil
}

// openCache opens the package cache per config, or returns nil when the
// cache is disabled. The engine treats a nil cache as "always fresh".
func openCache(cfg Config, noCache bool, logger *charmlog.Logger) (*cache.Cache, error) {
	if noCache {
		return nil, nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	return cache.New(dir, cfg.CacheMaxSizeMB, logger)
}

// printReport renders the traversal outcome so partial success is
// auditable: every failed extension is listed with its reason.
func printReport(report *download.Report, outDir string) {
	for _, r := range report.Downloaded {
		if r.FromCache {
			printSuccess("%s %s %s", r.Extension, r.Version, styleDim.Render("(cached)"))
		} else {
			printSuccess("%s %s", r.Extension, r.Version)
		}
	}
	for _, f := range report.Failed {
		printError("%s: %s", f.Extension, errors.UserMessage(f.Err))
	}

	if len(report.Downloaded) > 0 {
		printDetail("Output: %s", outDir)
	}
}
