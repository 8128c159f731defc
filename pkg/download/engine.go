package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/sco1/dl-vsix/pkg/cache"
	"github.com/sco1/dl-vsix/pkg/errors"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

// Registry is the marketplace boundary the engine consumes. The concrete
// implementation lives in pkg/marketplace; tests substitute fakes.
type Registry interface {
	// LatestVersion resolves the latest released version of ext.
	LatestVersion(ctx context.Context, ext vsix.Extension, refresh bool) (string, error)

	// Download streams the VSIX asset for ext at version into w.
	Download(ctx context.Context, ext vsix.Extension, version string, w io.Writer) error
}

// Options configures one traversal.
type Options struct {
	// FollowDependencies enqueues extension dependencies declared in each
	// downloaded bundle's manifest.
	FollowDependencies bool

	// Refresh bypasses the registry's version-lookup cache.
	Refresh bool

	// Force re-inserts same-version packages into the artifact cache.
	Force bool
}

// Result records one completed extension: where its bundle landed and
// whether it was served from the artifact cache.
type Result struct {
	Extension vsix.Extension
	Version   string
	Path      string
	FromCache bool
}

// Failure records one extension that could not be downloaded.
type Failure struct {
	Extension vsix.Extension
	Err       error
}

// Report summarizes a traversal so partial success is auditable: every
// attempted extension shows up in Downloaded or in Failed (in both when
// its bundle downloaded but its manifest could not be read).
type Report struct {
	Downloaded []Result
	Failed     []Failure
}

// Engine orchestrates the work-queue traversal. Cache may be nil, in
// which case every extension is downloaded fresh and nothing is cached.
type Engine struct {
	registry Registry
	cache    *cache.Cache
	logger   *log.Logger
}

// NewEngine creates an Engine. If logger is nil, log.Default() is used.
func NewEngine(registry Registry, c *cache.Cache, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{registry: registry, cache: c, logger: logger}
}

// Run downloads the seed extensions (and, per opts, their transitive
// dependencies) into outDir, which must already exist (INVALID_TARGET
// otherwise).
//
// The queue is LIFO, a depth-first walk of the dependency graph; the
// order is incidental, the guarantee is that every reachable extension is
// attempted exactly once. Run returns an error only for conditions that
// invalidate the whole traversal (bad target, cancelled context,
// filesystem failures); per-extension registry failures land in the
// Report instead.
func (e *Engine) Run(ctx context.Context, seeds []vsix.Extension, outDir string, opts Options) (*Report, error) {
	info, err := os.Stat(outDir)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidTarget, "output directory does not exist: %q", outDir)
	}

	queue := make([]vsix.Extension, len(seeds))
	copy(queue, seeds)
	seen := make(map[vsix.Extension]struct{})
	queued := make(map[vsix.Extension]struct{}, len(seeds))
	for _, ext := range seeds {
		queued[ext] = struct{}{}
	}

	report := &Report{}
	for len(queue) > 0 {
		// The queue pop is the only natural suspension boundary.
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ext := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if _, ok := seen[ext]; ok {
			continue
		}

		path, result, err := e.fetch(ctx, ext, outDir, opts)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			if isFilesystemFailure(err) {
				return report, err
			}
			e.logger.Errorf("Could not download extension %s: %v", ext, errors.UserMessage(err))
			report.Failed = append(report.Failed, Failure{Extension: ext, Err: err})
			continue
		}

		seen[ext] = struct{}{}
		report.Downloaded = append(report.Downloaded, result)
		e.logger.Infof("Downloaded extension %s %s", ext, result.Version)

		if !opts.FollowDependencies {
			continue
		}

		deps, err := vsix.Dependencies(path)
		if err != nil {
			// A malformed manifest fails this bundle's extraction, not the batch.
			e.logger.Errorf("Could not read dependencies of %s: %v", ext, errors.UserMessage(err))
			report.Failed = append(report.Failed, Failure{Extension: ext, Err: err})
			continue
		}
		if len(deps) > 0 {
			e.logger.Debugf("Found %d dependencies for %s", len(deps), ext)
		}
		for dep := range deps {
			if _, ok := seen[dep]; ok {
				continue
			}
			if _, ok := queued[dep]; ok {
				continue
			}
			queued[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}

	return report, nil
}

// fetch resolves ext's latest version and materializes its bundle in
// outDir, from the artifact cache when possible.
func (e *Engine) fetch(ctx context.Context, ext vsix.Extension, outDir string, opts Options) (string, Result, error) {
	version, err := e.registry.LatestVersion(ctx, ext, opts.Refresh)
	if err != nil {
		return "", Result{}, err
	}

	if e.cache != nil {
		if cached, ok := e.cache.CachedVersion(ext); ok && cached == version {
			path, err := e.cache.CopyTo(ext, outDir)
			if err != nil {
				return "", Result{}, err
			}
			e.logger.Debugf("Serving %s %s from cache", ext, version)
			return path, Result{Extension: ext, Version: version, Path: path, FromCache: true}, nil
		}
	}

	path := filepath.Join(outDir, fmt.Sprintf("%s_%s%s", ext, version, vsix.Ext))
	if err := e.stream(ctx, ext, version, path); err != nil {
		return "", Result{}, err
	}

	if e.cache != nil {
		if err := e.cache.Insert(path, opts.Force); err != nil {
			return "", Result{}, err
		}
	}
	return path, Result{Extension: ext, Version: version, Path: path}, nil
}

// stream writes the asset through a .partial temp file renamed into place
// on success, so a failed transfer never masquerades as a complete bundle.
func (e *Engine) stream(ctx context.Context, ext vsix.Extension, version, dest string) error {
	partial := dest + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return err
	}

	if err := e.registry.Download(ctx, ext, version, f); err != nil {
		f.Close()
		_ = os.Remove(partial)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(partial)
		return err
	}
	return os.Rename(partial, dest)
}

// isFilesystemFailure distinguishes local failures, which abort the
// traversal, from per-extension registry failures, which do not.
func isFilesystemFailure(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeRegistry, errors.ErrCodeNetwork:
		return false
	}
	return true
}
