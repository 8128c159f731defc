package cache

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sco1/dl-vsix/pkg/errors"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

// DefaultMaxSizeMB is the default cache size budget in megabytes.
const DefaultMaxSizeMB = 512

// Cache manages a size-bounded directory of VSIX packages, keyed by
// extension. See the package documentation for the directory layout and
// eviction behavior.
type Cache struct {
	dir       string
	maxSizeMB float64
	logger    *log.Logger
	entries   map[vsix.Extension]Entry
}

// New opens the cache rooted at dir with the given size budget in
// megabytes. If dir does not exist it is created along with any missing
// parents; if it exists, every `*.vsix` file (case-insensitive) is parsed
// into an entry. The scan order is sorted so a directory holding two
// files for the same extension resolves deterministically
// (last-scanned-wins). The cache is pruned immediately if the existing
// contents already exceed the budget.
//
// If logger is nil, log.Default() is used.
func New(dir string, maxSizeMB float64, logger *log.Logger) (*Cache, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Cache{
		dir:       dir,
		maxSizeMB: maxSizeMB,
		logger:    logger,
		entries:   make(map[vsix.Extension]Entry),
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		return c, nil
	}

	if err := c.scan(); err != nil {
		return nil, err
	}
	if err := c.prune(); err != nil {
		return nil, err
	}
	return c, nil
}

// scan rebuilds the entry map from the directory listing.
func (c *Cache) scan() error {
	listing, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(listing))
	for _, d := range listing {
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), vsix.Ext) {
			continue
		}
		names = append(names, d.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		entry, err := EntryFromPath(filepath.Join(c.dir, name))
		if err != nil {
			return err
		}
		c.entries[entry.Extension] = entry
	}
	return nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string { return c.dir }

// MaxSize returns the configured size budget in megabytes.
func (c *Cache) MaxSize() float64 { return c.maxSizeMB }

// Len returns the number of cached extensions.
func (c *Cache) Len() int { return len(c.entries) }

// Size returns the current total cache size in megabytes.
func (c *Cache) Size() float64 {
	var total int64
	for _, e := range c.entries {
		total += e.Size
	}
	return bytesToMB(total)
}

// Contains reports whether ext has a cached package.
func (c *Cache) Contains(ext vsix.Extension) bool {
	_, ok := c.entries[ext]
	return ok
}

// CachedVersion returns the cached version for ext, or ok=false if the
// extension is not cached.
func (c *Cache) CachedVersion(ext vsix.Extension) (string, bool) {
	e, ok := c.entries[ext]
	if !ok {
		return "", false
	}
	return e.Version, true
}

// Entries returns the cached entries sorted by extension ID.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Extension.String() < out[j].Extension.String()
	})
	return out
}

// Insert copies the VSIX package at path into the cache.
//
// If the same extension is already cached at the same version, the copy
// is skipped unless force is set; this is the common "already cached"
// path, not an error. A different cached version is removed first: a
// freshly inserted package supersedes the existing one, the cache never
// holds two versions of the same extension. The copy preserves the
// source modification time, so eviction recency survives the insert.
// The cache is pruned afterwards.
func (c *Cache) Insert(path string, force bool) error {
	incoming, err := EntryFromPath(path)
	if err != nil {
		return err
	}

	if existing, ok := c.entries[incoming.Extension]; ok {
		if existing.Version == incoming.Version && !force {
			return nil
		}
		if _, err := c.Remove(incoming.Extension); err != nil {
			return err
		}
	}

	dest := filepath.Join(c.dir, filepath.Base(path))
	if err := copyPreservingModTime(path, dest); err != nil {
		return err
	}

	entry, err := EntryFromPath(dest)
	if err != nil {
		return err
	}
	c.entries[entry.Extension] = entry

	return c.prune()
}

// Remove deletes the cached package for ext. Removing an extension that
// is not cached is a reported no-op: removed is false and err is nil.
func (c *Cache) Remove(ext vsix.Extension) (removed bool, err error) {
	entry, ok := c.entries[ext]
	if !ok {
		c.logger.Warnf("Extension not in cache: %s", ext)
		return false, nil
	}

	if err := os.Remove(entry.Path); err != nil {
		return false, err
	}
	delete(c.entries, ext)
	c.logger.Debugf("Extension removed from cache: %s", entry.Filename())
	return true, nil
}

// Purge deletes every cached package and resets the entry map.
func (c *Cache) Purge() error {
	for _, e := range c.entries {
		if err := os.Remove(e.Path); err != nil {
			return err
		}
	}
	c.entries = make(map[vsix.Extension]Entry)
	return nil
}

// CopyTo exports the cached package for ext into destDir under its
// canonical `{id}_{version}.vsix` name and returns the new path. The
// cached copy is retained. Fails with NOT_A_DIRECTORY if destDir does not
// exist or is not a directory, and NOT_CACHED if ext has no entry.
func (c *Cache) CopyTo(ext vsix.Extension, destDir string) (string, error) {
	info, err := os.Stat(destDir)
	if err != nil || !info.IsDir() {
		return "", errors.New(errors.ErrCodeNotADirectory, "destination is not a directory or does not exist: %q", destDir)
	}

	entry, ok := c.entries[ext]
	if !ok {
		return "", errors.New(errors.ErrCodeNotCached, "extension not available in cache: %s", ext)
	}

	dest := filepath.Join(destDir, entry.Filename())
	if err := copyPreservingModTime(entry.Path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// prune evicts entries until the total size falls back under the budget.
// Entries are removed oldest-first by CreatedAt; freeing may overshoot
// the target when the oldest entry is large.
func (c *Cache) prune() error {
	size := c.Size()
	if size <= c.maxSizeMB {
		return nil
	}

	c.logger.Infof("Cache size exceeded (%.2f MB > %.2f MB), pruning", size, c.maxSizeMB)
	bytesNeeded := (size - c.maxSizeMB) * (1 << 20)

	oldestFirst := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		oldestFirst = append(oldestFirst, e)
	}
	sort.Slice(oldestFirst, func(i, j int) bool {
		return oldestFirst[i].CreatedAt.Before(oldestFirst[j].CreatedAt)
	})

	var freed float64
	for _, e := range oldestFirst {
		if freed >= bytesNeeded {
			break
		}
		if _, err := c.Remove(e.Extension); err != nil {
			return err
		}
		freed += float64(e.Size)
	}
	return nil
}

// copyPreservingModTime copies src to dest and carries over the source
// modification time, in the manner of `cp -p`. Entry CreatedAt is derived
// from mtime, so preserving it keeps eviction ordering honest.
//
// When src and dest resolve to the same file (the source already lives in
// the destination directory) the copy is skipped: truncating dest would
// zero the file mid-read.
func copyPreservingModTime(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if destInfo, err := os.Stat(dest); err == nil && os.SameFile(info, destInfo) {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
