package cache

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sco1/dl-vsix/pkg/errors"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

func newTestCache(t *testing.T, maxSizeMB float64) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), maxSizeMB, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNewCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "nested", "cache")
	c, err := New(dir, DefaultMaxSizeMB, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("cache directory was not created: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestNewScansExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ms-python.python_2024.2.1.vsix", 100)
	writeFile(t, dir, "golang.go_0.41.0.vsix", 200)
	writeFile(t, dir, "notes.txt", 50) // not a VSIX, ignored

	c, err := New(dir, DefaultMaxSizeMB, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	v, ok := c.CachedVersion(vsix.Extension{Publisher: "ms-python", Name: "python"})
	if !ok || v != "2024.2.1" {
		t.Errorf("CachedVersion() = %q, %v; want 2024.2.1, true", v, ok)
	}
}

func TestSize(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	src := writeFile(t, t.TempDir(), "a.b_1.0.0.vsix", 1_000_000)

	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	want := 1_000_000.0 / (1 << 20) // ~0.95 MB
	if got := c.Size(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Size() = %v MB, want %v MB", got, want)
	}
}

func TestInsertSameVersionSkips(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	srcDir := t.TempDir()
	src := writeFile(t, srcDir, "a.b_1.0.0.vsix", 100)

	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	before := c.Entries()[0].CreatedAt

	// Touch the source so a re-copy would change the cached mtime.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, later, later); err != nil {
		t.Fatal(err)
	}

	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if got := c.Entries()[0].CreatedAt; !got.Equal(before) {
		t.Errorf("CreatedAt changed on same-version insert: %v -> %v", before, got)
	}
}

func TestInsertSameVersionForced(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	srcDir := t.TempDir()
	src := writeFile(t, srcDir, "a.b_1.0.0.vsix", 100)

	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	before := c.Entries()[0].CreatedAt

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, later, later); err != nil {
		t.Fatal(err)
	}

	if err := c.Insert(src, true); err != nil {
		t.Fatalf("Insert(force) error: %v", err)
	}

	if got := c.Entries()[0].CreatedAt; got.Equal(before) {
		t.Error("forced insert should re-copy the package")
	}
}

func TestInsertNewerVersionReplaces(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	srcDir := t.TempDir()
	old := writeFile(t, srcDir, "a.b_1.0.0.vsix", 100)
	newer := writeFile(t, srcDir, "a.b_2.0.0.vsix", 100)

	if err := c.Insert(old, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	oldCached := filepath.Join(c.Dir(), "a.b_1.0.0.vsix")

	if err := c.Insert(newer, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (replace, not coexist)", c.Len())
	}
	v, _ := c.CachedVersion(vsix.Extension{Publisher: "a", Name: "b"})
	if v != "2.0.0" {
		t.Errorf("CachedVersion() = %q, want 2.0.0", v)
	}
	if _, err := os.Stat(oldCached); !os.IsNotExist(err) {
		t.Errorf("old version still on disk: %v", err)
	}
}

func TestInsertFromInsideCacheDir(t *testing.T) {
	// The engine calls Insert on the freshly written output path; with the
	// output directory pointed at the cache directory, source and
	// destination are the same file. The insert must register the entry
	// without truncating the artifact.
	c := newTestCache(t, DefaultMaxSizeMB)
	src := writeFile(t, c.Dir(), "a.b_1.0.0.vsix", 1024)

	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		t.Fatalf("stat cached artifact: %v", err)
	}
	if info.Size() != 1024 {
		t.Errorf("artifact truncated: size = %d bytes, want 1024", info.Size())
	}
	if !c.Contains(vsix.Extension{Publisher: "a", Name: "b"}) {
		t.Error("entry should be registered")
	}
}

func TestInsertBadPath(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	err := c.Insert(filepath.Join(t.TempDir(), "missing.vsix"), false)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Insert() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestPruneEvictsOldestFirst(t *testing.T) {
	c := newTestCache(t, 1.0) // 1 MB budget
	srcDir := t.TempDir()

	// Created oldest to newest: 700k, 300k, 1M. Pruning a 1 MB cache must
	// evict the two oldest and leave only the newest 1M entry.
	specs := []struct {
		name string
		size int
		age  time.Duration
	}{
		{"pub.oldest_1.0.0.vsix", 700_000, -3 * time.Hour},
		{"pub.middle_1.0.0.vsix", 300_000, -2 * time.Hour},
		{"pub.newest_1.0.0.vsix", 1_000_000, -1 * time.Hour},
	}

	for _, s := range specs[:2] {
		src := writeFile(t, srcDir, s.name, s.size)
		stamp := time.Now().Add(s.age)
		if err := os.Chtimes(src, stamp, stamp); err != nil {
			t.Fatal(err)
		}
		if err := c.Insert(src, false); err != nil {
			t.Fatalf("Insert(%s) error: %v", s.name, err)
		}
	}

	// The final insert pushes the total over 1 MB and triggers eviction.
	src := writeFile(t, srcDir, specs[2].name, specs[2].size)
	stamp := time.Now().Add(specs[2].age)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert(%s) error: %v", specs[2].name, err)
	}

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after pruning", c.Len())
	}
	if !c.Contains(vsix.Extension{Publisher: "pub", Name: "newest"}) {
		t.Error("newest entry should survive pruning")
	}
	for _, gone := range []string{"pub.oldest_1.0.0.vsix", "pub.middle_1.0.0.vsix"} {
		if _, err := os.Stat(filepath.Join(c.Dir(), gone)); !os.IsNotExist(err) {
			t.Errorf("%s should have been evicted from disk", gone)
		}
	}
}

func TestPruneOnInit(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "pub.old_1.0.0.vsix", 900_000)
	stamp := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "pub.new_1.0.0.vsix", 900_000)

	c, err := New(dir, 1.0, log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after init prune", c.Len())
	}
	if !c.Contains(vsix.Extension{Publisher: "pub", Name: "new"}) {
		t.Error("newest entry should survive init pruning")
	}
}

func TestRemoveMissingIsNoOp(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	removed, err := c.Remove(vsix.Extension{Publisher: "no", Name: "body"})
	if err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if removed {
		t.Error("Remove() = true for missing extension, want false")
	}
}

func TestRemove(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	src := writeFile(t, t.TempDir(), "a.b_1.0.0.vsix", 100)
	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	removed, err := c.Remove(vsix.Extension{Publisher: "a", Name: "b"})
	if err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if !removed {
		t.Error("Remove() = false, want true")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if _, err := os.Stat(filepath.Join(c.Dir(), "a.b_1.0.0.vsix")); !os.IsNotExist(err) {
		t.Error("backing file should be deleted")
	}
}

func TestPurge(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	srcDir := t.TempDir()
	for _, name := range []string{"a.b_1.0.0.vsix", "c.d_2.0.0.vsix"} {
		if err := c.Insert(writeFile(t, srcDir, name, 100), false); err != nil {
			t.Fatalf("Insert(%s) error: %v", name, err)
		}
	}

	if err := c.Purge(); err != nil {
		t.Fatalf("Purge() error: %v", err)
	}

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if entries := c.Entries(); len(entries) != 0 {
		t.Errorf("Entries() = %v, want empty", entries)
	}
	listing, _ := os.ReadDir(c.Dir())
	if len(listing) != 0 {
		t.Errorf("cache directory still holds %d files", len(listing))
	}
}

func TestCopyTo(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	src := writeFile(t, t.TempDir(), "a.b_1.0.0.vsix", 100)
	if err := c.Insert(src, false); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	destDir := t.TempDir()
	got, err := c.CopyTo(vsix.Extension{Publisher: "a", Name: "b"}, destDir)
	if err != nil {
		t.Fatalf("CopyTo() error: %v", err)
	}

	want := filepath.Join(destDir, "a.b_1.0.0.vsix")
	if got != want {
		t.Errorf("CopyTo() = %q, want %q", got, want)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
	// Cached copy is retained.
	if !c.Contains(vsix.Extension{Publisher: "a", Name: "b"}) {
		t.Error("CopyTo() should not remove the cached entry")
	}
}

func TestCopyToFailures(t *testing.T) {
	c := newTestCache(t, DefaultMaxSizeMB)
	ext := vsix.Extension{Publisher: "a", Name: "b"}

	_, err := c.CopyTo(ext, filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, errors.ErrCodeNotADirectory) {
		t.Errorf("CopyTo() error = %v, want NOT_A_DIRECTORY", err)
	}

	_, err = c.CopyTo(ext, t.TempDir())
	if !errors.Is(err, errors.ErrCodeNotCached) {
		t.Errorf("CopyTo() error = %v, want NOT_CACHED", err)
	}
}
