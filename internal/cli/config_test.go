package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sco1/dl-vsix/pkg/cache"
	"github.com/sco1/dl-vsix/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	// A nonexistent path falls back to defaults without error.
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.CacheMaxSizeMB != cache.DefaultMaxSizeMB {
		t.Errorf("CacheMaxSizeMB = %v, want %v", cfg.CacheMaxSizeMB, cache.DefaultMaxSizeMB)
	}
	if cfg.VersionTTLHours != 24 {
		t.Errorf("VersionTTLHours = %v, want 24", cfg.VersionTTLHours)
	}
	if cfg.CacheDir != "" {
		t.Errorf("CacheDir = %q, want empty", cfg.CacheDir)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
cache_dir = "/tmp/custom-cache"
cache_max_size_mb = 128.0
version_ttl_hours = 6
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.CacheDir != "/tmp/custom-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.CacheMaxSizeMB != 128.0 {
		t.Errorf("CacheMaxSizeMB = %v, want 128", cfg.CacheMaxSizeMB)
	}
	if cfg.VersionTTLHours != 6 {
		t.Errorf("VersionTTLHours = %v, want 6", cfg.VersionTTLHours)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("cache_dir = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("loadConfig() error = %v, want INVALID_CONFIG", err)
	}
}

func TestCacheDir(t *testing.T) {
	t.Run("config override wins", func(t *testing.T) {
		dir, err := cacheDir(Config{CacheDir: "/opt/vsix-cache"})
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		if dir != "/opt/vsix-cache" {
			t.Errorf("cacheDir() = %q, want config override", dir)
		}
	})

	t.Run("XDG_CACHE_HOME", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/xdg/cache")
		dir, err := cacheDir(Config{})
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		want := filepath.Join("/xdg/cache", appName, "packages")
		if dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		dir, err := cacheDir(Config{})
		if err != nil {
			t.Fatalf("cacheDir() error: %v", err)
		}
		home, _ := os.UserHomeDir()
		want := filepath.Join(home, ".cache", appName, "packages")
		if dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}
