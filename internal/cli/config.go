package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sco1/dl-vsix/pkg/cache"
	"github.com/sco1/dl-vsix/pkg/errors"
)

// appName is the application name used for directories and display.
const appName = "dlvsix"

// defaultVersionTTL is how long resolved latest-version lookups stay fresh.
const defaultVersionTTL = 24 * time.Hour

// Config holds the user-tunable settings read from the optional TOML
// config file at ~/.config/dlvsix/config.toml (or $XDG_CONFIG_HOME).
type Config struct {
	// CacheDir overrides the default package cache location.
	CacheDir string `toml:"cache_dir"`

	// CacheMaxSizeMB is the package cache size budget in megabytes.
	CacheMaxSizeMB float64 `toml:"cache_max_size_mb"`

	// VersionTTLHours is how many hours a resolved latest-version lookup
	// stays fresh. 0 means never expire.
	VersionTTLHours int `toml:"version_ttl_hours"`
}

// defaultConfig returns the settings used when no config file exists.
func defaultConfig() Config {
	return Config{
		CacheMaxSizeMB:  cache.DefaultMaxSizeMB,
		VersionTTLHours: int(defaultVersionTTL / time.Hour),
	}
}

// loadConfig reads the config file at path, or the default location if
// path is empty. A missing file is not an error; defaults apply. A file
// that exists but fails to parse is INVALID_CONFIG.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// VersionTTL converts the configured hours to a duration.
func (c Config) VersionTTL() time.Duration {
	return time.Duration(c.VersionTTLHours) * time.Hour
}

// configPath returns the config file location using the XDG convention.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// cacheDir returns the package cache directory, honoring the config
// override and falling back to the XDG cache standard
// (~/.cache/dlvsix/packages/).
func cacheDir(cfg Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "packages"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "packages"), nil
}
