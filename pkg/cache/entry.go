package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sco1/dl-vsix/pkg/errors"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

// Entry describes one cached VSIX package. CreatedAt and Size are derived
// from the filesystem at construction time, never user-supplied, so they
// always reflect the real file at the moment the Entry was built.
type Entry struct {
	Extension vsix.Extension
	Version   string
	CreatedAt time.Time
	Path      string
	Size      int64
}

// EntryFromPath builds an Entry by parsing a VSIX filepath of the form
// `{publisher}.{name}_{version}.vsix`.
//
// Failure modes:
//   - FILE_NOT_FOUND: the path does not exist
//   - NOT_VSIX: the extension is not .vsix (case-insensitive)
//   - INVALID_CACHE_FILENAME: the stem does not split into exactly an
//     ID part and a version part on "_"
//   - INVALID_EXTENSION_ID: the ID part is not a valid extension ID
func EntryFromPath(path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, errors.New(errors.ErrCodeFileNotFound, "file does not exist: %q", path)
		}
		return Entry{}, err
	}

	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), vsix.Ext) {
		return Entry{}, errors.New(errors.ErrCodeNotVSIX, "`%s` does not appear to be a VSIX package", base)
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(stem, "_")
	if len(parts) != 2 {
		return Entry{}, errors.New(errors.ErrCodeInvalidCacheName, "cannot split %q into extension ID and version", stem)
	}

	ext, err := vsix.ParseID(parts[0])
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Extension: ext,
		Version:   parts[1],
		CreatedAt: info.ModTime(),
		Path:      path,
		Size:      info.Size(),
	}, nil
}

// String renders the entry as `{id}_{version} (x.xx MB)`.
func (e Entry) String() string {
	return fmt.Sprintf("%s_%s (%.2f MB)", e.Extension, e.Version, bytesToMB(e.Size))
}

// Filename returns the canonical cache filename for the entry.
func (e Entry) Filename() string {
	return fmt.Sprintf("%s_%s%s", e.Extension, e.Version, vsix.Ext)
}

// bytesToMB converts a byte count to megabytes (MiB).
func bytesToMB(n int64) float64 {
	return float64(n) / (1 << 20)
}
