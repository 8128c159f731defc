package vsix

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/sco1/dl-vsix/pkg/errors"
)

// ManifestPath is the well-known manifest location inside a VSIX bundle.
const ManifestPath = "extension/package.json"

// manifest is the subset of the extension manifest we care about.
// An absent extensionDependencies field decodes to a nil slice, which is
// treated the same as an empty declaration.
type manifest struct {
	ExtensionDependencies []string `json:"extensionDependencies"`
}

// Dependencies reads the declared extension dependencies from a VSIX
// bundle on disk.
//
// The bundle is opened as a zip archive and the extension/package.json
// entry is extracted to a temporary directory that is removed before
// Dependencies returns, on every path. A bundle with no manifest entry
// yields an empty set. A manifest that is present but not valid JSON
// fails with INVALID_MANIFEST; a declared dependency that is not a valid
// extension ID fails with INVALID_EXTENSION_ID.
func Dependencies(vsixPath string) (map[Extension]struct{}, error) {
	tmpDir, err := os.MkdirTemp("", "dlvsix-manifest-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	manifestFile, err := extractManifest(vsixPath, tmpDir)
	if err != nil {
		return nil, err
	}
	if manifestFile == "" {
		// No embedded manifest: a dependency-free bundle, not an error.
		return map[Extension]struct{}{}, nil
	}

	data, err := os.ReadFile(manifestFile)
	if err != nil {
		return nil, err
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s in %s", ManifestPath, filepath.Base(vsixPath))
	}

	deps := make(map[Extension]struct{}, len(m.ExtensionDependencies))
	for _, id := range m.ExtensionDependencies {
		ext, err := ParseID(id)
		if err != nil {
			return nil, err
		}
		deps[ext] = struct{}{}
	}
	return deps, nil
}

// extractManifest copies the manifest entry out of the bundle into dir and
// returns its path, or "" if the bundle has no manifest entry.
func extractManifest(vsixPath, dir string) (string, error) {
	zr, err := zip.OpenReader(vsixPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidManifest, err, "open %s as zip", filepath.Base(vsixPath))
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != ManifestPath {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		dest := filepath.Join(dir, "package.json")
		out, err := os.Create(dest)
		if err != nil {
			return "", err
		}
		defer out.Close()

		if _, err := io.Copy(out, rc); err != nil {
			return "", err
		}
		return dest, nil
	}
	return "", nil
}
