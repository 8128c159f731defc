package cli

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestZipDir(t *testing.T) {
	srcDir := t.TempDir()
	files := map[string]string{
		"ms-python.python_2024.2.1.vsix": "python bytes",
		"golang.go_0.41.0.vsix":          "go bytes",
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dest := filepath.Join(t.TempDir(), "zipped_extensions.zip")
	if err := zipDir(srcDir, dest); err != nil {
		t.Fatalf("zipDir() error: %v", err)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)

	want := []string{"golang.go_0.41.0.vsix", "ms-python.python_2024.2.1.vsix"}
	if len(names) != len(want) {
		t.Fatalf("archive holds %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("archive entry %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestZipDirEmpty(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.zip")
	if err := zipDir(t.TempDir(), dest); err != nil {
		t.Fatalf("zipDir() error: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("archive not created: %v", err)
	}
}
