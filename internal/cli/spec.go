package cli

import (
	"encoding/json"
	"os"

	"github.com/sco1/dl-vsix/pkg/errors"
	"github.com/sco1/dl-vsix/pkg/vsix"
)

// specFile is the JSON batch format: extension IDs are provided by an
// "extensions" field as a list of strings, e.g.
//
//	{
//	  "extensions": [
//	    "ms-python.python",
//	    "ms-python.vscode-pylance"
//	  ]
//	}
type specFile struct {
	Extensions []string `json:"extensions"`
}

// parseSpecFile loads a batch of extension IDs from a JSON spec file.
// An absent "extensions" field yields an empty batch; a malformed
// extension ID fails the whole load.
func parseSpecFile(path string) ([]vsix.Extension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "spec file does not exist: %q", path)
		}
		return nil, err
	}

	var spec specFile
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse spec file %s", path)
	}

	exts := make([]vsix.Extension, 0, len(spec.Extensions))
	for _, id := range spec.Extensions {
		ext, err := vsix.ParseID(id)
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}
