package vsix

import (
	"strings"

	"github.com/sco1/dl-vsix/pkg/errors"
)

// Ext is the recognized filename extension for VSIX packages.
const Ext = ".vsix"

// Extension identifies a marketplace extension by publisher and name.
// It is a comparable value type, usable directly as a map key.
type Extension struct {
	Publisher string
	Name      string
}

// ParseID builds an Extension from an extension ID string.
//
// Extension IDs are of the form `<publisher>.<name>`, e.g.
// "ms-python.python". A string with zero or more than one dot, or with an
// empty publisher or name component, fails with INVALID_EXTENSION_ID.
func ParseID(id string) (Extension, error) {
	parts := strings.Split(id, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Extension{}, errors.New(errors.ErrCodeInvalidExtensionID, "invalid extension ID: %q", id)
	}
	return Extension{Publisher: parts[0], Name: parts[1]}, nil
}

// String renders the canonical `publisher.name` form.
// It is the inverse of [ParseID] for every valid Extension.
func (e Extension) String() string {
	return e.Publisher + "." + e.Name
}
