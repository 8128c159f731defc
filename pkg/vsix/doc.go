// Package vsix defines the extension identifier and VSIX bundle inspection.
//
// # Overview
//
// Visual Studio Marketplace extensions are identified by a
// `publisher.name` pair (e.g. "ms-python.python"). [Extension] is the
// value type for that pair, parsed with [ParseID] and rendered with
// [Extension.String]; the two are exact inverses for every valid ID.
//
// A downloaded VSIX bundle is a zip archive that should contain an
// `extension/package.json` manifest. If the extension depends on other
// extensions, the manifest declares them in an "extensionDependencies"
// field as a list of extension ID strings. [Dependencies] reads that
// field from a bundle on disk.
//
// # Error Semantics
//
// A bundle without the manifest entry is valid and common: [Dependencies]
// returns an empty set, not an error. A manifest that exists but cannot
// be parsed, or that declares a malformed extension ID, is a hard error
// for that bundle.
package vsix
