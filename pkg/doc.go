// Package pkg provides the core libraries for downloading VS Code extensions.
//
// The packages compose into a simple pipeline:
//
//	Extension IDs
//	     ↓
//	[marketplace] package (version lookup + VSIX download)
//	     ↓
//	[download] package (dependency-following engine)
//	     ↓
//	[cache] package (size-bounded local package cache)
//
// Supporting packages: [vsix] for extension identifiers and manifest
// inspection, [httputil] for retries and response caching, and [errors]
// for structured error codes.
//
// [marketplace]: https://pkg.go.dev/github.com/sco1/dl-vsix/pkg/marketplace
// [download]: https://pkg.go.dev/github.com/sco1/dl-vsix/pkg/download
// [cache]: https://pkg.go.dev/github.com/sco1/dl-vsix/pkg/cache
// [vsix]: https://pkg.go.dev/github.com/sco1/dl-vsix/pkg/vsix
// [httputil]: https://pkg.go.dev/github.com/sco1/dl-vsix/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/sco1/dl-vsix/pkg/errors
package pkg
