// Package download implements the dependency-following VSIX download engine.
//
// # Overview
//
// [Engine.Run] turns a seed set of extensions into a fully-resolved
// download set. Each queued extension has its latest version resolved
// through the [Registry] boundary, its VSIX streamed into the output
// directory, and, when dependency following is enabled, its declared
// extension dependencies enqueued. A seen set deduplicates work, so
// dependency cycles terminate and every reachable extension is attempted
// exactly once.
//
// # Failure Semantics
//
// A registry failure for one extension never aborts the traversal: it is
// recorded in the [Report] and the queue moves on. Filesystem errors do
// propagate, since continuing would leave the output directory in an
// inconsistent state. Downloads stream through a .partial temp file that
// is renamed only on success, so an interrupted transfer never leaves a
// half-written file that looks complete.
//
// # Cache Integration
//
// When an artifact cache is attached, a queued extension whose cached
// version matches the freshly resolved latest is exported from the cache
// instead of re-downloaded, and every fresh download is inserted into the
// cache afterwards. The cache is the only skip-if-exists layer; the
// engine itself always re-downloads.
package download
