// Package cache implements the size-bounded local VSIX package cache.
//
// # Overview
//
// The cache owns a flat directory of VSIX files named
// `{publisher}.{name}_{version}.vsix`. The directory listing itself is
// the index: the in-memory entry map is rebuilt from a directory scan at
// construction, never persisted separately, so the filesystem and the
// index cannot diverge across runs.
//
// The cache holds at most one version per extension. Inserting a bundle
// for an already-cached extension is a no-op when the versions match
// (unless forced) and a replacement otherwise.
//
// # Eviction
//
// Total cache size is kept under a configured budget in megabytes. After
// every insert (and at construction), entries are evicted oldest-first by
// file modification time until the total falls back under the budget.
// Removing one large old entry may overshoot the target; that is
// acceptable and keeps eviction terminating.
//
// # Concurrency
//
// A Cache instance assumes single-process, single-instance access to its
// directory. Eviction reads-then-deletes from a snapshot of the entry map
// and is not safe under concurrent mutation.
package cache
