// Package httputil provides HTTP infrastructure for the marketplace client.
//
// # Overview
//
// This package provides two pieces used by the Gallery API client:
//
//   - [Cache]: File-based response caching with TTL
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores JSON-marshalable values in the filesystem with a
// configurable TTL. The marketplace client uses it to cache latest-version
// lookups, so repeated downloads of the same extension set don't hammer
// the Gallery API.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	ok, _ := cache.Get("version:ms-python.python", &v)
//	if !ok {
//	    v = queryGallery()
//	    cache.Set("version:ms-python.python", v)
//	}
//
// Cache keys should be namespaced to avoid collisions; see [Cache.Namespace].
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures
// (network errors and 5xx responses, wrapped as [RetryableError]) using
// exponential backoff. Non-retryable errors are returned immediately.
package httputil
