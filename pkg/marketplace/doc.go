// Package marketplace provides an HTTP client for the Visual Studio
// Marketplace Gallery API.
//
// # Overview
//
// The Gallery API exposes extension metadata through a POST query
// endpoint and serves VSIX assets from per-publisher hosts. This package
// implements the two operations the downloader needs:
//
//   - [Client.LatestVersion]: resolve the latest released version of an
//     extension via the extensionquery endpoint
//   - [Client.Download]: stream the VSIX package asset for a specific
//     extension version
//
// # Usage
//
//	client, err := marketplace.NewClient(24 * time.Hour)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ext, _ := vsix.ParseID("ms-python.python")
//	version, err := client.LatestVersion(ctx, ext, false)
//
// # Caching
//
// Version lookups are cached on disk with a TTL set when creating the
// client, so repeated runs over the same extension set avoid redundant
// Gallery queries. Pass refresh=true to bypass the cache. Asset downloads
// are never cached here; the artifact cache owns downloaded bundles.
//
// # Retry
//
// Transient failures (connection errors, 5xx responses) are retried with
// exponential backoff. 4xx responses fail immediately.
package marketplace
