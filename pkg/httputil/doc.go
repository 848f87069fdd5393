// Package httputil fetches network documents over HTTP.
//
// # Fetching
//
// [Fetcher] downloads a document and reports its format, taken from the
// URL path extension or, failing that, the response Content-Type:
//
//	f := httputil.NewFetcher(cache.NewNullCache())
//	data, format, err := f.Fetch(ctx, "https://example.org/metro.yml")
//
// # Caching
//
// Bodies are stored in a [cache.Cache] under "remote:<sha256 of the URL>"
// for [DefaultTTL], so repeated renders of the same URL do not hit the
// network. Set Refresh to bypass cache reads.
//
// # Retry
//
// Transient failures are retried with the fetcher's [cache.Backoff]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Any other non-2xx status fails at once: 404 as FILE_NOT_FOUND, the rest
// as STORAGE.
package httputil
