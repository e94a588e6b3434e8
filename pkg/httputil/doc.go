// Package httputil downloads remote datasets with caching and retries.
//
// # Overview
//
// passrank accepts an http(s) URL anywhere it accepts a CSV path, so the
// published passport index can be ranked without a manual download:
//
//	passrank rank https://raw.githubusercontent.com/ilyankou/passport-index-dataset/master/passport-index-tidy.csv
//
// This package provides the pieces behind that:
//
//   - [Fetcher]: GET a URL and return its body
//   - [Cache]: file-based storage of downloaded bodies with a TTL
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores bodies in ~/.cache/passrank/ by default. An entry older than
// the TTL is reported as [ErrExpired] and fetched again. Delete the directory
// to clear the cache.
//
// # Retry
//
// [Fetcher] retries network errors, 5xx responses and 429 rate limits. Other
// non-2xx statuses fail immediately.
package httputil
