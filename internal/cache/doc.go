// Package cache provides a file-based cache for vision model responses.
//
// Entries are keyed by a SHA-256 hash of the provider name, model, prompt and
// the digests of both screenshots, so re-running a comparison on unchanged
// images does not call the model again. Each entry stores the raw response
// with a creation timestamp and a TTL in seconds; expired entries are skipped
// on read.
package cache
