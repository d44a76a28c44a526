// Package redact scrubs credentials from text before it is logged, cached or
// written into a report.
//
// [Secrets] applies regex heuristics for API keys, bearer tokens, JWTs and
// secret URL query parameters. [URL] parses a URL and masks the password and
// sensitive query values, which matters for monitored pages and presigned
// artifact links.
package redact
