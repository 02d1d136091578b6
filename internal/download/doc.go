// Package download retrieves model files from user-supplied URLs.
//
// The HTTP fetcher enforces the configured request timeout and size cap,
// screens obviously wrong payloads (HTML error pages served with a 200), and
// stages each download under a per-submission directory so concurrent runs
// never share artifacts.
package download
