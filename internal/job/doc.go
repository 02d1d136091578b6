// Package job runs a complete print job in one shot.
//
// A run validates the supplied slot mapping against the model's requirement
// count, then executes download, slice, upload, and print strictly in order,
// stopping at the first failure. Each run owns its artifacts under a
// per-request staging directory and records an immutable step report, so
// concurrent runs never interfere with each other.
package job
