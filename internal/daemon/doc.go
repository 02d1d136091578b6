// Package daemon coordinates the background workflow and exposes queue
// management operations to the CLI. A file lock under the log directory
// enforces single-instance execution.
package daemon
