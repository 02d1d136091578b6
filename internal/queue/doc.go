// Package queue persists print jobs in SQLite and models their lifecycle.
//
// Each queue item is one submitted model URL moving through the pipeline
// statuses (pending through completed). The store serializes access with WAL
// mode and busy retries so the daemon workflow and the CLI can share one
// database file safely.
package queue
