// Package workflow drives queued print jobs through the download, slice,
// upload, and print stages. A single runner claims the oldest ready item,
// moves it into the stage's processing status, executes the handler under a
// heartbeat, and persists the resulting status. Stale processing items whose
// heartbeats lapse are reclaimed to their stage start status so a restarted
// daemon can resume them.
package workflow
