// Command spool is the CLI for the spool print pipeline: submitting model
// URLs, inspecting plates and filament matches, managing the work queue, and
// running the daemon in the foreground.
package main
