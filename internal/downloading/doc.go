// Package downloading fetches queued models and extracts their filament
// requirements.
//
// The handler stages each model under a per-submission directory, parses the
// container once downloaded, and persists the requirement sequence on the
// queue item so later stages can match and slice without reparsing.
package downloading
