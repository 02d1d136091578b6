// Package slicer mediates access to the external slicing CLI.
//
// It normalizes command invocation, captures an output excerpt for
// diagnostics, exposes a testable interface for the slicing stage, and
// locates the gcode artifact the slicer produces. Prefer this package over
// ad-hoc exec.Command usage when invoking the slicer so timeout handling and
// argument construction remain consistent.
package slicer
