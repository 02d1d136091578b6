// Package slicing runs the external slicer against downloaded models,
// resolving filament mappings from the printer's loaded spools when the
// submission did not pin one.
package slicing
