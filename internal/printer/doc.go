// Package printer talks to the printer's REST surface.
//
// Transport covers the three operations the workflow needs: pushing a gcode
// artifact, starting a print, and querying the filaments currently loaded in
// the AMS units. Loaded-slot snapshots are fetched fresh on every call and
// never cached, so matching always sees the physical state of the printer.
package printer
