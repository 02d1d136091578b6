// Package printing starts uploaded jobs on the printer. Starting the print is
// the pipeline's terminal action; monitoring the running print is the
// printer's responsibility.
package printing
