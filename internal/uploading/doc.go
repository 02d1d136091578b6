// Package uploading transfers sliced gcode to the printer and records the
// remote file name the print stage starts from.
package uploading
