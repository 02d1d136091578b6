// Package threemf parses 3MF model containers and extracts per-plate filament
// requirements and plate statistics.
//
// A 3MF file is a zip archive. Sliced project files carry a
// Metadata/slice_info.config document describing plates, their objects, and
// the filaments each plate uses; plain geometry-only containers carry just the
// 3D/3dmodel.model payload. Both are valid inputs: a container without
// embedded material metadata yields empty requirement sequences, which is a
// legitimate result rather than a failure.
//
// Parsing and extraction are pure: the same container always produces the
// same requirement and plate sequences, and nothing here performs network or
// printer I/O.
package threemf
