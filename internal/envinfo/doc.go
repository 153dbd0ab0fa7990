// Package envinfo describes the Python environment pilecap compiles for.
//
// Markers are the PEP 508 environment marker values reported by the target
// interpreter. The fingerprint is a name-based UUID computed from a stable
// subset of those markers, so that lock files for distinct environments get
// distinct default locations while re-runs in the same environment reuse
// the same file.
package envinfo
