// Package annotate rewrites resolver output so that provenance comments
// name logical sources ("shared", "run", "dev.foo") instead of files in an
// ephemeral working directory.
//
// The resolver is a black box that prints plain text, so the rewrite is
// textual: only path tokens rooted at the working directory change. Package
// names, versions and line order are never touched.
package annotate

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/roach88/pilecap/internal/pins"
)

// File name suffixes that mark the role of a resolver input file.
const (
	ConstraintSuffix  = ".c.txt"
	RequirementSuffix = ".r.txt"
)

// FileName returns the base name used for an input file with the given
// logical label and kind. Label(FileName(l, k)) always yields l and k.
func FileName(label string, kind pins.SourceKind) string {
	switch kind {
	case pins.SourceConstraint:
		return label + ConstraintSuffix
	case pins.SourceRequirement:
		return label + RequirementSuffix
	default:
		return label
	}
}

// Label derives the logical label from an input file path by dropping the
// directory and the generated suffix.
//
//	Label("/tmp/x/dev.foo.r.txt") == "dev.foo", pins.SourceRequirement, true
//
// ok is false when the base name carries no recognized suffix.
func Label(path string) (label string, kind pins.SourceKind, ok bool) {
	base := filepath.Base(path)
	if l, found := strings.CutSuffix(base, ConstraintSuffix); found && l != "" {
		return l, pins.SourceConstraint, true
	}
	if l, found := strings.CutSuffix(base, RequirementSuffix); found && l != "" {
		return l, pins.SourceRequirement, true
	}
	return "", pins.SourcePackage, false
}

// Normalize replaces every path rooted at workDir with its logical label.
// Lines that do not mention workDir are returned unchanged. A path whose
// label cannot be derived is left as is.
func Normalize(workDir, text string) string {
	prefix := dirPrefix(workDir)
	if prefix == "" {
		return text
	}
	pathToken := regexp.MustCompile(regexp.QuoteMeta(prefix) + `[^\s'"]*`)

	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, prefix) {
			continue
		}
		lines[i] = pathToken.ReplaceAllStringFunc(line, func(path string) string {
			label, _, ok := Label(path)
			if !ok {
				return path
			}
			return label
		})
	}
	return strings.Join(lines, "")
}

// Leaks reports whether text still contains a path rooted at workDir.
func Leaks(workDir, text string) bool {
	if strings.TrimSpace(workDir) == "" {
		return false
	}
	return strings.Contains(text, filepath.Clean(workDir))
}

// dirPrefix returns workDir in the form it takes as the leading part of a
// file path: cleaned and with exactly one trailing separator.
func dirPrefix(workDir string) string {
	if strings.TrimSpace(workDir) == "" {
		return ""
	}
	clean := filepath.Clean(workDir)
	if strings.HasSuffix(clean, string(filepath.Separator)) {
		return clean
	}
	return clean + string(filepath.Separator)
}
