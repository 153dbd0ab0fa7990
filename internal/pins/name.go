package pins

import (
	"regexp"
	"strings"
)

var separatorRun = regexp.MustCompile(`[-_.]+`)

// Canonical returns the PEP 503 normalized form of a package name.
//
//	Canonical("Setuptools_SCM") == "setuptools-scm"
func Canonical(name string) string {
	return separatorRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
