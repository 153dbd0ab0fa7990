package gather

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/pilecap/internal/pins"
)

// Requirement group labels. They double as the logical source labels that
// appear in "via" comments of the compiled file.
const (
	GroupBuild = "build"
	GroupRun   = "run"
)

// extraValue matches a quoted extra name in either quote style.
const extraValue = `(?:'[^']+'|"[^"]+")`

var (
	extrasMarker        = regexp.MustCompile(`\s*;\s*extra\s*==\s*` + extraValue)
	joinedExtrasMarker  = regexp.MustCompile(`\s+and\s+extra\s*==\s*` + extraValue)
	leadingExtrasMarker = regexp.MustCompile(`;\s*extra\s*==\s*` + extraValue + `\s+and\s+`)
)

// StripExtrasMarker removes an extra marker from a requirement.
//
//	StripExtrasMarker("fire (>=0.4) ; extra == 'cli'") == "fire (>=0.4)"
//
// Other markers are kept: "x ; python_version < '3.8' and extra == 'cli'"
// becomes "x ; python_version < '3.8'". Both quote styles are accepted;
// wheel metadata usually carries extra == "cli".
func StripExtrasMarker(requirement string) string {
	requirement = leadingExtrasMarker.ReplaceAllString(requirement, "; ")
	requirement = joinedExtrasMarker.ReplaceAllString(requirement, "")
	return extrasMarker.ReplaceAllString(requirement, "")
}

// withExtraMarker is the inverse used when rendering static metadata.
// Requirements that already carry a marker keep it and are joined with "and".
func withExtraMarker(requirement, extra string) string {
	if strings.Contains(requirement, ";") {
		return fmt.Sprintf("%s and extra == '%s'", requirement, extra)
	}
	return fmt.Sprintf("%s ; extra == '%s'", requirement, extra)
}

// BuildRequirements returns the immediate requirements for building the
// project in root.
func BuildRequirements(root string) ([]pins.Requirement, error) {
	p, _, err := loadPyProject(root)
	if err != nil {
		return nil, err
	}
	raw := defaultBuildRequires
	if p.BuildSystem != nil && p.BuildSystem.Requires != nil {
		raw = p.BuildSystem.Requires
	}
	return parseAll(raw)
}

// RunRequirements returns the immediate requirements for installing the
// project in root, with extras markers stripped.
func RunRequirements(root string) ([]pins.Requirement, error) {
	p, _, err := loadPyProject(root)
	if err != nil {
		return nil, err
	}

	var raw []string
	if p.staticDependencies() {
		raw = p.requiresDist()
	} else {
		raw, err = metadataRequiresDist(root)
		if err != nil {
			return nil, err
		}
	}

	stripped := make([]string, len(raw))
	for i, r := range raw {
		stripped[i] = StripExtrasMarker(r)
	}
	return parseAll(stripped)
}

// Requirements gathers build and run requirements into one set.
func Requirements(root string) (pins.RequirementSet, error) {
	build, err := BuildRequirements(root)
	if err != nil {
		return nil, err
	}
	run, err := RunRequirements(root)
	if err != nil {
		return nil, err
	}
	set := pins.RequirementSet{}
	set.Add(GroupBuild, build...)
	set.Add(GroupRun, run...)
	return set, nil
}

func parseAll(raw []string) ([]pins.Requirement, error) {
	reqs := make([]pins.Requirement, 0, len(raw))
	for _, r := range raw {
		req, err := pins.ParseRequirement(r)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
