package pins

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var requirementName = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)

// Requirement is a dependency specifier as declared by a project,
// e.g. "fire (>=0.4)" or "requests[socks]>=2.0 ; python_version >= '3.8'".
type Requirement struct {
	Name string // package name as written
	Spec string // everything after the name: extras, versions, markers
	Raw  string // the full specifier, whitespace trimmed
}

// ParseRequirement splits a specifier into its package name and the rest.
// The remainder is not interpreted; the resolver owns its semantics.
func ParseRequirement(raw string) (Requirement, error) {
	raw = strings.TrimSpace(raw)
	name := requirementName.FindString(raw)
	if name == "" {
		return Requirement{}, fmt.Errorf("%w: %q", ErrEmptyRequirement, raw)
	}
	return Requirement{
		Name: name,
		Spec: strings.TrimSpace(raw[len(name):]),
		Raw:  raw,
	}, nil
}

// String returns the raw specifier.
func (r Requirement) String() string {
	return r.Raw
}

// RequirementSet groups requirements by logical source label
// ("build", "run", "extra.cli", ...).
type RequirementSet map[string][]Requirement

// Add appends requirements to a group.
func (s RequirementSet) Add(group string, reqs ...Requirement) {
	s[group] = append(s[group], reqs...)
}

// Groups returns the group labels in lexicographic order.
func (s RequirementSet) Groups() []string {
	groups := make([]string, 0, len(s))
	for g := range s {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Lines returns the sorted, de-duplicated specifiers of one group.
func (s RequirementSet) Lines(group string) []string {
	seen := make(map[string]bool, len(s[group]))
	lines := make([]string, 0, len(s[group]))
	for _, r := range s[group] {
		if seen[r.Raw] {
			continue
		}
		seen[r.Raw] = true
		lines = append(lines, r.Raw)
	}
	sort.Strings(lines)
	return lines
}

// All returns every specifier across all groups, sorted and de-duplicated.
func (s RequirementSet) All() []string {
	merged := RequirementSet{}
	for _, g := range s.Groups() {
		merged.Add("", s[g]...)
	}
	return merged.Lines("")
}
