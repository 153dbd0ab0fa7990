package pins

import (
	"sort"
)

// PinMap maps package names to exact versions.
type PinMap map[string]string

// Names returns the package names in lexicographic order.
func (m PinMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lines renders the map as sorted name==version lines.
func (m PinMap) Lines() []string {
	lines := make([]string, 0, len(m))
	for _, name := range m.Names() {
		lines = append(lines, name+"=="+m[name])
	}
	return lines
}

// Intersection returns the pins of versionsFrom whose package also appears
// in keysFrom. Versions always come from versionsFrom, never from keysFrom.
//
// The reconciler calls it with the previous private constraints as keysFrom
// and the shared constraints as versionsFrom: a package that used to be
// pinned privately and is now governed by the shared file is anchored to
// the shared version.
func Intersection(keysFrom, versionsFrom []string) (PinMap, error) {
	keys, err := Parse(keysFrom)
	if err != nil {
		return nil, err
	}
	versions, err := Parse(versionsFrom)
	if err != nil {
		return nil, err
	}
	return IntersectFiles(keys, versions), nil
}

// IntersectFiles is Intersection over already parsed files.
func IntersectFiles(keys, versions *File) PinMap {
	wanted := make(map[string]bool, len(keys.Lines))
	for _, l := range keys.Lines {
		wanted[Canonical(l.Name)] = true
	}

	result := PinMap{}
	for _, l := range versions.Lines {
		if wanted[Canonical(l.Name)] {
			result[l.Name] = l.Version
		}
	}
	return result
}
