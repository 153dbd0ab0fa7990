package testutil

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/roach88/pilecap/internal/pins"
	"github.com/roach88/pilecap/internal/resolver"
)

// IndexResolver imitates pip-compile against a tiny package index.
//
// Every package has one "latest" version in Latest and a fixed list of
// dependencies in Deps. A package pinned by any constraints file takes the
// pinned version instead of the latest one. Output uses pip-compile's
// annotation layout, with absolute input paths in "via" comments.
type IndexResolver struct {
	Latest map[string]string
	Deps   map[string][]string
}

type resolved struct {
	version string
	via     []string
}

// Resolve implements resolver.Resolver.
func (ix IndexResolver) Resolve(_ context.Context, req resolver.Request) (string, error) {
	pinned := map[string]string{}
	pinnedBy := map[string][]string{}
	for _, path := range req.Constraints {
		f, err := parseFile(path)
		if err != nil {
			return "", err
		}
		for _, l := range f.Lines {
			key := pins.Canonical(l.Name)
			if v, ok := pinned[key]; ok && v != l.Version {
				return "", fmt.Errorf("conflicting constraints for %s: %s and %s", l.Name, v, l.Version)
			}
			pinned[key] = l.Version
			pinnedBy[key] = append(pinnedBy[key], "-c "+path)
		}
	}

	out := map[string]*resolved{}
	var visit func(name, via string) error
	visit = func(name, via string) error {
		key := pins.Canonical(name)
		if r, ok := out[key]; ok {
			r.via = appendUnique(r.via, via)
			return nil
		}
		version, ok := pinned[key]
		if !ok {
			if version, ok = ix.Latest[key]; !ok {
				return fmt.Errorf("no matching distribution found for %s", name)
			}
		}
		out[key] = &resolved{version: version, via: append(append([]string{}, pinnedBy[key]...), via)}
		for _, dep := range ix.Deps[key] {
			if err := visit(dep, key); err != nil {
				return err
			}
		}
		return nil
	}

	for _, path := range req.Requirements {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			if line == "" {
				continue
			}
			r, err := pins.ParseRequirement(line)
			if err != nil {
				return "", err
			}
			if err := visit(r.Name, "-r "+path); err != nil {
				return "", err
			}
		}
	}

	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		r := out[name]
		fmt.Fprintf(&b, "%s==%s\n", name, r.version)
		via := sortVia(r.via)
		if len(via) == 1 {
			fmt.Fprintf(&b, "    # via %s\n", via[0])
			continue
		}
		b.WriteString("    # via\n")
		for _, v := range via {
			fmt.Fprintf(&b, "    #   %s\n", v)
		}
	}

	text := b.String()
	if err := os.WriteFile(req.Output, []byte(text), 0o644); err != nil {
		return "", err
	}
	return text, nil
}

func parseFile(path string) (*pins.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pins.Parse(strings.Split(string(data), "\n"))
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// sortVia orders entries like pip-compile: "-c" sources, then "-r"
// sources, then package names, each group sorted.
func sortVia(via []string) []string {
	rank := func(s string) int {
		switch {
		case strings.HasPrefix(s, "-c "):
			return 0
		case strings.HasPrefix(s, "-r "):
			return 1
		default:
			return 2
		}
	}
	sorted := append([]string{}, via...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if rank(sorted[i]) != rank(sorted[j]) {
			return rank(sorted[i]) < rank(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}
