package pins

import (
	"fmt"
	"strings"
)

// Line is one resolved package pin with its provenance.
type Line struct {
	Name    string
	Version string
	Via     []Source
}

// String renders the pin without its provenance.
func (l Line) String() string {
	return l.Name + "==" + l.Version
}

// File is a parsed constraints file: leading comment lines plus pins.
type File struct {
	Header []string
	Lines  []Line
}

// Parse reads constraint file lines as produced by the resolver or by a
// previous pilecap run.
//
// Blank lines, option lines ("--hash", "-c", "--index-url") and comments
// that are not part of a via block are skipped. Environment markers and
// extras are dropped from the pin. A package pinned twice yields
// ErrDuplicatePackage; a requirement that is not pinned with "==" yields
// ErrNotPinned.
func Parse(lines []string) (*File, error) {
	f := &File{}
	seen := map[string]int{}
	inVia := false

	for i, raw := range lines {
		raw = strings.TrimRight(raw, "\r\n")
		trimmed := strings.TrimSpace(raw)

		if strings.HasPrefix(trimmed, "#") {
			indented := raw != strings.TrimLeft(raw, " \t")
			switch {
			case len(f.Lines) == 0:
				if !indented {
					f.Header = append(f.Header, raw)
				}
			case indented:
				inVia = parseViaComment(&f.Lines[len(f.Lines)-1], trimmed, inVia)
			default:
				inVia = false
			}
			continue
		}
		inVia = false

		body := strings.TrimSpace(strings.SplitN(raw, "#", 2)[0])
		body = strings.TrimSpace(strings.TrimSuffix(body, "\\"))
		if body == "" || strings.HasPrefix(body, "-") {
			continue
		}

		line, err := parsePin(body)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		key := Canonical(line.Name)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("line %d: %w: %s (first at line %d)", i+1, ErrDuplicatePackage, line.Name, prev)
		}
		seen[key] = i + 1
		f.Lines = append(f.Lines, line)

		// Inline "pkg==1.0  # via foo"
		if idx := strings.Index(raw, "#"); idx >= 0 {
			parseViaComment(&f.Lines[len(f.Lines)-1], strings.TrimSpace(raw[idx:]), false)
		}
	}
	return f, nil
}

// parseViaComment consumes one comment belonging to the most recent pin and
// reports whether a multi-line via block is open afterwards.
func parseViaComment(l *Line, comment string, inVia bool) bool {
	text := strings.TrimSpace(strings.TrimPrefix(comment, "#"))
	if text == "via" {
		return true
	}
	if rest, ok := strings.CutPrefix(text, "via "); ok {
		l.addVia(ParseSource(rest))
		return false
	}
	if inVia && text != "" {
		l.addVia(ParseSource(text))
		return true
	}
	return false
}

func (l *Line) addVia(src Source) {
	for _, existing := range l.Via {
		if existing == src {
			return
		}
	}
	l.Via = append(l.Via, src)
}

func parsePin(body string) (Line, error) {
	spec := strings.TrimSpace(strings.SplitN(body, ";", 2)[0])
	name, version, ok := strings.Cut(spec, "==")
	if !ok {
		return Line{}, fmt.Errorf("%w: %q", ErrNotPinned, body)
	}
	name = strings.TrimSpace(name)
	if idx := strings.Index(name, "["); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}
	version = strings.TrimSpace(version)
	if name == "" || version == "" {
		return Line{}, fmt.Errorf("%w: %q", ErrNotPinned, body)
	}
	return Line{Name: name, Version: version}, nil
}

// Lookup returns the pin for a package, matching on canonical name.
func (f *File) Lookup(name string) (Line, bool) {
	key := Canonical(name)
	for _, l := range f.Lines {
		if Canonical(l.Name) == key {
			return l, true
		}
	}
	return Line{}, false
}

// Pins returns the file's pins as a PinMap.
func (f *File) Pins() PinMap {
	m := make(PinMap, len(f.Lines))
	for _, l := range f.Lines {
		m[l.Name] = l.Version
	}
	return m
}
