package pins

import "strings"

// SourceKind classifies a provenance entry.
type SourceKind int

const (
	// SourcePackage is an upstream package that requires the pin.
	SourcePackage SourceKind = iota
	// SourceConstraint is a constraints file (rendered "-c label").
	SourceConstraint
	// SourceRequirement is a requirements file (rendered "-r label").
	SourceRequirement
)

// Flag returns the pip option that introduces this kind of source.
func (k SourceKind) Flag() string {
	switch k {
	case SourceConstraint:
		return "-c"
	case SourceRequirement:
		return "-r"
	default:
		return ""
	}
}

func (k SourceKind) String() string {
	switch k {
	case SourceConstraint:
		return "constraint"
	case SourceRequirement:
		return "requirement"
	default:
		return "package"
	}
}

// Source is one structured "via" entry of a constraint line.
type Source struct {
	Kind  SourceKind
	Label string
}

// ParseSource interprets the text of a single via entry.
//
//	ParseSource("-c shared")  == Source{SourceConstraint, "shared"}
//	ParseSource("pip-tools")  == Source{SourcePackage, "pip-tools"}
func ParseSource(text string) Source {
	text = strings.TrimSpace(text)
	for _, kind := range []SourceKind{SourceConstraint, SourceRequirement} {
		if rest, ok := strings.CutPrefix(text, kind.Flag()+" "); ok {
			return Source{Kind: kind, Label: strings.TrimSpace(rest)}
		}
	}
	return Source{Kind: SourcePackage, Label: text}
}

func (s Source) String() string {
	if flag := s.Kind.Flag(); flag != "" {
		return flag + " " + s.Label
	}
	return s.Label
}
