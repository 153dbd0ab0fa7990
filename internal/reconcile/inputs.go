package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/pilecap/internal/annotate"
	"github.com/roach88/pilecap/internal/pins"
)

// Labels of the constraint sources written for the resolver.
const (
	LabelAnchor = "anchor"
	LabelShared = "shared"
)

// inputFile is one resolver input before it is written.
type inputFile struct {
	Label string
	Kind  pins.SourceKind
	Lines []string
}

func (f inputFile) name() string {
	return annotate.FileName(f.Label, f.Kind)
}

// planInputs lays out the resolver inputs: one requirements file per group
// followed by the anchor and shared constraint files.
func planInputs(reqs pins.RequirementSet, anchors pins.PinMap, shared []string) ([]inputFile, error) {
	var files []inputFile
	for _, group := range reqs.Groups() {
		lines := reqs.Lines(group)
		if len(lines) == 0 {
			continue
		}
		files = append(files, inputFile{Label: group, Kind: pins.SourceRequirement, Lines: lines})
	}
	if len(files) == 0 {
		return nil, ErrNoRequirements
	}
	files = append(files,
		inputFile{Label: LabelAnchor, Kind: pins.SourceConstraint, Lines: anchors.Lines()},
		inputFile{Label: LabelShared, Kind: pins.SourceConstraint, Lines: shared},
	)

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if err := validateLabel(f.Label); err != nil {
			return nil, err
		}
		if seen[f.Label] {
			return nil, fmt.Errorf("%w: %q", ErrLabelCollision, f.Label)
		}
		seen[f.Label] = true
	}
	return files, nil
}

func validateLabel(label string) error {
	if label == "" || label == "." || label == ".." ||
		strings.ContainsAny(label, `/\ `+"\t\n") ||
		strings.HasPrefix(label, ".") || strings.HasSuffix(label, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return nil
}

// writeInputs writes files into workDir and returns their paths split by kind.
func writeInputs(workDir string, files []inputFile) (requirements, constraints []string, err error) {
	for _, f := range files {
		path := filepath.Join(workDir, f.name())
		if err := os.WriteFile(path, []byte(render(f.Lines)), 0o644); err != nil {
			return nil, nil, fmt.Errorf("writing resolver input: %w", err)
		}
		if f.Kind == pins.SourceRequirement {
			requirements = append(requirements, path)
		} else {
			constraints = append(constraints, path)
		}
	}
	return requirements, constraints, nil
}

func render(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
