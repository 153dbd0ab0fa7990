package gather

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// PyProject is the file name that marks a project root.
const PyProject = "pyproject.toml"

// defaultBuildRequires is what PEP 517 frontends assume when a project has
// no [build-system] table.
var defaultBuildRequires = []string{"setuptools >= 40.8.0", "wheel"}

type pyproject struct {
	BuildSystem *struct {
		Requires     []string `toml:"requires"`
		BuildBackend string   `toml:"build-backend"`
	} `toml:"build-system"`
	Project *struct {
		Name                 string              `toml:"name"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		Dynamic              []string            `toml:"dynamic"`
	} `toml:"project"`
	Tool struct {
		Pilecap map[string]any `toml:"pilecap"`
	} `toml:"tool"`
}

// ProjectRoot checks that dir contains a pyproject.toml and returns its
// absolute path.
func ProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(abs, PyProject)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w in %s", ErrNoProject, abs)
		}
		return "", err
	}
	return abs, nil
}

func loadPyProject(root string) (*pyproject, toml.MetaData, error) {
	var p pyproject
	path := filepath.Join(root, PyProject)
	meta, err := toml.DecodeFile(path, &p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, meta, fmt.Errorf("%w in %s", ErrNoProject, root)
	}
	if err != nil {
		return nil, meta, fmt.Errorf("load %s: %w", path, err)
	}
	return &p, meta, nil
}

// staticDependencies reports whether [project].dependencies can be read
// without running the build backend.
func (p *pyproject) staticDependencies() bool {
	return p.Project != nil && !slices.Contains(p.Project.Dynamic, "dependencies")
}

// requiresDist renders the static [project] table the way a build backend
// writes Requires-Dist metadata: optional dependencies carry an extra marker.
func (p *pyproject) requiresDist() []string {
	result := append([]string{}, p.Project.Dependencies...)
	extras := make([]string, 0, len(p.Project.OptionalDependencies))
	for extra := range p.Project.OptionalDependencies {
		extras = append(extras, extra)
	}
	slices.Sort(extras)
	for _, extra := range extras {
		for _, dep := range p.Project.OptionalDependencies[extra] {
			result = append(result, withExtraMarker(dep, extra))
		}
	}
	return result
}
