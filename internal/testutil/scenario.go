package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pilecap/internal/pins"
)

// Scenario describes one reconciliation run against an IndexResolver.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// PreviousPrivate is the previous private constraints file; empty on first run.
	PreviousPrivate string `yaml:"previous_private,omitempty"`

	// Shared is the shared constraints file; empty when absent.
	Shared string `yaml:"shared,omitempty"`

	// Requirements maps group labels to requirement specifiers.
	Requirements map[string][]string `yaml:"requirements"`

	// Index configures the IndexResolver.
	Index struct {
		Latest map[string]string   `yaml:"latest"`
		Deps   map[string][]string `yaml:"deps,omitempty"`
	} `yaml:"index"`

	// ExpectAnchors are the pins the resolver must be constrained to.
	ExpectAnchors map[string]string `yaml:"expect_anchors,omitempty"`

	// ExpectPins are name==version pins that must appear in the output.
	ExpectPins map[string]string `yaml:"expect_pins,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected to catch typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if len(scenario.Requirements) == 0 {
		return nil, fmt.Errorf("scenario %s: requirements are required", path)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Lines splits a YAML block scalar into file lines.
func Lines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// RequirementSet converts the scenario's requirements.
func (s *Scenario) RequirementSet() (pins.RequirementSet, error) {
	set := pins.RequirementSet{}
	for group, raws := range s.Requirements {
		for _, raw := range raws {
			r, err := pins.ParseRequirement(raw)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
			}
			set.Add(group, r)
		}
	}
	return set, nil
}

// Resolver returns the IndexResolver described by the scenario.
func (s *Scenario) Resolver() IndexResolver {
	latest := make(map[string]string, len(s.Index.Latest))
	for name, v := range s.Index.Latest {
		latest[pins.Canonical(name)] = v
	}
	deps := make(map[string][]string, len(s.Index.Deps))
	for name, d := range s.Index.Deps {
		deps[pins.Canonical(name)] = d
	}
	return IndexResolver{Latest: latest, Deps: deps}
}
