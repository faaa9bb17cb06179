package harness

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one transpiler scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// TypeMap adds or overrides return placeholder entries.
	TypeMap map[string]string `yaml:"type_map,omitempty"`

	// Runs is how many times the project is built. Zero means once.
	Runs int `yaml:"runs,omitempty"`

	// Files maps slash-separated source paths to their contents. Use the
	// !!binary tag for content that is not valid UTF-8.
	Files map[string]string `yaml:"files"`

	// Expect is evaluated against the last run.
	Expect Expect `yaml:"expect"`
}

// Expect holds the expectations of a scenario. Nil counts are not checked.
type Expect struct {
	Built   *int `yaml:"built,omitempty"`
	Skipped *int `yaml:"skipped,omitempty"`
	Failed  *int `yaml:"failed,omitempty"`

	// Outputs maps output paths, relative to the output directory, to the
	// checks run against their content.
	Outputs map[string]OutputExpect `yaml:"outputs,omitempty"`

	// Missing lists output paths that must not exist.
	Missing []string `yaml:"missing,omitempty"`
}

// OutputExpect checks one generated file. Lines in Ordered must each occur,
// in that order; Contains must occur anywhere; Absent must not occur.
type OutputExpect struct {
	Ordered  []string `yaml:"ordered,omitempty"`
	Contains []string `yaml:"contains,omitempty"`
	Absent   []string `yaml:"absent,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	out := make([]*Scenario, 0, len(matches))
	for _, m := range matches {
		s, err := LoadScenario(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(m), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("files map is required and must be non-empty")
	}
	if s.Runs < 0 {
		return fmt.Errorf("runs must not be negative")
	}

	for _, p := range sortedKeys(s.Files) {
		if err := checkRelPath(p); err != nil {
			return fmt.Errorf("files[%q]: %w", p, err)
		}
	}
	for _, p := range sortedKeys(s.Expect.Outputs) {
		if err := checkRelPath(p); err != nil {
			return fmt.Errorf("expect.outputs[%q]: %w", p, err)
		}
	}
	for i, p := range s.Expect.Missing {
		if err := checkRelPath(p); err != nil {
			return fmt.Errorf("expect.missing[%d]: %w", i, err)
		}
	}
	return nil
}

// checkRelPath rejects paths that would escape the scenario project.
func checkRelPath(p string) error {
	clean := path.Clean(p)
	if p == "" || path.IsAbs(p) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path must be relative and stay inside the project")
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
