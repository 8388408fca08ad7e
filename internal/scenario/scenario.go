// Package scenario reads and writes self-contained animation scenarios: a
// data-structure kind, its initial data and the step list to play over it.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/stepviz/internal/scene"
	"github.com/san-kum/stepviz/internal/step"
	"gopkg.in/yaml.v3"
)

type Scenario struct {
	Name      string       `json:"name" yaml:"name"`
	Algorithm string       `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	Kind      scene.Kind   `json:"kind" yaml:"kind"`
	Array     []scene.ID   `json:"array,omitempty" yaml:"array,omitempty"`
	Graph     *scene.Graph `json:"graph,omitempty" yaml:"graph,omitempty"`
	Steps     []step.Step  `json:"steps" yaml:"steps"`
}

// Data returns the initial snapshot for RenderInitial.
func (s *Scenario) Data() scene.Data {
	return scene.Data{Array: s.Array, Graph: s.Graph}
}

func (s *Scenario) Validate() error {
	if s.Kind == "" {
		return fmt.Errorf("%w: scenario %q has no kind", scene.ErrBadData, s.Name)
	}
	if s.Kind == scene.KindGraph && (s.Graph == nil || len(s.Graph.Nodes) == 0) {
		return fmt.Errorf("%w: graph scenario %q has no nodes", scene.ErrBadData, s.Name)
	}
	return step.Validate(s.Steps)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile reads a scenario from YAML (.yaml, .yml) or JSON (anything else).
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s *Scenario
	if isYAML(path) {
		s, err = ParseYAML(data)
	} else {
		s, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

func ParseYAML(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseJSON accepts the same step encodings as step.DecodeBytes, including
// bare Infinity tokens.
func ParseJSON(data []byte) (*Scenario, error) {
	var raw struct {
		Scenario
		Steps json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal(step.QuoteNonFinite(data), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", scene.ErrBadData, err)
	}
	s := raw.Scenario
	if len(raw.Steps) > 0 {
		steps, err := step.DecodeBytes(raw.Steps)
		if err != nil {
			return nil, err
		}
		s.Steps = steps
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteFile writes s as YAML or JSON depending on the extension of path.
func WriteFile(path string, s *Scenario) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
