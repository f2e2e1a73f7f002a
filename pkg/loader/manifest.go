package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/nest/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Manifest describes a set of processes for the launcher.
type Manifest struct {
	// Start lists the processes launched at startup, in order.
	Start []string `yaml:"start" json:"start"`
	// Context holds values shared by every launched process.
	Context map[string]any `yaml:"context,omitempty" json:"context,omitempty"`
	// Processes declares the named state trees.
	Processes []ProcessEntry `yaml:"processes" json:"processes"`
}

// ProcessEntry is one named process of a manifest. The tree is given either
// inline (Config) or as a path relative to the manifest (File).
type ProcessEntry struct {
	Name   string              `yaml:"name" json:"name"`
	File   string              `yaml:"file,omitempty" json:"file,omitempty"`
	Config *domain.StateConfig `yaml:"config,omitempty" json:"config,omitempty"`
}

// LoadManifest reads a manifest and the state tree files it references.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if isJSON(path) {
		err = json.Unmarshal(data, &m)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filepath.Base(path), err)
	}
	if err := m.resolve(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseManifest decodes a manifest from YAML or JSON. File references are
// resolved against the working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.resolve("."); err != nil {
		return nil, err
	}
	return &m, nil
}

// Configs returns the state tree of every process by name.
func (m *Manifest) Configs() map[string]domain.StateConfig {
	out := make(map[string]domain.StateConfig, len(m.Processes))
	for _, p := range m.Processes {
		out[p.Name] = *p.Config
	}
	return out
}

func (m *Manifest) resolve(dir string) error {
	seen := make(map[string]bool, len(m.Processes))
	for i := range m.Processes {
		p := &m.Processes[i]
		if p.Name == "" {
			return fmt.Errorf("%w: process #%d has no name", domain.ErrInvalidConfig, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate process %q", domain.ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true

		switch {
		case p.Config != nil && p.File != "":
			return fmt.Errorf("%w: process %q has both config and file", domain.ErrInvalidConfig, p.Name)
		case p.File != "":
			file := p.File
			if !filepath.IsAbs(file) {
				file = filepath.Join(dir, file)
			}
			cfg, err := LoadConfig(file)
			if err != nil {
				return fmt.Errorf("process %q: %w", p.Name, err)
			}
			p.Config = &cfg
		case p.Config != nil:
			if err := checkConfig(*p.Config); err != nil {
				return fmt.Errorf("process %q: %w", p.Name, err)
			}
		default:
			return fmt.Errorf("%w: process %q has neither config nor file", domain.ErrInvalidConfig, p.Name)
		}
	}
	for _, name := range m.Start {
		if !seen[name] {
			return fmt.Errorf("%w: start entry %q", domain.ErrConfigNotFound, name)
		}
	}
	return nil
}
