package compiler

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultManifest is the package manifest read when none is named.
const DefaultManifest = "hexpackage.json"

// Manifest describes a spell package. It is read from JSON or YAML.
type Manifest struct {
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	Entrypoint string `yaml:"entrypoint" json:"entrypoint"`
	Library    string `yaml:"library,omitempty" json:"library,omitempty"`
}

// ParseManifest decodes a manifest. JSON input is accepted as YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("compiler: parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("compiler: read manifest: %w", err)
	}
	return ParseManifest(data)
}

// Validate checks that the entrypoint and library have supported
// languages.
func (m *Manifest) Validate() error {
	if m.Entrypoint == "" {
		return errors.New("compiler: manifest has no entrypoint")
	}
	if _, err := LanguageOf(m.Entrypoint); err != nil {
		return fmt.Errorf("compiler: entrypoint %s: %w", m.Entrypoint, err)
	}
	if m.Library != "" {
		if _, err := LanguageOf(m.Library); err != nil {
			return fmt.Errorf("compiler: library %s: %w", m.Library, err)
		}
	}
	return nil
}
