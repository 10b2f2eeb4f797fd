package director

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteStoryboard writes a storyboard to a YAML file, creating parent directories
func WriteStoryboard(s *Storyboard, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadStoryboard reads a storyboard from a YAML file
func ReadStoryboard(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStoryboard(data)
}

// ParseStoryboard decodes a YAML document. Unknown fields are rejected so
// typos do not silently fall back to defaults.
func ParseStoryboard(data []byte) (*Storyboard, error) {
	var s Storyboard
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse storyboard: %w", err)
	}
	if s.Version == "" {
		s.Version = Version
	}
	return &s, nil
}
