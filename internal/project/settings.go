// Package project loads the interpreter's project-level settings: the
// source directories the module resolver searches, optionally read from an
// erm.yaml file.
package project

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the resolver's configuration, ported from original_source's
// Settings{source_directories}.
type Settings struct {
	SourceDirectories []string `yaml:"source_directories"`
	DefaultArgs       []string `yaml:"default_args"`
}

// NewSettings returns the zero-value settings: no configured source
// directories beyond whatever the caller adds.
func NewSettings() *Settings {
	return &Settings{}
}

// Load reads erm.yaml from dir if present, returning default settings
// (source directory = dir itself) when no file exists.
func Load(dir string) (*Settings, error) {
	s := &Settings{SourceDirectories: []string{dir}}

	path := filepath.Join(dir, "erm.yaml")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var loaded Settings
	if err := yaml.Unmarshal(content, &loaded); err != nil {
		return nil, err
	}
	if len(loaded.SourceDirectories) > 0 {
		s.SourceDirectories = loaded.SourceDirectories
	}
	s.DefaultArgs = loaded.DefaultArgs
	return s, nil
}
