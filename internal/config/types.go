package config

import (
	"path/filepath"
	"strings"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*Config)(nil)
)

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type Modifier interface {
	AddMapping(entry MappingEntry) error
	RemoveMapping(name string) error
	ListMappings() []MappingEntry
}

type DefaultLoader struct{}

// Config represents the .convtree.toml file structure.
type Config struct {
	Mappings []MappingEntry `toml:"mappings"`

	// Output holds the defaults used when rendering conversion results.
	Output *OutputSection `toml:"output,omitempty"`

	// API holds the HTTP API server settings used by 'convtree serve'.
	API *APISection `toml:"api,omitempty"`

	configFilePath string `toml:"-"`
}

// MappingEntry represents a single named mapping definition referenced by the project.
type MappingEntry struct {
	// Name is the unique name used to refer to the mapping.
	// e.g. 'people'
	Name string `json:"name" toml:"name" yaml:"name"`

	// File is the path of the definition file, relative to the config file unless absolute.
	// e.g. 'mappings/people.yaml'
	File string `json:"file" toml:"file" yaml:"file"`

	// Description is an optional summary shown when listing mappings.
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
}

// OutputSection contains rendering defaults for conversion results.
type OutputSection struct {
	// Format of rendered results, one of json, yaml, toml or xml.
	// Maps to CLI flag --format
	Format *string `json:"format,omitempty" toml:"format,omitempty" yaml:"format,omitempty"`

	// Indent is the number of spaces used when rendering indented output.
	Indent *int `json:"indent,omitempty" toml:"indent,omitempty" yaml:"indent,omitempty"`
}

// Path returns the location of the mapping definition file.
// Relative paths are resolved against the directory of the config file that loaded the entry.
func (c *Config) Path(entry MappingEntry) string {
	file := strings.TrimSpace(entry.File)
	if filepath.IsAbs(file) || c.configFilePath == "" {
		return file
	}
	return filepath.Join(filepath.Dir(c.configFilePath), file)
}

// FilePath returns the path of the file this configuration was loaded from.
func (c *Config) FilePath() string {
	return c.configFilePath
}
