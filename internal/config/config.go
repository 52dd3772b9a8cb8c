package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mozilla-ai/convtree/internal/perms"
)

// skeleton is written by Init.
const skeleton = `# Mapping definitions known to this project.
mappings = []

[output]
format = "json"
indent = 2
`

// Init creates the base skeleton configuration file for a convtree project.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(skeleton), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (d *DefaultLoader) Load(path string) (Modifier, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'convtree init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}
	if err := NewErrInvalidKeys(md.Undecoded()); err != nil {
		return nil, fmt.Errorf("%w: unknown keys in config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return cfg, nil
}

// AddMapping persists a new mapping entry to the configuration file (.convtree.toml).
func (c *Config) AddMapping(entry MappingEntry) error {
	c.Mappings = append(c.Mappings, entry)

	if err := c.validate(); err != nil {
		c.Mappings = c.Mappings[:len(c.Mappings)-1]
		return err
	}

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// RemoveMapping removes a mapping entry by name from the configuration file (.convtree.toml).
func (c *Config) RemoveMapping(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("mapping name cannot be empty")
	}

	filtered := slices.DeleteFunc(slices.Clone(c.Mappings), func(e MappingEntry) bool {
		return e.Name == name
	})
	if len(filtered) == len(c.Mappings) {
		return fmt.Errorf("mapping '%s' not found in config", name)
	}

	c.Mappings = filtered

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// ListMappings returns a copy of the configured mapping entries.
func (c *Config) ListMappings() []MappingEntry {
	return slices.Clone(c.Mappings)
}

func (c *Config) saveConfig() error {
	if c.configFilePath == "" {
		return fmt.Errorf("config file path not present")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configFilePath, data, perms.RegularFile)
}

// validate orchestrates validation of configuration structure.
func (c *Config) validate() error {
	if err := c.validateMappings(); err != nil {
		return err
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output configuration error: %w", err)
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("API configuration error: %w", err)
	}

	return nil
}

// validateMappings ensures every MappingEntry has a unique name and a file.
func (c *Config) validateMappings() error {
	seen := map[string]struct{}{}
	var validationErrors []error

	for i, entry := range c.Mappings {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			validationErrors = append(validationErrors, fmt.Errorf("mapping entry %d has empty name", i))
			continue
		}
		if _, ok := seen[name]; ok {
			validationErrors = append(validationErrors, fmt.Errorf("duplicate mapping name '%s'", name))
		}
		seen[name] = struct{}{}

		if strings.TrimSpace(entry.File) == "" {
			validationErrors = append(validationErrors, fmt.Errorf("mapping '%s' has empty file", name))
		}
	}

	return errors.Join(validationErrors...)
}
