package config

import (
	"errors"
	"fmt"
	"os"
)

// ValidationPredicate evaluates a loaded Config and returns an error if invalid.
type ValidationPredicate func(*Config) error

// validatingLoader wraps a Loader to run additional validation predicates at load time.
type validatingLoader struct {
	Loader
	predicates []ValidationPredicate
}

// NewValidatingLoader creates a loader that runs validation predicates after Load().
func NewValidatingLoader(inner Loader, predicates ...ValidationPredicate) *validatingLoader {
	return &validatingLoader{
		Loader:     inner,
		predicates: predicates,
	}
}

// Load delegates to inner loader, then runs validation predicates.
func (l *validatingLoader) Load(path string) (Modifier, error) {
	mod, err := l.Loader.Load(path)
	if err != nil {
		return nil, err
	}

	cfg, ok := mod.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config structure")
	}

	for _, predicate := range l.predicates {
		if err := predicate(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ValidateMappingFiles ensures that every configured mapping definition file exists and is a regular file.
func ValidateMappingFiles(cfg *Config) error {
	var validationErrors []error

	for _, entry := range cfg.Mappings {
		path := cfg.Path(entry)
		info, err := os.Stat(path)
		switch {
		case err != nil:
			validationErrors = append(validationErrors, fmt.Errorf("mapping '%s': %w", entry.Name, err))
		case info.IsDir():
			validationErrors = append(validationErrors, fmt.Errorf("mapping '%s': %s is a directory", entry.Name, path))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigLoadFailed, errors.Join(validationErrors...))
	}

	return nil
}
