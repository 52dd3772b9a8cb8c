package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrInvalidValue indicates a known key holding a value convtree cannot use.
	ErrInvalidValue = errors.New("config value invalid")

	// ErrInvalidKey indicates a key convtree does not recognise, usually a typo.
	ErrInvalidKey = errors.New("config key invalid")

	ErrConfigLoadFailed = errors.New("failed to load configuration")
)

// NewErrInvalidValue returns an error for an invalid configuration value.
func NewErrInvalidValue(key string, value string) error {
	return fmt.Errorf("%w: '%s' (value: '%s')", ErrInvalidValue, key, value)
}

// NewErrInvalidKeys returns an error naming every key the decoder left unused, or nil when there are none.
func NewErrInvalidKeys(keys []toml.Key) error {
	if len(keys) == 0 {
		return nil
	}

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, strings.Join(names, ", "))
}
