package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinitionLoadFailed indicates that a definition file could not be read or decoded.
	ErrDefinitionLoadFailed = errors.New("failed to load mapping definition")

	// ErrSchemaViolation indicates that a definition does not match the definition schema.
	ErrSchemaViolation = errors.New("mapping definition does not match schema")

	// ErrCompileFailed indicates that a valid definition could not be turned into a converter tree.
	ErrCompileFailed = errors.New("failed to compile mapping definition")

	// ErrUnknownFunction indicates that a definition names a decorator or mapper that is not registered.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrPatchFailed indicates that the post-processing patch of a definition could not be applied.
	ErrPatchFailed = errors.New("failed to apply patch")
)

// SchemaError lists every schema violation found in a definition.
type SchemaError struct {
	Source     string
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrSchemaViolation, e.Source, e.Violations)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}
