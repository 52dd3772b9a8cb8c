package converter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mozilla-ai/convtree/internal/field"
)

var (
	// ErrExtraction indicates that an extractor failed or panicked.
	ErrExtraction = errors.New("extraction failed")

	// ErrMapping indicates that a mapper failed, or that a decorator or value filter panicked.
	ErrMapping = errors.New("mapping failed")

	// ErrWriter indicates that a writer failed. Writer failures are never silenced.
	ErrWriter = errors.New("write failed")

	// ErrContext indicates that a composite could not derive its child context.
	ErrContext = errors.New("context derivation failed")

	// ErrSource indicates that a composite could not navigate to its child source.
	ErrSource = errors.New("source navigation failed")

	// ErrIteration indicates that a fan-out could not produce its elements.
	ErrIteration = errors.New("iteration failed")

	// ErrConsume indicates that the raw consumer of a simple node failed.
	ErrConsume = errors.New("consumer failed")

	// ErrConfiguration indicates that a builder was asked to build an incomplete or invalid tree.
	ErrConfiguration = errors.New("converter configuration invalid")

	// ErrBuilderFinalized indicates that a builder was changed after Build, PipeTo or a type-changing step.
	ErrBuilderFinalized = errors.New("builder already finalized")
)

// Stage identifies the step of a node's pipeline where a runtime failure happened.
type Stage int

const (
	StageExtract  Stage = iota // extract
	StageDecorate              // decorate
	StageMap                   // map
	StageWrite                 // write
	StageContext               // context
	StageSource                // source
	StageIterate               // iterate
	StageConsume               // consume
	StageFilter                // filter
)

// Err returns the sentinel error matching the stage.
func (s Stage) Err() error {
	switch s {
	case StageExtract:
		return ErrExtraction
	case StageDecorate, StageMap, StageFilter:
		return ErrMapping
	case StageWrite:
		return ErrWriter
	case StageContext:
		return ErrContext
	case StageSource:
		return ErrSource
	case StageIterate:
		return ErrIteration
	default:
		return ErrConsume
	}
}

// ConversionError is returned from Consume when a node fails at runtime.
// It matches the sentinel of its Stage and its Cause with errors.Is.
type ConversionError struct {
	// Field is the identity of the node that failed.
	Field field.Field

	// Kind is the variant of the node that failed.
	Kind Kind

	// Stage is the pipeline step that failed.
	Stage Stage

	// Path lists external names from the root to the failing node.
	// Fan-out elements are rendered as name[index].
	Path []string

	// Cause is the underlying error.
	Cause error
}

func newConversionError(f field.Field, kind Kind, stage Stage, cause error) *ConversionError {
	return &ConversionError{
		Field: f,
		Kind:  kind,
		Stage: stage,
		Path:  []string{f.ExternalName()},
		Cause: cause,
	}
}

// Marker returns the synthetic identifier of the failing field.
func (e *ConversionError) Marker() string {
	return e.Field.Marker()
}

// PathString returns Path joined with dots.
func (e *ConversionError) PathString() string {
	return strings.Join(e.Path, ".")
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf(
		"field %s (%s, %s): %s: %v",
		e.PathString(),
		e.Marker(),
		e.Kind,
		e.Stage.Err(),
		e.Cause,
	)
}

func (e *ConversionError) Unwrap() []error {
	return []error{e.Stage.Err(), e.Cause}
}

// withParent prefixes the path of a ConversionError with the name of an enclosing composite.
func withParent(name string, err error) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		ce.Path = slices.Insert(ce.Path, 0, name)
	}
	return err
}

// ConfigError is returned from Build when the configuration is incomplete or invalid.
// Problems holds every issue found, including the errors of children.
type ConfigError struct {
	Field    field.Field
	Kind     Kind
	Problems []error
}

func newConfigError(f field.Field, kind Kind, problems []error) *ConfigError {
	return &ConfigError{
		Field:    f,
		Kind:     kind,
		Problems: problems,
	}
}

func (e *ConfigError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("%s: %s '%s': %s", ErrConfiguration, e.Kind, e.Field, strings.Join(msgs, "; "))
}

func (e *ConfigError) Unwrap() []error {
	return append([]error{ErrConfiguration}, e.Problems...)
}

// protect runs fn and turns a panic into an error.
func protect[T any](fn func() (T, bool, error)) (v T, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, ok, err = zero, false, fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) error {
	_, _, err := protect(func() (struct{}, bool, error) {
		return struct{}{}, true, fn()
	})
	return err
}

// holds reports whether src satisfies every predicate. A panicking predicate is an error.
func holds[S any](preds []func(S) bool, src S) (bool, error) {
	for _, pred := range preds {
		pass, _, err := protect(func() (bool, bool, error) {
			return pred(src), true, nil
		})
		if err != nil {
			return false, err
		}
		if !pass {
			return false, nil
		}
	}
	return true, nil
}
