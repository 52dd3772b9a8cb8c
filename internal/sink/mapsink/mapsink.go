// Package mapsink provides writers and context mappers that convert into plain map[string]any
// destinations, the shape produced by encoding/json and gopkg.in/yaml.v3 decoders.
//
// Maps are not safe for concurrent writes. Callers that consume into one destination from several
// goroutines must synchronise themselves.
package mapsink

import (
	"errors"
	"fmt"

	"github.com/mozilla-ai/convtree/internal/field"
)

// ErrUnexpectedValue indicates that a key already holds a value of a different shape.
var ErrUnexpectedValue = errors.New("unexpected value in destination")

// List is a context for fan-out results: a []any stored under a key of a parent map.
// Appending keeps the parent map up to date, so the destination only ever holds maps and slices.
type List struct {
	parent map[string]any
	key    string
}

// Put writes value under the field's external name.
func Put(f field.Field, value any, ctx map[string]any) error {
	if ctx == nil {
		return fmt.Errorf("put '%s': destination map is nil", f.ExternalName())
	}
	ctx[f.ExternalName()] = value
	return nil
}

// SubMap returns the map stored under the field's external name, creating it when missing.
func SubMap(f field.Field, ctx map[string]any) (map[string]any, error) {
	if ctx == nil {
		return nil, fmt.Errorf("sub map '%s': destination map is nil", f.ExternalName())
	}

	key := f.ExternalName()
	switch existing := ctx[key].(type) {
	case nil:
		m := map[string]any{}
		ctx[key] = m
		return m, nil
	case map[string]any:
		return existing, nil
	default:
		return nil, fmt.Errorf("%w: '%s' holds %T", ErrUnexpectedValue, key, existing)
	}
}

// NewList returns a List stored under the field's external name, creating an empty one when missing.
func NewList(f field.Field, ctx map[string]any) (*List, error) {
	if ctx == nil {
		return nil, fmt.Errorf("list '%s': destination map is nil", f.ExternalName())
	}

	key := f.ExternalName()
	switch existing := ctx[key].(type) {
	case nil:
		ctx[key] = []any{}
	case []any:
	default:
		return nil, fmt.Errorf("%w: '%s' holds %T", ErrUnexpectedValue, key, existing)
	}

	return &List{parent: ctx, key: key}, nil
}

// AppendMap appends a new map to the list and returns it as the element context.
func AppendMap(_ field.Field, l *List) (map[string]any, error) {
	if l == nil {
		return nil, errors.New("append map: list is nil")
	}
	m := map[string]any{}
	l.Append(m)
	return m, nil
}

// AppendValue is a writer that appends value to the list, for fan-outs over scalar elements.
func AppendValue(_ field.Field, value any, l *List) error {
	if l == nil {
		return errors.New("append value: list is nil")
	}
	l.Append(value)
	return nil
}

// Append adds v to the end of the list.
func (l *List) Append(v any) {
	items, _ := l.parent[l.key].([]any)
	l.parent[l.key] = append(items, v)
}

// Items returns the current elements.
func (l *List) Items() []any {
	items, _ := l.parent[l.key].([]any)
	return items
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.Items())
}
