// Package docsink provides an ordered document destination: objects keep their keys in write order,
// so JSON and YAML renderings follow the declaration order of the converter tree.
package docsink

import (
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mozilla-ai/convtree/internal/field"
)

// ErrWrongShape indicates that an operation expected an object but got an array, or the reverse.
var ErrWrongShape = errors.New("wrong document shape")

var (
	_ json.Marshaler = (*Node)(nil)
)

// Node is either an object (ordered keys) or an array.
// A Node is not safe for concurrent writes.
type Node struct {
	object *orderedmap.OrderedMap[string, any]
	items  []any
	array  bool
}

// NewObject returns an empty object.
func NewObject() *Node {
	return &Node{object: orderedmap.New[string, any]()}
}

// NewArray returns an empty array.
func NewArray() *Node {
	return &Node{array: true}
}

// IsArray reports whether n is an array.
func (n *Node) IsArray() bool {
	return n.array
}

// Len returns the number of keys or items.
func (n *Node) Len() int {
	if n.array {
		return len(n.items)
	}
	return n.object.Len()
}

// Keys returns the object keys in write order. Arrays have no keys.
func (n *Node) Keys() []string {
	if n.array {
		return nil
	}
	keys := make([]string, 0, n.object.Len())
	for p := n.object.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Get returns the value stored under key.
func (n *Node) Get(key string) (any, bool) {
	if n.array {
		return nil, false
	}
	return n.object.Get(key)
}

// Items returns the array items. Objects have no items.
func (n *Node) Items() []any {
	return n.items
}

// Set stores v under key, keeping the original position when key already exists.
func (n *Node) Set(key string, v any) error {
	if n.array {
		return fmt.Errorf("%w: cannot set '%s' on an array", ErrWrongShape, key)
	}
	n.object.Set(key, v)
	return nil
}

// Append adds v to the end of the array.
func (n *Node) Append(v any) error {
	if !n.array {
		return fmt.Errorf("%w: cannot append to an object", ErrWrongShape)
	}
	n.items = append(n.items, v)
	return nil
}

// Put is a writer that stores value under the field's external name.
func Put(f field.Field, value any, n *Node) error {
	if n == nil {
		return fmt.Errorf("put '%s': node is nil", f.ExternalName())
	}
	return n.Set(f.ExternalName(), value)
}

// AppendValue is a writer that appends value to an array node.
func AppendValue(_ field.Field, value any, n *Node) error {
	if n == nil {
		return errors.New("append value: node is nil")
	}
	return n.Append(value)
}

// Child returns the object stored under the field's external name, creating it when missing.
func Child(f field.Field, n *Node) (*Node, error) {
	return nested(f, n, NewObject, false)
}

// Array returns the array stored under the field's external name, creating it when missing.
func Array(f field.Field, n *Node) (*Node, error) {
	return nested(f, n, NewArray, true)
}

func nested(f field.Field, n *Node, create func() *Node, array bool) (*Node, error) {
	if n == nil {
		return nil, fmt.Errorf("'%s': node is nil", f.ExternalName())
	}

	key := f.ExternalName()
	existing, ok := n.Get(key)
	if !ok {
		child := create()
		if err := n.Set(key, child); err != nil {
			return nil, err
		}
		return child, nil
	}

	child, isNode := existing.(*Node)
	if !isNode || child.array != array {
		return nil, fmt.Errorf("%w: '%s' holds %T", ErrWrongShape, key, existing)
	}
	return child, nil
}

// Item appends a new object to an array node and returns it as the element context.
func Item(_ field.Field, n *Node) (*Node, error) {
	if n == nil {
		return nil, errors.New("item: node is nil")
	}
	child := NewObject()
	if err := n.Append(child); err != nil {
		return nil, err
	}
	return child, nil
}

// Value returns n as plain Go values: map[string]any for objects and []any for arrays, recursively.
// Key order is lost.
func (n *Node) Value() any {
	if n == nil {
		return nil
	}
	if n.array {
		out := make([]any, len(n.items))
		for i, v := range n.items {
			out[i] = plain(v)
		}
		return out
	}
	out := make(map[string]any, n.object.Len())
	for p := n.object.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = plain(p.Value)
	}
	return out
}

func plain(v any) any {
	if child, ok := v.(*Node); ok {
		return child.Value()
	}
	return v
}

// MarshalJSON renders objects with keys in write order.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	if n.array {
		if n.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(n.items)
	}
	return n.object.MarshalJSON()
}

// MarshalYAML renders objects with keys in write order.
func (n *Node) MarshalYAML() (any, error) {
	if n.array {
		if n.items == nil {
			return []any{}, nil
		}
		return n.items, nil
	}
	return n.object, nil
}
