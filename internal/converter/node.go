// Package converter builds immutable trees of field converters that walk a source value and write
// into a destination context.
//
// A tree is assembled with builders (Simple, Extract, Object and friends) and finalized with Build.
// The resulting Converter can be consumed any number of times, concurrently, as long as each call
// supplies its own destination context:
//
//	root, err := converter.Object[*Person, map[string]any](field.Of("person")).
//		Field(converter.Extract[map[string]any](field.New("name", "fullName"), (*Person).Name).
//			Decorate(strings.ToUpper).
//			WithWriter(mapsink.Put)).
//		Build()
//
// Type-changing steps (Map, MapSource, FlatMap, IterateOn) are free functions because Go methods
// cannot introduce type parameters.
package converter

import (
	"reflect"

	"github.com/mozilla-ai/convtree/internal/field"
)

//go:generate stringer -type=Kind,Stage -linecomment -output=kind_string.go

// Kind identifies the variant of a converter node.
type Kind int

const (
	// KindSimple is a raw consumer that extracts and writes in one step.
	KindSimple Kind = iota // simple

	// KindExtracting is a single-field leaf: extract, decorate, map, write.
	KindExtracting // extracting

	// KindObject is a composite that owns an ordered list of named children.
	KindObject // object

	// KindChain is a composite that delegates to exactly one downstream converter.
	KindChain // chain

	// KindFanOut is a composite that runs its downstream converter once per element of a sequence.
	KindFanOut // fanout
)

// Node is the non-generic view of a converter used for structural introspection.
type Node interface {
	// Field returns the identity of the node.
	Field() field.Field

	// ExternalName returns the external name of the node's Field.
	ExternalName() string

	// InternalName returns the internal name of the node's Field.
	InternalName() string

	// Kind returns the node variant.
	Kind() Kind

	// Fields returns the child nodes in declaration order.
	// Leaves return an empty slice. The returned slice is a copy.
	Fields() []Node
}

// Converter is a built, immutable node that can consume a source into a destination context.
type Converter[S any, C any] interface {
	Node

	// Consume walks src and writes into ctx.
	Consume(src S, ctx C) error

	// Build returns the converter itself so that built trees can be reused as children.
	Build() (Converter[S, C], error)
}

// Builder produces a Converter. Every builder in this package, and every built Converter,
// satisfies it, so either can be passed where a child is expected.
type Builder[S any, C any] interface {
	Build() (Converter[S, C], error)
}

// MustBuild builds b and panics if the configuration is invalid.
// It is intended for package-level trees declared at init time.
func MustBuild[S any, C any](b Builder[S, C]) Converter[S, C] {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// isAbsent reports whether v is nil or holds a nil pointer, map, slice, interface, func or channel.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// nodes converts a typed child list into the introspection view.
func nodes[S any, C any](children []Converter[S, C]) []Node {
	out := make([]Node, len(children))
	for i, c := range children {
		out[i] = c
	}
	return out
}
