package converter

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mozilla-ai/convtree/internal/field"
)

var _ Converter[any, any] = (*objectNode[any, any, any, any])(nil)

// ObjectBuilder assembles a composite node.
// SIn and CIn are the types the node consumes; SOut and COut are what its children consume.
type ObjectBuilder[SIn any, CIn any, SOut any, COut any] struct {
	field     field.Field
	source    func(SIn) (SOut, bool, error)
	context   func(field.Field, CIn) (COut, error)
	children  []Builder[SOut, COut]
	piped     bool
	problems  []error
	finalized bool
	consumed  bool
	built     *objectNode[SIn, CIn, SOut, COut]
}

// Object starts a composite whose children consume the same source and context as the node.
func Object[S any, C any](f field.Field) *ObjectBuilder[S, C, S, C] {
	return &ObjectBuilder[S, C, S, C]{
		field:  f,
		source: identitySource[S],
		context: func(_ field.Field, ctx C) (C, error) {
			return ctx, nil
		},
	}
}

// ObjectWithContext starts a composite whose children write into the context derived by fn,
// e.g. a new child element or a nested map. The source type is given explicitly:
//
//	converter.ObjectWithContext[*Person](field.Of("address"), mapsink.SubMap)
func ObjectWithContext[S any, CIn any, COut any](
	f field.Field,
	fn func(f field.Field, ctx CIn) (COut, error),
) *ObjectBuilder[S, CIn, S, COut] {
	b := &ObjectBuilder[S, CIn, S, COut]{
		field:   f,
		source:  identitySource[S],
		context: fn,
	}
	if fn == nil {
		b.problems = append(b.problems, errors.New("context mapper is required"))
	}
	return b
}

// IgnoreField adapts a context mapper that does not need the node's Field.
func IgnoreField[CIn any, COut any](fn func(ctx CIn) (COut, error)) func(field.Field, CIn) (COut, error) {
	if fn == nil {
		return nil
	}
	return func(_ field.Field, ctx CIn) (COut, error) {
		return fn(ctx)
	}
}

// MapSource navigates the node's source once per Consume before any child runs.
// It composes with an earlier MapSource and must be called before Field or PipeTo.
// When the mapped source is absent, the node and its children are skipped.
func MapSource[SIn any, CIn any, SMid any, COut any, SOut any](
	b *ObjectBuilder[SIn, CIn, SMid, COut],
	fn func(SMid) (SOut, error),
) *ObjectBuilder[SIn, CIn, SOut, COut] {
	next := &ObjectBuilder[SIn, CIn, SOut, COut]{
		field:    b.field,
		context:  b.context,
		problems: slices.Clone(b.problems),
	}

	switch {
	case b.finalized:
		next.problems = append(next.problems, fmt.Errorf("map source: %w", ErrBuilderFinalized))
	case len(b.children) > 0:
		next.problems = append(next.problems, errors.New("map source must be configured before fields"))
	case fn == nil:
		next.problems = append(next.problems, errors.New("source mapper is required"))
	}

	prev := b.source
	next.source = func(src SIn) (SOut, bool, error) {
		var zero SOut
		mid, ok, err := prev(src)
		if err != nil || !ok {
			return zero, false, err
		}
		out, err := fn(mid)
		if err != nil {
			return zero, false, err
		}
		return out, !isAbsent(any(out)), nil
	}

	b.finalized = true
	b.consumed = true

	return next
}

func identitySource[S any](src S) (S, bool, error) {
	return src, true, nil
}

func (b *ObjectBuilder[SIn, CIn, SOut, COut]) mutable(op string) bool {
	if b.finalized {
		b.problems = append(b.problems, fmt.Errorf("%s: %w", op, ErrBuilderFinalized))
		return false
	}
	return true
}

// Field appends a child. Children run in the order they are added.
func (b *ObjectBuilder[SIn, CIn, SOut, COut]) Field(child Builder[SOut, COut]) *ObjectBuilder[SIn, CIn, SOut, COut] {
	if !b.mutable("field") {
		return b
	}
	if b.piped {
		b.problems = append(b.problems, errors.New("field cannot be combined with pipe to"))
		return b
	}
	if child == nil {
		b.problems = append(b.problems, fmt.Errorf("field %d is nil", len(b.children)))
		return b
	}
	b.children = append(b.children, child)
	return b
}

// Fields appends several children in order.
func (b *ObjectBuilder[SIn, CIn, SOut, COut]) Fields(children ...Builder[SOut, COut]) *ObjectBuilder[SIn, CIn, SOut, COut] {
	for _, c := range children {
		b.Field(c)
	}
	return b
}

// PipeTo makes the node delegate to a single downstream converter instead of named children.
// It cannot be combined with Field.
func (b *ObjectBuilder[SIn, CIn, SOut, COut]) PipeTo(child Builder[SOut, COut]) Builder[SIn, CIn] {
	if !b.mutable("pipe to") {
		return b
	}
	switch {
	case b.piped:
		b.problems = append(b.problems, errors.New("pipe to already configured"))
	case len(b.children) > 0:
		b.problems = append(b.problems, errors.New("pipe to cannot be combined with field"))
	case child == nil:
		b.problems = append(b.problems, errors.New("pipe to target is nil"))
	default:
		b.children = []Builder[SOut, COut]{child}
	}
	b.piped = true
	return b
}

// Build validates the node and its children, returning every problem found in one ConfigError.
// Children are validated on every call, so a child changed after an earlier Build is reported.
func (b *ObjectBuilder[SIn, CIn, SOut, COut]) Build() (Converter[SIn, CIn], error) {
	b.finalized = true

	kind := KindObject
	if b.piped {
		kind = KindChain
	}

	problems := slices.Clone(b.problems)
	if b.consumed {
		problems = append(problems, fmt.Errorf("build: %w: use the builder returned by MapSource", ErrBuilderFinalized))
	}

	children := make([]Converter[SOut, COut], 0, len(b.children))
	for i, child := range b.children {
		c, err := child.Build()
		if err != nil {
			problems = append(problems, fmt.Errorf("field %d: %w", i, err))
			continue
		}
		children = append(children, c)
	}

	if len(problems) > 0 {
		return nil, newConfigError(b.field, kind, problems)
	}
	if b.built != nil && slices.Equal(b.built.children, children) {
		return b.built, nil
	}

	b.built = &objectNode[SIn, CIn, SOut, COut]{
		field:    b.field,
		kind:     kind,
		source:   b.source,
		context:  b.context,
		children: children,
	}
	return b.built, nil
}

type objectNode[SIn any, CIn any, SOut any, COut any] struct {
	field    field.Field
	kind     Kind
	source   func(SIn) (SOut, bool, error)
	context  func(field.Field, CIn) (COut, error)
	children []Converter[SOut, COut]
}

func (n *objectNode[SIn, CIn, SOut, COut]) Field() field.Field {
	return n.field
}

func (n *objectNode[SIn, CIn, SOut, COut]) ExternalName() string {
	return n.field.ExternalName()
}

func (n *objectNode[SIn, CIn, SOut, COut]) InternalName() string {
	return n.field.InternalName()
}

func (n *objectNode[SIn, CIn, SOut, COut]) Kind() Kind {
	return n.kind
}

func (n *objectNode[SIn, CIn, SOut, COut]) Fields() []Node {
	return nodes(n.children)
}

func (n *objectNode[SIn, CIn, SOut, COut]) Build() (Converter[SIn, CIn], error) {
	return n, nil
}

// Consume navigates the source once, derives the child context once, then runs every child in order.
func (n *objectNode[SIn, CIn, SOut, COut]) Consume(src SIn, ctx CIn) error {
	s, ok, err := protect(func() (SOut, bool, error) {
		return n.source(src)
	})
	if err != nil {
		return newConversionError(n.field, n.kind, StageSource, err)
	}
	if !ok {
		return nil
	}

	var c COut
	err = guard(func() (err error) {
		c, err = n.context(n.field, ctx)
		return err
	})
	if err != nil {
		return newConversionError(n.field, n.kind, StageContext, err)
	}

	for _, child := range n.children {
		if err := child.Consume(s, c); err != nil {
			return withParent(n.field.ExternalName(), err)
		}
	}

	return nil
}
