package converter

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/mozilla-ai/convtree/internal/field"
)

var _ Converter[any, any] = (*fanOutNode[any, any, any, any])(nil)

// FanOutBuilder assembles a one-to-many composite: its downstream converter runs once per element.
// By default the context mapper runs once per Consume and every element shares the result,
// which suits "append into the same list" sinks. PerElement derives one context per element.
type FanOutBuilder[SIn any, CIn any, E any, COut any] struct {
	field      field.Field
	elements   func(SIn) (iter.Seq[E], bool, error)
	context    func(field.Field, CIn) (COut, error)
	perElement bool
	child      Builder[E, COut]
	problems   []error
	finalized  bool
	built      *fanOutNode[SIn, CIn, E, COut]
}

// FlatMap turns b into a fan-out over the slice returned by fn.
func FlatMap[SIn any, CIn any, SOut any, COut any, E any](
	b *ObjectBuilder[SIn, CIn, SOut, COut],
	fn func(SOut) ([]E, error),
) *FanOutBuilder[SIn, CIn, E, COut] {
	var seq func(SOut) (iter.Seq[E], error)
	if fn != nil {
		seq = func(src SOut) (iter.Seq[E], error) {
			items, err := fn(src)
			if err != nil {
				return nil, err
			}
			return slices.Values(items), nil
		}
	}
	return IterateOn(b, seq)
}

// IterateOn turns b into a fan-out over the sequence returned by fn.
// The sequence is fully consumed on every Consume call. A nil sequence produces no elements.
// b must not have children; the downstream converter is set with PipeTo.
func IterateOn[SIn any, CIn any, SOut any, COut any, E any](
	b *ObjectBuilder[SIn, CIn, SOut, COut],
	fn func(SOut) (iter.Seq[E], error),
) *FanOutBuilder[SIn, CIn, E, COut] {
	fb := &FanOutBuilder[SIn, CIn, E, COut]{
		field:    b.field,
		context:  b.context,
		problems: slices.Clone(b.problems),
	}

	switch {
	case b.finalized:
		fb.problems = append(fb.problems, fmt.Errorf("iterate on: %w", ErrBuilderFinalized))
	case len(b.children) > 0 || b.piped:
		fb.problems = append(fb.problems, errors.New("fan-out cannot be combined with field or pipe to"))
	case fn == nil:
		fb.problems = append(fb.problems, errors.New("iteration function is required"))
	}

	source := b.source
	fb.elements = func(src SIn) (iter.Seq[E], bool, error) {
		s, ok, err := source(src)
		if err != nil || !ok {
			return nil, false, err
		}
		seq, err := fn(s)
		if err != nil {
			return nil, false, err
		}
		return seq, seq != nil, nil
	}

	b.finalized = true
	b.consumed = true

	return fb
}

// PerElement makes the node derive a fresh context for every element.
func (b *FanOutBuilder[SIn, CIn, E, COut]) PerElement() *FanOutBuilder[SIn, CIn, E, COut] {
	if b.finalized {
		b.problems = append(b.problems, fmt.Errorf("per element: %w", ErrBuilderFinalized))
		return b
	}
	b.perElement = true
	return b
}

// PipeTo sets the downstream converter run for every element. It is required and finalizes the builder.
func (b *FanOutBuilder[SIn, CIn, E, COut]) PipeTo(child Builder[E, COut]) Builder[SIn, CIn] {
	switch {
	case b.finalized:
		b.problems = append(b.problems, fmt.Errorf("pipe to: %w", ErrBuilderFinalized))
	case child == nil:
		b.problems = append(b.problems, errors.New("pipe to target is nil"))
	default:
		b.child = child
	}
	b.finalized = true
	return b
}

// Build validates the node and its downstream converter, on every call.
func (b *FanOutBuilder[SIn, CIn, E, COut]) Build() (Converter[SIn, CIn], error) {
	b.finalized = true

	problems := slices.Clone(b.problems)

	var child Converter[E, COut]
	if b.child == nil {
		problems = append(problems, errors.New("pipe to is required for a fan-out"))
	} else {
		c, err := b.child.Build()
		if err != nil {
			problems = append(problems, fmt.Errorf("pipe to: %w", err))
		}
		child = c
	}

	if len(problems) > 0 {
		return nil, newConfigError(b.field, KindFanOut, problems)
	}
	if b.built != nil && b.built.child == child {
		return b.built, nil
	}

	b.built = &fanOutNode[SIn, CIn, E, COut]{
		field:      b.field,
		elements:   b.elements,
		context:    b.context,
		perElement: b.perElement,
		child:      child,
	}
	return b.built, nil
}

type fanOutNode[SIn any, CIn any, E any, COut any] struct {
	field      field.Field
	elements   func(SIn) (iter.Seq[E], bool, error)
	context    func(field.Field, CIn) (COut, error)
	perElement bool
	child      Converter[E, COut]
}

func (n *fanOutNode[SIn, CIn, E, COut]) Field() field.Field {
	return n.field
}

func (n *fanOutNode[SIn, CIn, E, COut]) ExternalName() string {
	return n.field.ExternalName()
}

func (n *fanOutNode[SIn, CIn, E, COut]) InternalName() string {
	return n.field.InternalName()
}

func (n *fanOutNode[SIn, CIn, E, COut]) Kind() Kind {
	return KindFanOut
}

func (n *fanOutNode[SIn, CIn, E, COut]) Fields() []Node {
	return []Node{n.child}
}

func (n *fanOutNode[SIn, CIn, E, COut]) Build() (Converter[SIn, CIn], error) {
	return n, nil
}

// Consume runs the downstream converter once per element, in iteration order.
func (n *fanOutNode[SIn, CIn, E, COut]) Consume(src SIn, ctx CIn) error {
	seq, ok, err := protect(func() (iter.Seq[E], bool, error) {
		return n.elements(src)
	})
	if err != nil {
		return newConversionError(n.field, KindFanOut, StageIterate, err)
	}
	if !ok {
		return nil
	}

	var shared COut
	if !n.perElement {
		if shared, err = n.derive(ctx); err != nil {
			return newConversionError(n.field, KindFanOut, StageContext, err)
		}
	}

	i := 0
	for elem := range seq {
		c := shared
		if n.perElement {
			if c, err = n.derive(ctx); err != nil {
				ce := newConversionError(n.field, KindFanOut, StageContext, err)
				ce.Path = []string{n.element(i)}
				return ce
			}
		}
		if err := n.child.Consume(elem, c); err != nil {
			return withParent(n.element(i), err)
		}
		i++
	}

	return nil
}

func (n *fanOutNode[SIn, CIn, E, COut]) derive(ctx CIn) (c COut, err error) {
	err = guard(func() error {
		c, err = n.context(n.field, ctx)
		return err
	})
	return c, err
}

func (n *fanOutNode[SIn, CIn, E, COut]) element(i int) string {
	return fmt.Sprintf("%s[%d]", n.field.ExternalName(), i)
}
