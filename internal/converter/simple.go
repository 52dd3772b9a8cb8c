package converter

import (
	"errors"
	"slices"

	"github.com/mozilla-ai/convtree/internal/field"
)

var _ Converter[any, any] = (*SimpleNode[any, any])(nil)

// SimpleNode wraps a raw consumer that extracts and writes in one step.
// It is its own builder: Filter returns a new node and never changes the receiver.
type SimpleNode[S any, C any] struct {
	field   field.Field
	consume func(S, C) error
	preds   []func(S) bool
}

// Simple returns a node that runs fn for every consumed source.
func Simple[S any, C any](f field.Field, fn func(src S, ctx C) error) *SimpleNode[S, C] {
	return &SimpleNode[S, C]{field: f, consume: fn}
}

// ContextOnly returns a node that only touches the destination, e.g. to stamp a constant value.
func ContextOnly[S any, C any](f field.Field, fn func(ctx C) error) *SimpleNode[S, C] {
	var consume func(S, C) error
	if fn != nil {
		consume = func(_ S, ctx C) error {
			return fn(ctx)
		}
	}
	return Simple(f, consume)
}

// Filter returns a copy of the node gated by pred. Predicates accumulate with AND semantics.
func (n *SimpleNode[S, C]) Filter(pred func(S) bool) *SimpleNode[S, C] {
	out := &SimpleNode[S, C]{
		field:   n.field,
		consume: n.consume,
		preds:   slices.Clone(n.preds),
	}
	if pred != nil {
		out.preds = append(out.preds, pred)
	}
	return out
}

func (n *SimpleNode[S, C]) Field() field.Field {
	return n.field
}

func (n *SimpleNode[S, C]) ExternalName() string {
	return n.field.ExternalName()
}

func (n *SimpleNode[S, C]) InternalName() string {
	return n.field.InternalName()
}

func (n *SimpleNode[S, C]) Kind() Kind {
	return KindSimple
}

func (n *SimpleNode[S, C]) Fields() []Node {
	return []Node{}
}

// Build validates that a consumer is present.
func (n *SimpleNode[S, C]) Build() (Converter[S, C], error) {
	if n.consume == nil {
		return nil, newConfigError(n.field, KindSimple, []error{errors.New("consumer is required")})
	}
	return n, nil
}

// Consume runs the predicates, then the consumer.
func (n *SimpleNode[S, C]) Consume(src S, ctx C) error {
	pass, err := holds(n.preds, src)
	if err != nil {
		return newConversionError(n.field, KindSimple, StageFilter, err)
	}
	if !pass {
		return nil
	}

	if err := guard(func() error { return n.consume(src, ctx) }); err != nil {
		return newConversionError(n.field, KindSimple, StageConsume, err)
	}

	return nil
}
