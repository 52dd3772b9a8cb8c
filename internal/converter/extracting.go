package converter

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/convtree/internal/field"
)

var _ Converter[any, any] = (*extractingNode[any, any])(nil)

// Extractor reads the value addressed by f from src.
// The boolean result reports presence; returning false means "no value" and is not an error.
type Extractor[S any, V any] func(f field.Field, src S) (V, bool, error)

// Writer places a value into the destination context under f.
// Values reach writers after every decorator and mapper, so writers accept any.
type Writer[C any] func(f field.Field, value any, ctx C) error

// stageKind tags an entry of the post-extraction chain so the engine applies the right error policy.
type stageKind int

const (
	stageDecorate stageKind = iota
	stageKeep
	stageMap
)

func (k stageKind) stage() Stage {
	switch k {
	case stageMap:
		return StageMap
	case stageKeep:
		return StageFilter
	default:
		return StageDecorate
	}
}

type stage[S any] struct {
	kind  stageKind
	apply func(src S, v any) (any, bool, error)
}

// pipeline is the type-erased configuration shared by ExtractingBuilder and MappedBuilder.
type pipeline[S any, C any] struct {
	field     field.Field
	extract   func(field.Field, S) (any, bool, error)
	stages    []stage[S]
	writer    Writer[C]
	preds     []func(S) bool
	silence   bool
	onError   func(error, S)
	logger    hclog.Logger
	problems  []error
	finalized bool
	consumed  bool
	next      *pipeline[S, C]
	built     *extractingNode[S, C]
}

func newPipeline[S any, C any](f field.Field, extract func(field.Field, S) (any, bool, error)) *pipeline[S, C] {
	p := &pipeline[S, C]{field: f, extract: extract}
	if extract == nil {
		p.problems = append(p.problems, errors.New("extractor is required"))
	}
	return p
}

// mutable records a problem and returns false when the pipeline can no longer change.
// A retired pipeline also records the problem on every successor, so the builder that replaced it fails too.
func (p *pipeline[S, C]) mutable(op string) bool {
	if !p.finalized {
		return true
	}
	err := fmt.Errorf("%s: %w", op, ErrBuilderFinalized)
	for q := p; q != nil; q = q.next {
		q.problems = append(q.problems, err)
	}
	return false
}

// fork hands the configuration over to a new pipeline and retires the receiver.
func (p *pipeline[S, C]) fork(op string) *pipeline[S, C] {
	next := &pipeline[S, C]{
		field:    p.field,
		extract:  p.extract,
		stages:   slices.Clone(p.stages),
		writer:   p.writer,
		preds:    slices.Clone(p.preds),
		silence:  p.silence,
		onError:  p.onError,
		logger:   p.logger,
		problems: slices.Clone(p.problems),
	}
	if p.finalized {
		next.problems = append(next.problems, fmt.Errorf("%s: %w", op, ErrBuilderFinalized))
	}
	p.finalized = true
	p.consumed = true
	p.next = next
	return next
}

func (p *pipeline[S, C]) addStage(op string, kind stageKind, apply func(any) (any, bool, error)) {
	if !p.mutable(op) {
		return
	}
	p.stages = append(p.stages, stage[S]{kind: kind, apply: func(_ S, v any) (any, bool, error) {
		return apply(v)
	}})
}

func (p *pipeline[S, C]) setWriter(w Writer[C]) {
	if !p.mutable("with writer") {
		return
	}
	p.writer = w
}

func (p *pipeline[S, C]) addFilter(pred func(S) bool) {
	if !p.mutable("filter") || pred == nil {
		return
	}
	p.preds = append(p.preds, pred)
}

func (p *pipeline[S, C]) setSilence() {
	if !p.mutable("silence errors") {
		return
	}
	p.silence = true
}

func (p *pipeline[S, C]) setLogger(l hclog.Logger) {
	if !p.mutable("with logger") {
		return
	}
	p.logger = l
}

func (p *pipeline[S, C]) setOnError(fn func(error, S)) {
	if !p.mutable("on error") {
		return
	}
	p.onError = fn
}

func (p *pipeline[S, C]) build() (Converter[S, C], error) {
	if p.built != nil && len(p.problems) == 0 {
		return p.built, nil
	}
	p.finalized = true

	problems := slices.Clone(p.problems)
	if p.consumed {
		problems = append(problems, fmt.Errorf("build: %w: use the builder returned by Map", ErrBuilderFinalized))
	}
	if p.writer == nil {
		problems = append(problems, errors.New("writer is required"))
	}
	if len(problems) > 0 {
		return nil, newConfigError(p.field, KindExtracting, problems)
	}

	p.built = &extractingNode[S, C]{
		field:   p.field,
		extract: p.extract,
		stages:  slices.Clone(p.stages),
		writer:  p.writer,
		preds:   slices.Clone(p.preds),
		silence: p.silence,
		onError: p.onError,
		logger:  p.logger,
	}
	return p.built, nil
}

// ExtractingBuilder assembles a single-field leaf whose extracted value has type V.
// Decorators run in declaration order. Map moves the builder into its mapped state.
type ExtractingBuilder[S any, C any, V any] struct {
	p *pipeline[S, C]
}

// ExtractWith starts an extracting node from a full Extractor.
// ex has the shape of Extractor; it is spelled out so that its type arguments can be inferred.
// The context type is given explicitly; the source and value types are inferred:
//
//	converter.ExtractWith[map[string]any](f, source.ByField)
func ExtractWith[C any, S any, V any](f field.Field, ex func(f field.Field, src S) (V, bool, error)) *ExtractingBuilder[S, C, V] {
	var extract func(field.Field, S) (any, bool, error)
	if ex != nil {
		extract = func(f field.Field, src S) (any, bool, error) {
			v, ok, err := ex(f, src)
			return v, ok, err
		}
	}
	return &ExtractingBuilder[S, C, V]{p: newPipeline[S, C](f, extract)}
}

// Extract starts an extracting node from a getter on the source.
// An absent source skips the getter, and an absent result (nil pointer, map, slice or interface)
// counts as "no value".
func Extract[C any, S any, V any](f field.Field, get func(src S) V) *ExtractingBuilder[S, C, V] {
	if get == nil {
		return ExtractWith[C, S, V](f, nil)
	}
	return ExtractField[C](f, func(_ field.Field, src S) V {
		return get(src)
	})
}

// ExtractField starts an extracting node from a getter that also receives the node's Field.
func ExtractField[C any, S any, V any](f field.Field, get func(f field.Field, src S) V) *ExtractingBuilder[S, C, V] {
	if get == nil {
		return ExtractWith[C, S, V](f, nil)
	}
	return ExtractWith[C](f, func(f field.Field, src S) (V, bool, error) {
		if isAbsent(any(src)) {
			var zero V
			return zero, false, nil
		}
		v := get(f, src)
		return v, !isAbsent(any(v)), nil
	})
}

// WithWriter sets the writer. Its position in the chain does not matter, it always runs last.
func (b *ExtractingBuilder[S, C, V]) WithWriter(w Writer[C]) *ExtractingBuilder[S, C, V] {
	b.p.setWriter(w)
	return b
}

// Decorate appends a non-fallible transform of the extracted value.
func (b *ExtractingBuilder[S, C, V]) Decorate(fn func(V) V) *ExtractingBuilder[S, C, V] {
	if fn == nil {
		return b
	}
	b.p.addStage("decorate", stageDecorate, func(v any) (any, bool, error) {
		return fn(v.(V)), true, nil
	})
	return b
}

// Keep appends a value filter: when pred returns false the node writes nothing.
func (b *ExtractingBuilder[S, C, V]) Keep(pred func(V) bool) *ExtractingBuilder[S, C, V] {
	if pred == nil {
		return b
	}
	b.p.addStage("keep", stageKeep, func(v any) (any, bool, error) {
		return v, pred(v.(V)), nil
	})
	return b
}

// Filter gates the node on the source. When pred returns false nothing is extracted or written.
func (b *ExtractingBuilder[S, C, V]) Filter(pred func(S) bool) *ExtractingBuilder[S, C, V] {
	b.p.addFilter(pred)
	return b
}

// SilenceErrors turns extraction and mapping failures into "no value".
// Writer failures still propagate.
func (b *ExtractingBuilder[S, C, V]) SilenceErrors() *ExtractingBuilder[S, C, V] {
	b.p.setSilence()
	return b
}

// SilenceExtractionErrors is equivalent to SilenceErrors.
func (b *ExtractingBuilder[S, C, V]) SilenceExtractionErrors() *ExtractingBuilder[S, C, V] {
	return b.SilenceErrors()
}

// WithLogger sets a logger used to report silenced failures at debug level.
func (b *ExtractingBuilder[S, C, V]) WithLogger(l hclog.Logger) *ExtractingBuilder[S, C, V] {
	b.p.setLogger(l)
	return b
}

// OnError registers an observer for silenced failures.
func (b *ExtractingBuilder[S, C, V]) OnError(fn func(err error, src S)) *ExtractingBuilder[S, C, V] {
	b.p.setOnError(fn)
	return b
}

// Build validates the configuration and returns the node.
func (b *ExtractingBuilder[S, C, V]) Build() (Converter[S, C], error) {
	return b.p.build()
}

// MappedBuilder is an extracting node after its single fallible mapper.
// It accepts no further decorators or mappers.
type MappedBuilder[S any, C any, R any] struct {
	p *pipeline[S, C]
}

// Map adds the node's single fallible mapper. Decorators declared on b run before it.
// A failing mapper raises a ConversionError matching ErrMapping unless errors are silenced.
func Map[S any, C any, V any, R any](b *ExtractingBuilder[S, C, V], fn func(V) (R, error)) *MappedBuilder[S, C, R] {
	if fn == nil {
		return MapWithSource[S, C, V, R](b, nil)
	}
	return MapWithSource(b, func(_ S, v V) (R, error) {
		return fn(v)
	})
}

// MapWithSource is Map with a mapper that also receives the source the node consumed.
func MapWithSource[S any, C any, V any, R any](b *ExtractingBuilder[S, C, V], fn func(src S, v V) (R, error)) *MappedBuilder[S, C, R] {
	p := b.p.fork("map")
	if fn == nil {
		p.problems = append(p.problems, errors.New("mapper is required"))
	} else {
		p.stages = append(p.stages, stage[S]{kind: stageMap, apply: func(src S, v any) (any, bool, error) {
			r, err := fn(src, v.(V))
			if err != nil {
				return nil, false, err
			}
			return r, true, nil
		}})
	}
	return &MappedBuilder[S, C, R]{p: p}
}

// WithWriter sets the writer. Its position in the chain does not matter, it always runs last.
func (b *MappedBuilder[S, C, R]) WithWriter(w Writer[C]) *MappedBuilder[S, C, R] {
	b.p.setWriter(w)
	return b
}

// Keep appends a filter on the mapped value.
func (b *MappedBuilder[S, C, R]) Keep(pred func(R) bool) *MappedBuilder[S, C, R] {
	if pred == nil {
		return b
	}
	b.p.addStage("keep", stageKeep, func(v any) (any, bool, error) {
		return v, pred(v.(R)), nil
	})
	return b
}

// Filter gates the node on the source.
func (b *MappedBuilder[S, C, R]) Filter(pred func(S) bool) *MappedBuilder[S, C, R] {
	b.p.addFilter(pred)
	return b
}

// SilenceErrors turns extraction and mapping failures into "no value".
func (b *MappedBuilder[S, C, R]) SilenceErrors() *MappedBuilder[S, C, R] {
	b.p.setSilence()
	return b
}

// SilenceExtractionErrors is equivalent to SilenceErrors.
func (b *MappedBuilder[S, C, R]) SilenceExtractionErrors() *MappedBuilder[S, C, R] {
	return b.SilenceErrors()
}

// WithLogger sets a logger used to report silenced failures at debug level.
func (b *MappedBuilder[S, C, R]) WithLogger(l hclog.Logger) *MappedBuilder[S, C, R] {
	b.p.setLogger(l)
	return b
}

// OnError registers an observer for silenced failures.
func (b *MappedBuilder[S, C, R]) OnError(fn func(err error, src S)) *MappedBuilder[S, C, R] {
	b.p.setOnError(fn)
	return b
}

// Build validates the configuration and returns the node.
func (b *MappedBuilder[S, C, R]) Build() (Converter[S, C], error) {
	return b.p.build()
}

type extractingNode[S any, C any] struct {
	field   field.Field
	extract func(field.Field, S) (any, bool, error)
	stages  []stage[S]
	writer  Writer[C]
	preds   []func(S) bool
	silence bool
	onError func(error, S)
	logger  hclog.Logger
}

func (n *extractingNode[S, C]) Field() field.Field {
	return n.field
}

func (n *extractingNode[S, C]) ExternalName() string {
	return n.field.ExternalName()
}

func (n *extractingNode[S, C]) InternalName() string {
	return n.field.InternalName()
}

func (n *extractingNode[S, C]) Kind() Kind {
	return KindExtracting
}

func (n *extractingNode[S, C]) Fields() []Node {
	return []Node{}
}

func (n *extractingNode[S, C]) Build() (Converter[S, C], error) {
	return n, nil
}

// Consume runs predicate, extractor, stages and writer, in that order.
func (n *extractingNode[S, C]) Consume(src S, ctx C) error {
	pass, err := holds(n.preds, src)
	if err != nil {
		return newConversionError(n.field, KindExtracting, StageFilter, err)
	}
	if !pass {
		return nil
	}

	v, ok, err := n.value(src)
	if err != nil {
		if !n.silence {
			return err
		}
		n.silenced(err, src)
		return nil
	}
	if !ok {
		return nil
	}

	if err := guard(func() error { return n.writer(n.field, v, ctx) }); err != nil {
		return newConversionError(n.field, KindExtracting, StageWrite, err)
	}

	return nil
}

// value runs the extractor and every stage, stopping at the first absent value.
func (n *extractingNode[S, C]) value(src S) (any, bool, error) {
	v, ok, err := protect(func() (any, bool, error) {
		return n.extract(n.field, src)
	})
	if err != nil {
		return nil, false, newConversionError(n.field, KindExtracting, StageExtract, err)
	}
	if !ok || isAbsent(v) {
		return nil, false, nil
	}

	for _, s := range n.stages {
		in := v
		v, ok, err = protect(func() (any, bool, error) {
			return s.apply(src, in)
		})
		if err != nil {
			return nil, false, newConversionError(n.field, KindExtracting, s.kind.stage(), err)
		}
		if !ok || isAbsent(v) {
			return nil, false, nil
		}
	}

	return v, true, nil
}

func (n *extractingNode[S, C]) silenced(err error, src S) {
	if n.logger != nil {
		n.logger.Debug("Silenced conversion error", "field", n.field.String(), "marker", n.field.Marker(), "error", err)
	}
	if n.onError != nil {
		n.onError(err, src)
	}
}
