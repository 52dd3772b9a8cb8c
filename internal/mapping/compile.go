package mapping

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/convtree/internal/converter"
	"github.com/mozilla-ai/convtree/internal/field"
	"github.com/mozilla-ai/convtree/internal/source"
)

// CompileOptions contains optional configuration for Compile.
// NewCompileOptions should be used to create instances of CompileOptions.
type CompileOptions struct {
	// Logger receives silenced conversion errors and failed predicate evaluations.
	Logger hclog.Logger

	// Functions resolves the decorators and mappers named by definitions.
	Functions *Functions
}

// CompileOption defines a functional option for configuring CompileOptions.
type CompileOption func(*CompileOptions) error

// NewCompileOptions creates CompileOptions with defaults, then applies opts in order.
func NewCompileOptions(opts ...CompileOption) (CompileOptions, error) {
	options := CompileOptions{
		Logger:    hclog.NewNullLogger(),
		Functions: DefaultFunctions(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return CompileOptions{}, err
		}
	}

	return options, nil
}

// WithLogger sets the logger used by compiled trees.
func WithLogger(logger hclog.Logger) CompileOption {
	return func(o *CompileOptions) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		o.Logger = logger
		return nil
	}
}

// WithFunctions replaces the registry of named decorators and mappers.
func WithFunctions(fns *Functions) CompileOption {
	return func(o *CompileOptions) error {
		if fns == nil {
			return fmt.Errorf("functions cannot be nil")
		}
		o.Functions = fns
		return nil
	}
}

// Compile turns def into a converter tree writing into destinations of type C.
// The root node consumes the decoded input and the root destination of the target.
func Compile[C any](def *Definition, target Target[C], opts ...CompileOption) (converter.Converter[any, C], error) {
	if def == nil {
		return nil, fmt.Errorf("%w: definition is nil", ErrCompileFailed)
	}
	if err := target.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	options, err := NewCompileOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	c := &compiler[C]{
		target: target,
		fns:    options.Functions,
		logger: options.Logger.Named("mapping").With("mapping", def.Name),
	}

	root := converter.Object[any, C](field.Of(def.Name).WithDescription(def.Description))
	for i, fd := range def.Fields {
		if child := c.field(fd, fmt.Sprintf("fields[%d]", i)); child != nil {
			root.Field(child)
		}
	}

	if len(c.problems) > 0 {
		return nil, fmt.Errorf("%w: '%s': %w", ErrCompileFailed, def.Name, errors.Join(c.problems...))
	}

	tree, err := root.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrCompileFailed, def.Name, err)
	}

	return tree, nil
}

type compiler[C any] struct {
	target   Target[C]
	fns      *Functions
	logger   hclog.Logger
	problems []error
}

func (c *compiler[C]) fail(loc string, fd FieldDef, format string, args ...any) {
	c.problems = append(c.problems, fmt.Errorf("%s (%s): %w", loc, fd.Name, fmt.Errorf(format, args...)))
}

func (c *compiler[C]) failErr(loc string, fd FieldDef, err error) {
	c.problems = append(c.problems, fmt.Errorf("%s (%s): %w", loc, fd.Name, err))
}

func fieldOf(fd FieldDef) field.Field {
	return field.New(fd.Name, fd.ExternalName()).
		WithDescription(fd.Description).
		WithPublic(!fd.Private).
		WithFilter(fd.Filter || fd.When != "")
}

// field compiles one definition node. It returns nil when the node is invalid; the reason is recorded.
func (c *compiler[C]) field(fd FieldDef, loc string) converter.Builder[any, C] {
	if !c.check(fd, loc) {
		return nil
	}

	f := fieldOf(fd)
	switch {
	case fd.IsFanOut():
		return c.fanOut(fd, f, loc)
	case fd.IsComposite():
		return c.object(fd, f, loc)
	case fd.Attr:
		return c.leaf(fd, f, loc, fd.SourcePath(), c.target.attr(), true)
	default:
		return c.leaf(fd, f, loc, fd.SourcePath(), c.target.Write, true)
	}
}

// check enforces the combinations the schema cannot express.
func (c *compiler[C]) check(fd FieldDef, loc string) bool {
	before := len(c.problems)

	if fd.Map != "" && fd.Expr != "" {
		c.fail(loc, fd, "map and expr cannot be combined")
	}
	if fd.Inline && !fd.IsComposite() {
		c.fail(loc, fd, "inline requires fields")
	}
	if fd.Inline && fd.IsFanOut() {
		c.fail(loc, fd, "inline cannot be combined with each")
	}
	if fd.Attr && (fd.IsComposite() || fd.IsFanOut()) {
		c.fail(loc, fd, "attr is only valid on leaf fields")
	}
	if fd.IsComposite() && (len(fd.Decorate) > 0 || fd.Map != "" || fd.Expr != "" || fd.Keep != "" || fd.Silence) {
		c.fail(loc, fd, "fields with children cannot decorate, map, keep or silence")
	}
	if fd.Item != "" && !fd.IsFanOut() {
		c.fail(loc, fd, "item requires each")
	}

	return len(c.problems) == before
}

func (c *compiler[C]) children(ob *converter.ObjectBuilder[any, C, any, C], fields []FieldDef, loc string) {
	for i, child := range fields {
		if b := c.field(child, fmt.Sprintf("%s.fields[%d]", loc, i)); b != nil {
			ob.Field(b)
		}
	}
}

func (c *compiler[C]) object(fd FieldDef, f field.Field, loc string) converter.Builder[any, C] {
	var ob *converter.ObjectBuilder[any, C, any, C]
	if fd.Inline {
		ob = converter.Object[any, C](f)
	} else {
		ob = converter.ObjectWithContext[any](f, c.target.Object)
	}

	if fd.When != "" {
		pred, err := compilePredicate(fd.When)
		if err != nil {
			c.failErr(loc, fd, err)
			return nil
		}
		ob = converter.MapSource(ob, c.gate(pred, f))
	}

	p, err := source.Parse(fd.SourcePath())
	if err != nil {
		c.failErr(loc, fd, err)
		return nil
	}
	if !p.IsSelf() {
		ob = converter.MapSource(ob, p.Navigator())
	}

	c.children(ob, fd.Fields, loc)
	return ob
}

func (c *compiler[C]) fanOut(fd FieldDef, f field.Field, loc string) converter.Builder[any, C] {
	ob := converter.ObjectWithContext[any](f, c.target.Array)

	if fd.When != "" {
		pred, err := compilePredicate(fd.When)
		if err != nil {
			c.failErr(loc, fd, err)
			return nil
		}
		ob = converter.MapSource(ob, c.gate(pred, f))
	}

	p, err := source.Parse(fd.Each)
	if err != nil {
		c.failErr(loc, fd, err)
		return nil
	}
	fb := converter.IterateOn(ob, p.Iterate())

	item := field.Of(fd.ItemName())
	if fd.IsComposite() {
		child := converter.ObjectWithContext[any](item, c.target.Item)
		c.children(child, fd.Fields, loc)
		return fb.PipeTo(child)
	}

	child := c.leaf(fd, item, loc, source.Self, c.target.Append, false)
	if child == nil {
		return nil
	}
	return fb.PipeTo(child)
}

// leaf compiles an extracting node reading path. gated applies the field's when predicate.
func (c *compiler[C]) leaf(
	fd FieldDef,
	f field.Field,
	loc string,
	path string,
	writer func(field.Field, any, C) error,
	gated bool,
) converter.Builder[any, C] {
	p, err := source.Parse(path)
	if err != nil {
		c.failErr(loc, fd, err)
		return nil
	}

	b := converter.ExtractWith[C](f, p.Extractor()).
		WithLogger(c.logger).
		WithWriter(writer)

	if gated && fd.When != "" {
		pred, err := compilePredicate(fd.When)
		if err != nil {
			c.failErr(loc, fd, err)
			return nil
		}
		b.Filter(func(src any) bool {
			return c.holds(pred, f, src, nil)
		})
	}

	for _, ref := range fd.Decorate {
		d, err := c.fns.Decorator(ref)
		if err != nil {
			c.failErr(loc, fd, err)
			return nil
		}
		b.Decorate(d)
	}

	if fd.Silence {
		b.SilenceErrors()
	}

	var keep func(any) bool
	if fd.Keep != "" {
		pred, err := compilePredicate(fd.Keep)
		if err != nil {
			c.failErr(loc, fd, err)
			return nil
		}
		keep = func(v any) bool {
			return c.holds(pred, f, nil, v)
		}
	}

	mapper, err := c.mapper(fd)
	if err != nil {
		c.failErr(loc, fd, err)
		return nil
	}

	if mapper == nil {
		if keep != nil {
			b.Keep(keep)
		}
		return b
	}

	mb := converter.MapWithSource(b, mapper)
	if keep != nil {
		mb.Keep(keep)
	}
	return mb
}

// mapper returns the field's fallible mapper. Expression mappers see the source the leaf consumed.
func (c *compiler[C]) mapper(fd FieldDef) (func(src any, v any) (any, error), error) {
	switch {
	case fd.Map != "":
		m, err := c.fns.Mapper(fd.Map)
		if err != nil {
			return nil, err
		}
		return func(_ any, v any) (any, error) {
			return m(v)
		}, nil
	case fd.Expr != "":
		prg, err := compileExpr(fd.Expr)
		if err != nil {
			return nil, err
		}
		return prg.eval, nil
	default:
		return nil, nil
	}
}

// gate returns a source mapper that yields no source when pred does not hold, skipping the node.
func (c *compiler[C]) gate(pred *program, f field.Field) func(any) (any, error) {
	return func(src any) (any, error) {
		if c.holds(pred, f, src, nil) {
			return src, nil
		}
		return nil, nil
	}
}

// holds evaluates pred. Evaluation failures count as false.
func (c *compiler[C]) holds(pred *program, f field.Field, src any, value any) bool {
	ok, err := pred.test(src, value)
	if err != nil {
		c.logger.Warn("Predicate evaluation failed", "field", f.String(), "error", err)
		return false
	}
	return ok
}
