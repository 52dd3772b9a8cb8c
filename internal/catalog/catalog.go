// Package catalog holds the compiled mappings of a project, keyed by name, and runs conversions against them.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/converter"
	errs "github.com/mozilla-ai/convtree/internal/errors"
	"github.com/mozilla-ai/convtree/internal/mapping"
	"github.com/mozilla-ai/convtree/internal/sink/docsink"
	"github.com/mozilla-ai/convtree/internal/sink/xmlsink"
)

// Entry is a compiled mapping.
type Entry struct {
	Name        string
	Description string
	File        string
	Definition  *mapping.Definition

	document converter.Converter[any, *docsink.Node]
	xml      converter.Converter[any, *etree.Element]
}

// Root returns the root node of the document tree, for introspection.
func (e *Entry) Root() converter.Node {
	return e.document
}

// Summary describes a mapping for listings.
type Summary struct {
	Name        string `json:"name"                  toml:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
	File        string `json:"file,omitempty"        toml:"file,omitempty"        yaml:"file,omitempty"`
	Root        string `json:"root"                  toml:"root"                  yaml:"root"`
	Fields      int    `json:"fields"                toml:"fields"                yaml:"fields"`
	Patched     bool   `json:"patched"               toml:"patched"               yaml:"patched"`
}

// Catalog holds compiled mappings by name.
// It is safe for concurrent use by multiple goroutines.
type Catalog struct {
	mu          sync.RWMutex
	entries     map[string]*Entry
	logger      hclog.Logger
	concurrency int
	compileOpts []mapping.CompileOption
}

// New creates an empty Catalog.
func New(opts ...Option) (*Catalog, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	logger := options.Logger.Named("catalog")

	return &Catalog{
		entries:     make(map[string]*Entry),
		logger:      logger,
		concurrency: options.Concurrency,
		compileOpts: []mapping.CompileOption{
			mapping.WithLogger(logger),
			mapping.WithFunctions(options.Functions),
		},
	}, nil
}

// Load loads, validates and compiles every mapping listed in cfg.
// Problems with individual mappings are collected; mappings that compiled are still added.
func (c *Catalog) Load(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", errs.ErrInvalidMapping)
	}

	var loadErrors []error
	for _, entry := range cfg.ListMappings() {
		path := cfg.Path(entry)

		def, err := mapping.LoadFile(path)
		if err != nil {
			loadErrors = append(loadErrors, fmt.Errorf("mapping '%s': %w", entry.Name, err))
			continue
		}

		if err := c.add(entry.Name, entry.Description, path, def); err != nil {
			loadErrors = append(loadErrors, err)
			continue
		}
	}

	c.logger.Info("Loaded mappings", "count", len(c.Names()), "failed", len(loadErrors))

	if len(loadErrors) > 0 {
		return fmt.Errorf("%w: %w", errs.ErrInvalidMapping, errors.Join(loadErrors...))
	}

	return nil
}

// Add compiles def and registers it under name.
func (c *Catalog) Add(name string, description string, def *mapping.Definition) error {
	if err := c.add(name, description, "", def); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidMapping, err)
	}
	return nil
}

func (c *Catalog) add(name string, description string, file string, def *mapping.Definition) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("mapping name cannot be empty")
	}

	document, err := mapping.Compile(def, mapping.DocumentTarget(), c.compileOpts...)
	if err != nil {
		return fmt.Errorf("mapping '%s': %w", name, err)
	}
	xml, err := mapping.Compile(def, mapping.XMLTarget(), c.compileOpts...)
	if err != nil {
		return fmt.Errorf("mapping '%s': %w", name, err)
	}

	if description == "" {
		description = def.Description
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[name]; exists {
		return fmt.Errorf("mapping '%s' already exists", name)
	}

	c.entries[name] = &Entry{
		Name:        name,
		Description: description,
		File:        file,
		Definition:  def,
		document:    document,
		xml:         xml,
	}

	c.logger.Debug("Compiled mapping", "mapping", name, "fields", converter.Count(document))

	return nil
}

// Names returns the registered mapping names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the mapping registered under name.
func (c *Catalog) Get(name string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", errs.ErrMappingNotFound, name)
	}
	return e, nil
}

// Summaries returns a summary of every mapping, sorted by name.
func (c *Catalog) Summaries() []Summary {
	names := c.Names()
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		e, err := c.Get(name)
		if err != nil {
			continue
		}
		out = append(out, Summary{
			Name:        e.Name,
			Description: e.Description,
			File:        e.File,
			Root:        e.Definition.Name,
			Fields:      converter.Count(e.document),
			Patched:     e.Definition.HasPatch(),
		})
	}
	return out
}

// Describe returns the flattened structure of the mapping registered under name.
func (c *Catalog) Describe(name string) ([]converter.FieldInfo, error) {
	e, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	return converter.Describe(e.document), nil
}

// Convert runs the mapping registered under name against input and returns an ordered document.
// The result is a *docsink.Node, or the decoded document produced by the definition's patch.
func (c *Catalog) Convert(ctx context.Context, name string, input any) (any, error) {
	e, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := docsink.NewObject()
	if err := e.document.Consume(input, root); err != nil {
		return nil, c.failed(name, err)
	}

	if !e.Definition.HasPatch() {
		return root, nil
	}

	data, err := json.Marshal(root)
	if err != nil {
		return nil, c.failed(name, err)
	}
	patched, err := e.Definition.ApplyPatch(data)
	if err != nil {
		return nil, c.failed(name, err)
	}
	out, err := docsink.Decode(patched)
	if err != nil {
		return nil, c.failed(name, err)
	}

	return out, nil
}

// ConvertXML runs the mapping registered under name against input and renders an XML document
// whose root element is named after the definition.
func (c *Catalog) ConvertXML(ctx context.Context, name string, input any, indent int) (string, error) {
	e, err := c.Get(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc, root := xmlsink.NewDocument(e.Definition.Name)
	if err := e.xml.Consume(input, root); err != nil {
		return "", c.failed(name, err)
	}

	out, err := xmlsink.Render(doc, indent)
	if err != nil {
		return "", c.failed(name, err)
	}
	return out, nil
}

// ConvertAll converts every input concurrently, each into a fresh document.
// Results keep the order of inputs. The first failure cancels the remaining conversions.
func (c *Catalog) ConvertAll(ctx context.Context, name string, inputs []any) ([]any, error) {
	if _, err := c.Get(name); err != nil {
		return nil, err
	}

	results := make([]any, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			out, err := c.Convert(gctx, name, input)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// ConvertAllXML renders every input concurrently. Results keep the order of inputs.
func (c *Catalog) ConvertAllXML(ctx context.Context, name string, inputs []any, indent int) ([]string, error) {
	if _, err := c.Get(name); err != nil {
		return nil, err
	}

	results := make([]string, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			out, err := c.ConvertXML(gctx, name, input, indent)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Catalog) failed(name string, err error) error {
	c.logger.Debug("Conversion failed", "mapping", name, "error", err)
	return fmt.Errorf("%w: '%s': %w", errs.ErrConversionFailed, name, err)
}
