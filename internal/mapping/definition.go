// Package mapping describes converter trees declaratively. Definitions are loaded from YAML, TOML or
// JSON, validated against an embedded JSON schema and compiled into converter.Converter values for a
// destination Target.
package mapping

import (
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
)

// DefaultItemName is the element name used for fan-out items when a definition does not name one.
const DefaultItemName = "item"

// Definition describes one converter tree.
type Definition struct {
	// Name is the root field name, also used as the XML root element.
	Name string `json:"name"`

	// Description is free text shown by describe and list.
	Description string `json:"description,omitempty"`

	// Fields are the children of the root, in output order.
	Fields []FieldDef `json:"fields"`

	// Patch holds RFC 6902 operations applied to document results after conversion.
	Patch []map[string]any `json:"patch,omitempty"`

	patch jsonpatch.Patch
}

// FieldDef describes one node of the tree.
type FieldDef struct {
	// Name is the internal name. It is the default source path and external name.
	Name string `json:"name"`

	// As overrides the external name.
	As string `json:"as,omitempty"`

	// Path overrides the source path. "." is the source itself.
	Path string `json:"path,omitempty"`

	Description string `json:"description,omitempty"`

	// Private hides the field from public listings.
	Private bool `json:"private,omitempty"`

	// Filter marks the field as usable for filtering.
	Filter bool `json:"filter,omitempty"`

	// Decorate lists value-preserving functions applied in order, e.g. "trim" or "split:;".
	Decorate []string `json:"decorate,omitempty"`

	// Map names a single fallible mapper applied after the decorators.
	Map string `json:"map,omitempty"`

	// Expr is an expression mapper over "value" and "source", the object the leaf reads from
	// (the element inside a fan-out). It cannot be combined with Map.
	Expr string `json:"expr,omitempty"`

	// When is a predicate over "source"; the node is skipped when it is false.
	When string `json:"when,omitempty"`

	// Keep is a predicate over the final "value"; it is not written when false.
	Keep string `json:"keep,omitempty"`

	// Silence drops extraction and mapping failures of this leaf instead of failing the conversion.
	Silence bool `json:"silence,omitempty"`

	// Inline writes the children into the current destination scope.
	Inline bool `json:"inline,omitempty"`

	// Each is the source path of a sequence; the node runs once per element.
	Each string `json:"each,omitempty"`

	// Item names the per-element destination of a fan-out.
	Item string `json:"item,omitempty"`

	// Attr makes XML targets write an attribute instead of a child element.
	Attr bool `json:"attr,omitempty"`

	Fields []FieldDef `json:"fields,omitempty"`
}

// ExternalName returns As, falling back to Name.
func (f FieldDef) ExternalName() string {
	if f.As != "" {
		return f.As
	}
	return f.Name
}

// SourcePath returns the source path of the field: Path, "." for inline objects, or Name.
func (f FieldDef) SourcePath() string {
	switch {
	case strings.TrimSpace(f.Path) != "":
		return f.Path
	case f.Inline:
		return "."
	default:
		return f.Name
	}
}

// ItemName returns the element name of a fan-out.
func (f FieldDef) ItemName() string {
	if f.Item != "" {
		return f.Item
	}
	return DefaultItemName
}

// IsComposite reports whether the field has children.
func (f FieldDef) IsComposite() bool {
	return len(f.Fields) > 0
}

// IsFanOut reports whether the field iterates a sequence.
func (f FieldDef) IsFanOut() bool {
	return strings.TrimSpace(f.Each) != ""
}

// HasPatch reports whether the definition post-processes document results.
func (d *Definition) HasPatch() bool {
	return len(d.patch) > 0
}
