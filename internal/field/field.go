// Package field defines the identity used by every converter node: the name a value is read from
// in the source and the name it is written under in the destination.
package field

import "fmt"

// Field is an immutable identity pair. InternalName addresses source data, ExternalName addresses
// the destination. Optional metadata (description, public and filter flags) is carried for tooling
// and does not take part in equality.
//
// Field is a small value type and is safe to copy and share across goroutines.
type Field struct {
	internal    string
	external    string
	description string
	private     bool
	filter      bool
}

// Key is the comparable identity of a Field, suitable for map keys.
type Key struct {
	Internal string
	External string
}

// Of returns a Field whose external name defaults to the internal name.
func Of(name string) Field {
	return Field{internal: name, external: name}
}

// New returns a Field with explicit internal and external names.
func New(internal string, external string) Field {
	return Field{internal: internal, external: external}
}

// InternalName returns the name used to address the source.
func (f Field) InternalName() string {
	return f.internal
}

// ExternalName returns the name used to address the destination.
func (f Field) ExternalName() string {
	return f.external
}

// Description returns the optional human-readable description.
func (f Field) Description() string {
	return f.description
}

// IsPublic reports whether the field is part of the published output contract.
// Fields are public unless marked otherwise with WithPublic(false).
func (f Field) IsPublic() bool {
	return !f.private
}

// HasFilter reports whether the field is flagged as usable for filtering by downstream tooling.
func (f Field) HasFilter() bool {
	return f.filter
}

// WithDescription returns a copy of the field with the given description.
func (f Field) WithDescription(description string) Field {
	f.description = description
	return f
}

// WithPublic returns a copy of the field with the public flag set.
func (f Field) WithPublic(public bool) Field {
	f.private = !public
	return f
}

// WithFilter returns a copy of the field with the filter flag set.
func (f Field) WithFilter(filter bool) Field {
	f.filter = filter
	return f
}

// Key returns the comparable identity of the field.
func (f Field) Key() Key {
	return Key{Internal: f.internal, External: f.external}
}

// Equal reports whether both names of the fields match.
func (f Field) Equal(other Field) bool {
	return f.Key() == other.Key()
}

// IsZero reports whether both names are empty.
func (f Field) IsZero() bool {
	return f.internal == "" && f.external == ""
}

// Marker returns a synthetic identifier for the field, used to attribute failures to a specific
// node in trees made of otherwise identical generic nodes.
func (f Field) Marker() string {
	return fmt.Sprintf("from_%s_to_%s", f.internal, f.external)
}

// String implements fmt.Stringer.
func (f Field) String() string {
	if f.internal == f.external {
		return f.internal
	}
	return fmt.Sprintf("%s->%s", f.internal, f.external)
}
