package filter

import (
	"github.com/mozilla-ai/convtree/internal/converter"
)

// Filter keys understood by Fields.
const (
	KeyKind   = "kind"
	KeyName   = "name"
	KeyPath   = "path"
	KeyPublic = "public"
	KeyFilter = "filter"
	KeyDepth  = "depth"
)

// FieldOptions returns the matchers for converter.FieldInfo values.
// name matches either the internal or the external name as a substring; path matches as a substring.
func FieldOptions() []Option[converter.FieldInfo] {
	return []Option[converter.FieldInfo]{
		WithMatcher(KeyKind, Equals(func(fi converter.FieldInfo) string { return fi.Kind })),
		WithMatcher(KeyName, PartialAny(
			func(fi converter.FieldInfo) string { return fi.Internal },
			func(fi converter.FieldInfo) string { return fi.External },
		)),
		WithMatcher(KeyPath, Partial(func(fi converter.FieldInfo) string { return fi.Path })),
		WithMatcher(KeyPublic, EqualsBool(func(fi converter.FieldInfo) bool { return fi.Public })),
		WithMatcher(KeyFilter, EqualsBool(func(fi converter.FieldInfo) bool { return fi.Filter })),
		WithMatcher(KeyDepth, EqualsInt(func(fi converter.FieldInfo) int { return fi.Depth })),
		WithStrictKeys[converter.FieldInfo](),
	}
}

// Fields returns the infos matching every filter. Unknown filter keys are an error.
func Fields(infos []converter.FieldInfo, filters map[string]string) ([]converter.FieldInfo, error) {
	return Filter(infos, filters, FieldOptions()...)
}
