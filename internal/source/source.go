package source

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/mozilla-ai/convtree/internal/field"
)

// Entry is the element produced when iterating a map.
type Entry struct {
	Key   string `json:"key"   yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// Extractor returns an extractor that resolves p against the source, for use with converter.ExtractWith.
func (p Path) Extractor() func(field.Field, any) (any, bool, error) {
	return func(_ field.Field, src any) (any, bool, error) {
		return p.Lookup(src)
	}
}

// Navigator returns a source mapper that resolves p against the source, for use with converter.MapSource.
// Absent values are returned as nil.
func (p Path) Navigator() func(any) (any, error) {
	return func(src any) (any, error) {
		v, ok, err := p.Lookup(src)
		if err != nil || !ok {
			return nil, err
		}
		return v, nil
	}
}

// ByField is an extractor that resolves the internal name of the field as a path.
func ByField(f field.Field, src any) (any, bool, error) {
	return Lookup(src, f.InternalName())
}

// Elements returns the elements of v in a stable order.
// Slices and arrays yield their items, maps yield an Entry per key sorted by key, and iter.Seq[any]
// values are returned as is. A nil value yields a nil sequence.
func Elements(v any) (iter.Seq[any], error) {
	if isNil(v) {
		return nil, nil
	}
	if seq, ok := v.(iter.Seq[any]); ok {
		return seq, nil
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, nil
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := range rv.Len() {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, nil
	case reflect.Map:
		entries := make([]Entry, 0, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			entries = append(entries, Entry{
				Key:   fmt.Sprint(it.Key().Interface()),
				Value: it.Value().Interface(),
			})
		}
		slices.SortFunc(entries, func(a, b Entry) int {
			return cmp.Compare(a.Key, b.Key)
		})
		return func(yield func(any) bool) {
			for _, e := range entries {
				if !yield(e) {
					return
				}
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotIterable, v)
	}
}

// Iterate resolves p against the source and returns the elements found there.
// It is meant for converter.IterateOn.
func (p Path) Iterate() func(any) (iter.Seq[any], error) {
	return func(src any) (iter.Seq[any], error) {
		v, ok, err := p.Lookup(src)
		if err != nil || !ok {
			return nil, err
		}
		return Elements(v)
	}
}
