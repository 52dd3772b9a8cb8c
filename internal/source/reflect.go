package source

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeFor[error]()

// resolve applies one step to v, which is not nil.
func resolve(v any, s step) (any, bool, error) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, false, nil
	}

	if s.isIndex() {
		return index(rv, s.index)
	}

	switch rv.Kind() {
	case reflect.Map:
		return mapKey(rv, s.key)
	case reflect.Struct:
		return structKey(rv, reflect.ValueOf(v), s.key)
	default:
		if out, ok, err := getter(reflect.ValueOf(v), s.key); ok || err != nil {
			return out, ok, err
		}
		return nil, false, fmt.Errorf("%w: cannot read '%s' from %s", ErrNotTraversable, s.key, rv.Type())
	}
}

func index(rv reflect.Value, i int) (any, bool, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if i >= rv.Len() {
			return nil, false, nil
		}
		return rv.Index(i).Interface(), true, nil
	case reflect.String:
		return nil, false, fmt.Errorf("%w: cannot index string", ErrNotTraversable)
	default:
		return nil, false, fmt.Errorf("%w: cannot index %s", ErrNotTraversable, rv.Type())
	}
}

func mapKey(rv reflect.Value, key string) (any, bool, error) {
	kt := rv.Type().Key()

	var k reflect.Value
	switch {
	case kt.Kind() == reflect.String:
		k = reflect.ValueOf(key).Convert(kt)
	case kt.Kind() == reflect.Interface:
		k = reflect.ValueOf(key)
	default:
		return nil, false, fmt.Errorf("%w: map keys of type %s are not supported", ErrNotTraversable, kt)
	}

	out := rv.MapIndex(k)
	if !out.IsValid() {
		return nil, false, nil
	}
	return out.Interface(), true, nil
}

// structKey matches key against, in order: the Go field name, the json tag name, a case-insensitive
// field name, then a zero-argument getter method (Key or GetKey).
func structKey(rv reflect.Value, orig reflect.Value, key string) (any, bool, error) {
	t := rv.Type()

	if sf, ok := t.FieldByName(key); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index).Interface(), true, nil
	}

	var folded []int
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if name, _, _ := strings.Cut(sf.Tag.Get("json"), ","); name == key {
			return rv.Field(i).Interface(), true, nil
		}
		if folded == nil && strings.EqualFold(sf.Name, key) {
			folded = sf.Index
		}
	}
	if folded != nil {
		return rv.FieldByIndex(folded).Interface(), true, nil
	}

	if out, ok, err := getter(orig, key); ok || err != nil {
		return out, ok, err
	}

	return nil, false, fmt.Errorf("%w: %s has no field '%s'", ErrUnknownField, t, key)
}

// getter calls a zero-argument method named Key or GetKey. The method may return (T) or (T, error).
func getter(v reflect.Value, key string) (any, bool, error) {
	name := exported(key)
	for _, candidate := range []string{name, "Get" + name} {
		m := v.MethodByName(candidate)
		if !m.IsValid() {
			continue
		}

		mt := m.Type()
		if mt.NumIn() != 0 {
			continue
		}

		switch {
		case mt.NumOut() == 1:
			return m.Call(nil)[0].Interface(), true, nil
		case mt.NumOut() == 2 && mt.Out(1).Implements(errorType):
			out := m.Call(nil)
			if err, _ := out[1].Interface().(error); err != nil {
				return nil, false, fmt.Errorf("%s(): %w", candidate, err)
			}
			return out[0].Interface(), true, nil
		}
	}
	return nil, false, nil
}

func exported(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToUpper(r)) + key[size:]
}

// indirect dereferences pointers and interfaces. It returns the zero Value when it reaches nil.
func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
