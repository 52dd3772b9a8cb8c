package mapping

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Decorator is a value-preserving transformation. Decorators receive present values only.
type Decorator func(any) any

// Mapper is a fallible transformation of the value.
type Mapper func(any) (any, error)

// DecoratorFactory builds a Decorator from the argument written after the colon, e.g. ";" in "split:;".
type DecoratorFactory func(arg string) (Decorator, error)

// MapperFactory builds a Mapper from the argument written after the colon, e.g. a time layout.
type MapperFactory func(arg string) (Mapper, error)

// Functions holds the named decorators and mappers a definition may refer to.
type Functions struct {
	decorators map[string]DecoratorFactory
	mappers    map[string]MapperFactory
}

// DefaultFunctions returns a registry holding the built-in decorators and mappers.
func DefaultFunctions() *Functions {
	return &Functions{
		decorators: map[string]DecoratorFactory{
			"upper":   stringDecorator(strings.ToUpper),
			"lower":   stringDecorator(strings.ToLower),
			"trim":    stringDecorator(strings.TrimSpace),
			"string":  noArg(func(v any) any { return cast.ToString(v) }),
			"split":   split,
			"join":    join,
			"default": defaultValue,
		},
		mappers: map[string]MapperFactory{
			"int":   noArgMapper(func(v any) (any, error) { return cast.ToInt64E(v) }),
			"float": noArgMapper(func(v any) (any, error) { return cast.ToFloat64E(v) }),
			"bool":  noArgMapper(func(v any) (any, error) { return cast.ToBoolE(v) }),
			"time":  timestamp,
			"json":  noArgMapper(decodeJSON),
		},
	}
}

// RegisterDecorator adds or replaces a named decorator.
func (f *Functions) RegisterDecorator(name string, factory DecoratorFactory) {
	f.decorators[name] = factory
}

// RegisterMapper adds or replaces a named mapper.
func (f *Functions) RegisterMapper(name string, factory MapperFactory) {
	f.mappers[name] = factory
}

// DecoratorNames returns the registered decorator names, sorted.
func (f *Functions) DecoratorNames() []string {
	return slices.Sorted(maps.Keys(f.decorators))
}

// MapperNames returns the registered mapper names, sorted.
func (f *Functions) MapperNames() []string {
	return slices.Sorted(maps.Keys(f.mappers))
}

// Decorator resolves a reference such as "trim" or "split:;".
func (f *Functions) Decorator(ref string) (Decorator, error) {
	name, arg := splitRef(ref)
	factory, ok := f.decorators[name]
	if !ok {
		return nil, fmt.Errorf("%w: decorator '%s'", ErrUnknownFunction, name)
	}
	d, err := factory(arg)
	if err != nil {
		return nil, fmt.Errorf("decorator '%s': %w", ref, err)
	}
	return d, nil
}

// Mapper resolves a reference such as "int" or "time:2006-01-02".
func (f *Functions) Mapper(ref string) (Mapper, error) {
	name, arg := splitRef(ref)
	factory, ok := f.mappers[name]
	if !ok {
		return nil, fmt.Errorf("%w: mapper '%s'", ErrUnknownFunction, name)
	}
	m, err := factory(arg)
	if err != nil {
		return nil, fmt.Errorf("mapper '%s': %w", ref, err)
	}
	return m, nil
}

func splitRef(ref string) (name string, arg string) {
	name, arg, _ = strings.Cut(ref, ":")
	return strings.TrimSpace(name), arg
}

func noArg(d Decorator) DecoratorFactory {
	return func(arg string) (Decorator, error) {
		if arg != "" {
			return nil, fmt.Errorf("unexpected argument '%s'", arg)
		}
		return d, nil
	}
}

func noArgMapper(m Mapper) MapperFactory {
	return func(arg string) (Mapper, error) {
		if arg != "" {
			return nil, fmt.Errorf("unexpected argument '%s'", arg)
		}
		return m, nil
	}
}

// stringDecorator applies fn to string values and leaves other values untouched.
func stringDecorator(fn func(string) string) DecoratorFactory {
	return noArg(func(v any) any {
		if s, ok := v.(string); ok {
			return fn(s)
		}
		return v
	})
}

func separator(arg string) string {
	if arg == "" {
		return ","
	}
	return arg
}

func split(arg string) (Decorator, error) {
	sep := separator(arg)
	return func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		parts := strings.Split(s, sep)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out
	}, nil
}

func join(arg string) (Decorator, error) {
	sep := separator(arg)
	return func(v any) any {
		if k := reflect.ValueOf(v).Kind(); k != reflect.Slice && k != reflect.Array {
			return v
		}
		items, err := cast.ToStringSliceE(v)
		if err != nil {
			return v
		}
		return strings.Join(items, sep)
	}, nil
}

// defaultValue replaces empty strings with arg.
func defaultValue(arg string) (Decorator, error) {
	return func(v any) any {
		if s, ok := v.(string); ok && s == "" {
			return arg
		}
		return v
	}, nil
}

// timestamp parses the value as a time and renders it in RFC 3339.
func timestamp(layout string) (Mapper, error) {
	return func(v any) (any, error) {
		if layout == "" {
			t, err := cast.ToTimeE(v)
			if err != nil {
				return nil, err
			}
			return t.Format(time.RFC3339), nil
		}

		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return nil, err
		}
		return t.Format(time.RFC3339), nil
	}, nil
}

func decodeJSON(v any) (any, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
