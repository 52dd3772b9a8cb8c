package filter

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Predicate defines a function that returns true if the given item matches a condition.
type Predicate[T any] func(item T, filterValue string) bool

// Options holds configuration for filtering behavior.
type Options[T any] struct {
	matchers map[string]Predicate[T]
	strict   bool
}

// Option configures filter Options.
type Option[T any] func(*Options[T]) error

func defaultOptions[T any]() Options[T] {
	return Options[T]{
		matchers: make(map[string]Predicate[T]),
	}
}

// NormalizeString can be used to normalize a string value for filtering/comparison.
// The value is made lowercase and has any leading and/or trailing whitespace removed.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NewOptions creates filter Options with defaults and applies given options.
func NewOptions[T any](opt ...Option[T]) (Options[T], error) {
	opts := defaultOptions[T]()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options[T]{}, err
		}
	}
	return opts, nil
}

// StringValueProvider extracts a single string value from an item of type T.
type StringValueProvider[T any] func(T) string

// BoolValueProvider extracts a single boolean value from an item of type T.
type BoolValueProvider[T any] func(T) bool

// IntValueProvider extracts a single integer value from an item of type T.
type IntValueProvider[T any] func(T) int

// Equals returns a Predicate that checks if the value extracted by the provider
// exactly matches the filter value (case-insensitive, normalized).
//
// Example:
//
// predicate := Equals(kindOf)
// result := predicate(info, "fanout") // true if info.Kind equals "fanout"
func Equals[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return NormalizeString(provider(item)) == NormalizeString(val)
	}
}

// EqualsBool returns a Predicate that checks if the value extracted by the provider
// matches the parsed boolean representation of the filter value.
// Unparseable filter values never match.
func EqualsBool[T any](provider BoolValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		parsed, err := strconv.ParseBool(NormalizeString(val))
		if err != nil {
			return false
		}
		return provider(item) == parsed
	}
}

// EqualsInt returns a Predicate that checks if the value extracted by the provider equals the
// parsed integer filter value. Unparseable filter values never match.
func EqualsInt[T any](provider IntValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		parsed, err := strconv.Atoi(NormalizeString(val))
		if err != nil {
			return false
		}
		return provider(item) == parsed
	}
}

// Partial returns a Predicate that checks if the value extracted by the provider
// contains the filter value as a substring (case-insensitive, normalized).
//
// Example:
//
// predicate := Partial(pathOf)
// result := predicate(info, "address") // true if info.Path contains "address"
func Partial[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return strings.Contains(NormalizeString(provider(item)), NormalizeString(val))
	}
}

// PartialAny returns a Predicate that checks if *ANY* of the values from the supplied providers
// contains the filter value (case-insensitive, normalized).
func PartialAny[T any](providers ...StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		q := NormalizeString(val)
		for _, p := range providers {
			if strings.Contains(NormalizeString(p(item)), q) {
				return true
			}
		}
		return false
	}
}

// WithMatcher adds or overrides a matcher.
func WithMatcher[T any](key string, value Predicate[T]) Option[T] {
	return func(o *Options[T]) error {
		k := NormalizeString(key)
		if k == "" {
			return fmt.Errorf("matcher key cannot be empty")
		}
		if value == nil {
			return fmt.Errorf("matcher '%s' cannot be nil", k)
		}
		o.matchers[k] = value
		return nil
	}
}

// WithStrictKeys makes Match return an error for filter keys that have no matcher.
// Without it, unknown keys are ignored.
func WithStrictKeys[T any]() Option[T] {
	return func(o *Options[T]) error {
		o.strict = true
		return nil
	}
}

// Keys returns the normalized keys that have a matcher, sorted.
func (o Options[T]) Keys() []string {
	return slices.Sorted(maps.Keys(o.matchers))
}

// Match applies the provided filters to an item of type T using the configured matchers.
// All filters must match.
func Match[T any](item T, filters map[string]string, opts ...Option[T]) (bool, error) {
	filterOpts, err := NewOptions(opts...)
	if err != nil {
		return false, err
	}
	return filterOpts.match(item, filters)
}

func (o Options[T]) match(item T, filters map[string]string) (bool, error) {
	for key, val := range filters {
		k := NormalizeString(key)
		if k == "" {
			continue
		}

		matcher, ok := o.matchers[k]
		if !ok {
			if o.strict {
				return false, fmt.Errorf("unsupported filter key '%s', must be one of: %s", k, strings.Join(o.Keys(), ", "))
			}
			continue
		}
		if !matcher(item, val) {
			return false, nil
		}
	}
	return true, nil
}

// Filter returns the items matching every filter, keeping their order.
func Filter[T any](items []T, filters map[string]string, opts ...Option[T]) ([]T, error) {
	filterOpts, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := filterOpts.match(item, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// ParseFilters turns "key=value" pairs into a filter map. Later pairs override earlier ones.
func ParseFilters(pairs []string) (map[string]string, error) {
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || NormalizeString(k) == "" {
			return nil, fmt.Errorf("invalid filter '%s', expected key=value", pair)
		}
		filters[NormalizeString(k)] = strings.TrimSpace(v)
	}
	return filters, nil
}

// MatchRequestedSlice returns the values from requested that are found in available, trimmed and sorted.
// Comparison is case-sensitive. An empty request selects everything available.
// It returns an error naming any requested value that is missing.
func MatchRequestedSlice(requested []string, available []string) ([]string, error) {
	availableSet := make(map[string]struct{}, len(available))
	for _, v := range available {
		availableSet[strings.TrimSpace(v)] = struct{}{}
	}

	if len(requested) == 0 {
		return slices.Sorted(maps.Keys(availableSet)), nil
	}

	requestedSet := make(map[string]struct{}, len(requested))
	var missing []string

	for _, v := range requested {
		n := strings.TrimSpace(v)
		requestedSet[n] = struct{}{}
		if _, ok := availableSet[n]; !ok {
			missing = append(missing, v)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("missing values: %s", strings.Join(missing, ", "))
	}

	return slices.Sorted(maps.Keys(requestedSet)), nil
}
