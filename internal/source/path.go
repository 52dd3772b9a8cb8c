// Package source resolves dotted paths such as "contact.phones[0].number" against arbitrary Go values:
// decoded JSON or YAML documents, structs and slices.
package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPath indicates that a path expression could not be parsed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrUnknownField indicates that a struct has no field or getter matching a path key.
	ErrUnknownField = errors.New("unknown field")

	// ErrNotTraversable indicates that a path continues below a scalar value.
	ErrNotTraversable = errors.New("value is not traversable")

	// ErrNotIterable indicates that a value cannot be iterated.
	ErrNotIterable = errors.New("value is not iterable")
)

// Self is the path that resolves to the source itself.
const Self = "."

type step struct {
	key   string
	index int
}

func (s step) isIndex() bool {
	return s.key == ""
}

func (s step) String() string {
	if s.isIndex() {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.key
}

// Path is a parsed path expression. The zero value resolves to the source itself.
type Path struct {
	raw   string
	steps []step
}

// Parse parses a path expression: dot separated keys, each optionally followed by [n] indexes.
// An empty expression or "." refers to the source itself.
func Parse(expr string) (Path, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == Self {
		return Path{raw: Self}, nil
	}

	var steps []step
	for _, part := range strings.Split(expr, ".") {
		if part == "" {
			return Path{}, fmt.Errorf("%w: '%s': empty segment", ErrInvalidPath, expr)
		}

		key, rest, _ := strings.Cut(part, "[")
		if key != "" {
			steps = append(steps, step{key: key})
		}
		if rest == "" && !strings.Contains(part, "[") {
			continue
		}

		// rest holds "n]" or "n][m]".
		for _, idx := range strings.Split("["+rest, "[")[1:] {
			n, ok := strings.CutSuffix(idx, "]")
			if !ok {
				return Path{}, fmt.Errorf("%w: '%s': unterminated index", ErrInvalidPath, expr)
			}
			i, err := strconv.Atoi(n)
			if err != nil || i < 0 {
				return Path{}, fmt.Errorf("%w: '%s': index '%s' must be a non-negative integer", ErrInvalidPath, expr, n)
			}
			steps = append(steps, step{index: i})
		}
	}

	return Path{raw: expr, steps: steps}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the expression the path was parsed from.
func (p Path) String() string {
	if p.raw == "" {
		return Self
	}
	return p.raw
}

// IsSelf reports whether the path resolves to the source itself.
func (p Path) IsSelf() bool {
	return len(p.steps) == 0
}

// Lookup resolves the path against src.
// It returns false when a map key is missing, an index is out of range or a nil value is reached.
func (p Path) Lookup(src any) (any, bool, error) {
	cur := src
	for i, s := range p.steps {
		if isNil(cur) {
			return nil, false, nil
		}

		next, ok, err := resolve(cur, s)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", p.prefix(i), err)
		}
		if !ok {
			return nil, false, nil
		}
		cur = next
	}

	if isNil(cur) {
		return nil, false, nil
	}
	return cur, true, nil
}

// prefix renders the steps up to and including i.
func (p Path) prefix(i int) string {
	var sb strings.Builder
	for j, s := range p.steps[:i+1] {
		if j > 0 && !s.isIndex() {
			sb.WriteByte('.')
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Lookup parses expr and resolves it against src.
func Lookup(src any, expr string) (any, bool, error) {
	p, err := Parse(expr)
	if err != nil {
		return nil, false, err
	}
	return p.Lookup(src)
}
