package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLHandler writes YAML for both data and errors, honoring struct tags.
type YAMLHandler[T any] struct {
	out    io.Writer
	indent int
}

// NewYAMLHandler constructs a new YAMLHandler for items of type T.
// indentSpaces controls the number of spaces to indent nested nodes.
func NewYAMLHandler[T any](w io.Writer, indentSpaces int) *YAMLHandler[T] {
	return &YAMLHandler[T]{
		out:    w,
		indent: indentSpaces,
	}
}

// Writer returns the underlying io.Writer where YAML will be written.
func (h *YAMLHandler[T]) Writer() io.Writer {
	return h.out
}

// HandleResult marshals the given item under a "result" key to YAML.
func (h *YAMLHandler[T]) HandleResult(item T) error {
	return h.encode(ResultPayload[T]{Result: item})
}

// HandleResults marshals the given items under a "results" key to YAML.
func (h *YAMLHandler[T]) HandleResults(items ...T) error {
	return h.encode(ResultsPayload[T]{Results: items})
}

// HandleError marshals the given error string under an "error" key to YAML.
func (h *YAMLHandler[T]) HandleError(err error) error {
	return h.encode(ErrorPayload{Error: err.Error()})
}

func (h *YAMLHandler[T]) encode(payload any) error {
	enc := yaml.NewEncoder(h.out)
	defer func(enc *yaml.Encoder) {
		// Flushes buffered output.
		_ = enc.Close()
	}(enc)

	if h.indent > 0 {
		enc.SetIndent(h.indent)
	}
	return enc.Encode(payload)
}
