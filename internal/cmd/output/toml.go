package output

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// TOMLHandler writes TOML for both data and errors, honoring `toml` struct tags.
type TOMLHandler[T any] struct {
	out    io.Writer
	indent string
}

// NewTOMLHandler constructs a TOMLHandler for items of type T.
// indentSpaces controls the indentation of nested tables.
func NewTOMLHandler[T any](w io.Writer, indentSpaces int) *TOMLHandler[T] {
	return &TOMLHandler[T]{
		out:    w,
		indent: strings.Repeat(" ", indentSpaces),
	}
}

// Writer returns the underlying io.Writer where TOML will be written.
func (h *TOMLHandler[T]) Writer() io.Writer {
	return h.out
}

// HandleResult encodes the given item as a "result" table.
func (h *TOMLHandler[T]) HandleResult(item T) error {
	return h.encode(ResultPayload[T]{Result: item})
}

// HandleResults encodes the given items as a "results" array of tables.
func (h *TOMLHandler[T]) HandleResults(items ...T) error {
	return h.encode(ResultsPayload[T]{Results: items})
}

// HandleError encodes the given error string under an "error" key.
func (h *TOMLHandler[T]) HandleError(err error) error {
	return h.encode(ErrorPayload{Error: err.Error()})
}

func (h *TOMLHandler[T]) encode(payload any) error {
	enc := toml.NewEncoder(h.out)
	enc.Indent = h.indent
	return enc.Encode(payload)
}
