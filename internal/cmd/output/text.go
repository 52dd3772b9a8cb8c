package output

import (
	"io"
)

// TextHandler renders items for humans through a Printer. Errors are returned unchanged
// so the command can report them.
type TextHandler[T any] struct {
	out     io.Writer
	printer Printer[T]
}

// NewTextHandler constructs a TextHandler writing to w with p.
func NewTextHandler[T any](w io.Writer, p Printer[T]) *TextHandler[T] {
	return &TextHandler[T]{
		out:     w,
		printer: p,
	}
}

// Writer returns the underlying io.Writer where text will be written.
func (h *TextHandler[T]) Writer() io.Writer {
	return h.out
}

// HandleResult prints a single item, without header or footer.
func (h *TextHandler[T]) HandleResult(item T) error {
	return h.printer.Item(h.out, item)
}

func (h *TextHandler[T]) HandleResults(items ...T) error {
	if len(items) == 0 {
		_, _ = io.WriteString(h.out, "No items found\n")
		return nil
	}

	h.printer.Header(h.out, len(items))

	for _, it := range items {
		if err := h.printer.Item(h.out, it); err != nil {
			return err
		}
	}

	h.printer.Footer(h.out, len(items))

	return nil
}

func (h *TextHandler[T]) HandleError(err error) error {
	return err
}
