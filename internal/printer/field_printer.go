package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/mozilla-ai/convtree/internal/cmd/output"
	"github.com/mozilla-ai/convtree/internal/converter"
)

var _ output.Printer[converter.FieldInfo] = (*FieldPrinter)(nil)

// FieldPrinter renders one line per node, indented by depth:
//
//	fullName (name)  extracting  [private] [filtered]  Display name
type FieldPrinter struct {
	palette    Palette
	headerFunc output.WriteFunc[converter.FieldInfo]
	footerFunc output.WriteFunc[converter.FieldInfo]
}

// NewFieldPrinter returns a FieldPrinter using palette.
func NewFieldPrinter(palette Palette) *FieldPrinter {
	return &FieldPrinter{
		palette: palette,
		footerFunc: func(w io.Writer, count int) {
			_, _ = fmt.Fprintf(w, "\n%d node(s)\n", count)
		},
	}
}

func (p *FieldPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *FieldPrinter) SetHeader(fn output.WriteFunc[converter.FieldInfo]) {
	p.headerFunc = fn
}

func (p *FieldPrinter) Item(w io.Writer, fi converter.FieldInfo) error {
	var b strings.Builder

	b.WriteString(strings.Repeat("  ", fi.Depth))
	b.WriteString(p.palette.Name(fi.External))
	if fi.Internal != fi.External {
		b.WriteString(" ")
		b.WriteString(p.palette.Muted("(" + fi.Internal + ")"))
	}
	b.WriteString("  ")
	b.WriteString(p.palette.Kind(fi.Kind))

	if !fi.Public {
		b.WriteString(" ")
		b.WriteString(p.palette.Marker("[private]"))
	}
	if fi.Filter {
		b.WriteString(" ")
		b.WriteString(p.palette.Marker("[filtered]"))
	}
	if fi.Description != "" {
		b.WriteString("  ")
		b.WriteString(p.palette.Muted(fi.Description))
	}

	_, err := fmt.Fprintln(w, b.String())
	return err
}

func (p *FieldPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *FieldPrinter) SetFooter(fn output.WriteFunc[converter.FieldInfo]) {
	p.footerFunc = fn
}
