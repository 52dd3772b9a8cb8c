package printer

import (
	"fmt"
	"io"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/cmd/output"
)

var _ output.Printer[catalog.Summary] = (*MappingPrinter)(nil)

func DefaultMappingHeader() output.WriteFunc[catalog.Summary] {
	return func(w io.Writer, count int) {
		_, _ = fmt.Fprintf(w, "Mappings (%d total):\n", count)
	}
}

type MappingPrinter struct {
	palette    Palette
	headerFunc output.WriteFunc[catalog.Summary]
	footerFunc output.WriteFunc[catalog.Summary]
}

func NewMappingPrinter(palette Palette) *MappingPrinter {
	return &MappingPrinter{
		palette:    palette,
		headerFunc: DefaultMappingHeader(),
	}
}

func (p *MappingPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *MappingPrinter) SetHeader(fn output.WriteFunc[catalog.Summary]) {
	p.headerFunc = fn
}

func (p *MappingPrinter) Item(w io.Writer, s catalog.Summary) error {
	_, _ = fmt.Fprintf(w, "  %s  %s", p.palette.Name(s.Name), p.palette.Muted(fmt.Sprintf("<%s> %d node(s)", s.Root, s.Fields)))
	if s.Patched {
		_, _ = fmt.Fprintf(w, " %s", p.palette.Marker("[patched]"))
	}
	_, _ = fmt.Fprintln(w)

	if s.Description != "" {
		_, _ = fmt.Fprintf(w, "    %s\n", s.Description)
	}
	if s.File != "" {
		_, _ = fmt.Fprintf(w, "    %s\n", p.palette.Muted(s.File))
	}

	return nil
}

func (p *MappingPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *MappingPrinter) SetFooter(fn output.WriteFunc[catalog.Summary]) {
	p.footerFunc = fn
}
