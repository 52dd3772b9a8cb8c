package printer

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Palette colours the parts of text output. The zero value is not usable; use NewPalette.
type Palette struct {
	Name   func(a ...any) string
	Kind   func(a ...any) string
	Muted  func(a ...any) string
	Marker func(a ...any) string

	Added   func(a ...any) string
	Removed func(a ...any) string
}

// NewPalette returns a palette that colours output only when enabled is true.
func NewPalette(enabled bool) Palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}

	return Palette{
		Name:   mk(color.Bold),
		Kind:   mk(color.FgCyan),
		Muted:  mk(color.FgHiBlack),
		Marker: mk(color.FgYellow),

		Added:   mk(color.FgGreen),
		Removed: mk(color.FgRed),
	}
}

// ColorEnabled reports whether w is a terminal that should receive coloured output.
// NO_COLOR and non-file writers disable colour.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
