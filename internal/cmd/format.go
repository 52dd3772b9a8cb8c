package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mozilla-ai/convtree/internal/cmd/output"
)

// OutputFormat selects how listings and descriptions are rendered.
type OutputFormat string

type OutputFormats []OutputFormat

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatTOML OutputFormat = "toml"
	FormatText OutputFormat = "text"
)

func AllowedOutputFormats() OutputFormats {
	formats := []OutputFormat{
		FormatJSON,
		FormatText,
		FormatTOML,
		FormatYAML,
	}

	slices.Sort(formats)

	return formats
}

// String converts the formats to a comma separated string.
func (f *OutputFormats) String() string {
	return joinFormats(*f)
}

// String implements fmt.Stringer and pflag.Value.
func (f *OutputFormat) String() string {
	return strings.ToLower(string(*f))
}

// Set is used by Cobra to set the format value from a string.
func (f *OutputFormat) Set(v string) error {
	parsed, err := parseFormat(v, AllowedOutputFormats())
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type is used by Cobra to get the 'type' of a format for display purposes.
func (f *OutputFormat) Type() string {
	return "format"
}

// DocumentFormat selects how converted documents are rendered.
type DocumentFormat string

type DocumentFormats []DocumentFormat

const (
	DocumentJSON DocumentFormat = output.DocumentJSON
	DocumentYAML DocumentFormat = output.DocumentYAML
	DocumentTOML DocumentFormat = output.DocumentTOML
	DocumentXML  DocumentFormat = "xml"
)

func AllowedDocumentFormats() DocumentFormats {
	formats := []DocumentFormat{
		DocumentJSON,
		DocumentTOML,
		DocumentXML,
		DocumentYAML,
	}

	slices.Sort(formats)

	return formats
}

func (f *DocumentFormats) String() string {
	return joinFormats(*f)
}

func (f *DocumentFormat) String() string {
	return strings.ToLower(string(*f))
}

func (f *DocumentFormat) Set(v string) error {
	parsed, err := parseFormat(v, AllowedDocumentFormats())
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f *DocumentFormat) Type() string {
	return "format"
}

func parseFormat[F ~string](v string, allowed []F) (F, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if string(a) == v {
			return a, nil
		}
	}

	var zero F
	return zero, fmt.Errorf("invalid format '%s', must be one of %v", v, joinFormats(allowed))
}

func joinFormats[F ~string](formats []F) string {
	out := make([]string, len(formats))
	for i := range formats {
		out[i] = strings.ToLower(string(formats[i]))
	}
	return strings.Join(out, ", ")
}

// NewHandler returns the output handler for format. Text output goes through p.
func NewHandler[T any](format OutputFormat, w io.Writer, p output.Printer[T], indent int) (output.Handler[T], error) {
	switch format {
	case FormatJSON:
		return output.NewJSONHandler[T](w, indent), nil
	case FormatYAML:
		return output.NewYAMLHandler[T](w, indent), nil
	case FormatTOML:
		return output.NewTOMLHandler[T](w, indent), nil
	case FormatText, "":
		if p == nil {
			return nil, fmt.Errorf("text output requires a printer")
		}
		return output.NewTextHandler[T](w, p), nil
	default:
		return nil, fmt.Errorf("invalid format '%s', must be one of %v", format, joinFormats(AllowedOutputFormats()))
	}
}
