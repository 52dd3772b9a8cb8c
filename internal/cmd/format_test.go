package cmd

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/cmd/output"
)

func TestAllowedOutputFormats(t *testing.T) {
	t.Parallel()

	want := OutputFormats{FormatJSON, FormatText, FormatTOML, FormatYAML}
	got := AllowedOutputFormats()

	require.Equal(t, want, got)
}

func TestOutputFormats_String(t *testing.T) {
	t.Parallel()

	f := AllowedOutputFormats()
	// Should join lower-case names in lexicographical order
	want := "json, text, toml, yaml"
	got := f.String()

	require.Equal(t, want, got)
}

func TestOutputFormat_StringAndType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fmt  OutputFormat
		want string
	}{
		{
			"JSON",
			FormatJSON,
			"json",
		},
		{
			"Text",
			FormatText,
			"text",
		},
		{
			"YAML",
			FormatYAML,
			"yaml",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.fmt.String())
			require.Equal(t, "format", tc.fmt.Type())
		})
	}
}

func TestOutputFormat_Set_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  OutputFormat
	}{
		{
			"json",
			"json",
			FormatJSON,
		},
		{
			"text",
			"text",
			FormatText,
		},
		{
			"yaml",
			"yaml",
			FormatYAML,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var f OutputFormat
			err := f.Set(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, f)
		})
	}
}

func TestOutputFormat_Set_Invalid(t *testing.T) {
	t.Parallel()

	invalid := "xml"
	var f OutputFormat
	err := f.Set(invalid)
	require.Error(t, err)
	// error message should mention invalid value and allowed list
	require.ErrorContains(t, err, fmt.Sprintf("invalid format '%s'", invalid))
	allowed := AllowedOutputFormats()
	require.Contains(t, err.Error(), allowed.String())
}

func TestDocumentFormat_Set(t *testing.T) {
	t.Parallel()

	require.Equal(t, "json, toml, xml, yaml", func() string {
		f := AllowedDocumentFormats()
		return f.String()
	}())

	tests := []struct {
		input   string
		want    DocumentFormat
		wantErr bool
	}{
		{input: "json", want: DocumentJSON},
		{input: " XML ", want: DocumentXML},
		{input: "toml", want: DocumentTOML},
		{input: "yaml", want: DocumentYAML},
		{input: "text", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			var f DocumentFormat
			err := f.Set(tc.input)
			if tc.wantErr {
				require.ErrorContains(t, err, "invalid format 'text'")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, f)
			require.Equal(t, "format", f.Type())
		})
	}
}

type nopPrinter struct{}

func (nopPrinter) Header(io.Writer, int)              {}
func (nopPrinter) SetHeader(output.WriteFunc[string]) {}
func (nopPrinter) Footer(io.Writer, int)              {}
func (nopPrinter) SetFooter(output.WriteFunc[string]) {}

func (nopPrinter) Item(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format OutputFormat
		want   any
	}{
		{format: FormatJSON, want: &output.JSONHandler[string]{}},
		{format: FormatYAML, want: &output.YAMLHandler[string]{}},
		{format: FormatTOML, want: &output.TOMLHandler[string]{}},
		{format: FormatText, want: &output.TextHandler[string]{}},
	}

	for _, tc := range tests {
		t.Run(string(tc.format), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			h, err := NewHandler[string](tc.format, &buf, nopPrinter{}, 2)
			require.NoError(t, err)
			require.IsType(t, tc.want, h)
			require.Equal(t, &buf, h.Writer())
		})
	}

	_, err := NewHandler[string](FormatText, io.Discard, nil, 0)
	require.ErrorContains(t, err, "requires a printer")

	_, err = NewHandler[string]("csv", io.Discard, nopPrinter{}, 0)
	require.ErrorContains(t, err, "invalid format 'csv'")
}
