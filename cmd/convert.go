package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/cmd/output"
	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/perms"
	"github.com/mozilla-ai/convtree/internal/printer"
	"github.com/mozilla-ai/convtree/internal/sink/docsink"
)

const (
	flagFormat = "format"
	flagIndent = "indent"
)

// ConvertCmd represents the 'convert' command.
type ConvertCmd struct {
	*cmd.BaseCmd
	Format         cmd.DocumentFormat
	Indent         int
	Output         string
	Expect         string
	cfgLoader      config.Loader
	catalogBuilder catalog.Builder
	color          *bool
}

// NewConvertCmd creates a newly configured (Cobra) command.
func NewConvertCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ConvertCmd{
		BaseCmd:        baseCmd,
		cfgLoader:      opts.ConfigLoader,
		catalogBuilder: opts.CatalogBuilder,
		color:          opts.Color,
	}

	cobraCommand := &cobra.Command{
		Use:   "convert <mapping-name> [input...]",
		Short: "Converts input documents with a mapping.",
		Long:  c.longDescription(),
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}

	allowed := cmd.AllowedDocumentFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		flagFormat,
		"Specify the document format (one of: "+allowed.String()+"), defaults to the config output format",
	)

	cobraCommand.Flags().IntVar(
		&c.Indent,
		flagIndent,
		0,
		"Indentation width, defaults to the config output indent",
	)

	cobraCommand.Flags().StringVarP(
		&c.Output,
		"output",
		"o",
		"",
		"Optional, write the document to this file instead of stdout",
	)

	cobraCommand.Flags().StringVar(
		&c.Expect,
		"expect",
		"",
		"Optional, compare the rendered document with this file and print a diff when they differ",
	)

	return cobraCommand, nil
}

func (c *ConvertCmd) longDescription() string {
	return `Converts input documents with a mapping.

Inputs are JSON or YAML files, read from stdin when none are given. A file holding several
documents (a JSON stream or a multi-document YAML file) or a top-level array contributes one
input per element. Inputs are converted concurrently.

A single input renders as one document. Several inputs render as an object with a 'results' list,
or as consecutive documents for XML.`
}

func (c *ConvertCmd) run(cobraCmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("mapping name is required and cannot be empty")
	}

	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	if !cobraCmd.Flags().Changed(flagFormat) {
		if err := c.Format.Set(cfg.Output.FormatOrDefault()); err != nil {
			return err
		}
	}
	if !cobraCmd.Flags().Changed(flagIndent) {
		c.Indent = cfg.Output.IndentOrDefault()
	}
	if c.Indent < 0 {
		return fmt.Errorf("indent cannot be negative")
	}

	inputs, err := readInputs(cobraCmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}

	cat, err := c.catalogBuilder.BuildCatalog(cfg)
	if err != nil {
		return err
	}

	logger.Debug("Converting", "mapping", name, "inputs", len(inputs), "format", c.Format.String())

	rendered, err := c.render(cobraCmd.Context(), cat, name, inputs)
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := os.WriteFile(c.Output, []byte(rendered), perms.RegularFile); err != nil {
			return fmt.Errorf("error writing output file '%s': %w", c.Output, err)
		}
	}

	out := cobraCmd.OutOrStdout()

	if c.Expect != "" {
		return c.compare(out, rendered)
	}

	if c.Output == "" {
		_, err := fmt.Fprint(out, rendered)
		return err
	}

	return nil
}

func (c *ConvertCmd) render(ctx context.Context, cat *catalog.Catalog, name string, inputs []any) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if c.Format == cmd.DocumentXML {
		docs, err := cat.ConvertAllXML(ctx, name, inputs, c.Indent)
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		for _, doc := range docs {
			sb.WriteString(strings.TrimRight(doc, "\n"))
			sb.WriteString("\n")
		}
		return sb.String(), nil
	}

	results, err := cat.ConvertAll(ctx, name, inputs)
	if err != nil {
		return "", err
	}

	var doc any
	if len(results) == 1 {
		doc = results[0]
	} else {
		list := docsink.NewArray()
		for _, r := range results {
			if err := list.Append(r); err != nil {
				return "", err
			}
		}
		wrapped := docsink.NewObject()
		if err := wrapped.Set("results", list); err != nil {
			return "", err
		}
		doc = wrapped
	}

	var buf bytes.Buffer
	if err := output.WriteDocument(&buf, c.Format.String(), c.Indent, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *ConvertCmd) compare(w io.Writer, rendered string) error {
	expected, err := os.ReadFile(c.Expect)
	if err != nil {
		return fmt.Errorf("error reading expected file '%s': %w", c.Expect, err)
	}

	want := strings.TrimRight(string(expected), "\n") + "\n"
	got := strings.TrimRight(rendered, "\n") + "\n"

	diff := printer.Diff(want, got, palette(w, c.color))
	if diff == "" {
		_, err := fmt.Fprintf(w, "✓ Output matches '%s'\n", c.Expect)
		return err
	}

	if _, err := fmt.Fprint(w, diff); err != nil {
		return err
	}
	return fmt.Errorf("output differs from '%s'", c.Expect)
}

// readInputs decodes the documents in each file, or in stdin when no paths are given.
func readInputs(stdin io.Reader, paths []string) ([]any, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("error reading stdin: %w", err)
		}
		return decodeInputs("stdin", data, "")
	}

	var inputs []any
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading input file '%s': %w", path, err)
		}
		docs, err := decodeInputs(path, data, strings.ToLower(filepath.Ext(path)))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, docs...)
	}
	return inputs, nil
}

// decodeInputs decodes every document in data. JSON is used for .json files and for
// extension-less data starting with '{' or '['; everything else is read as YAML.
func decodeInputs(source string, data []byte, ext string) ([]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%s: no input documents", source)
	}

	isJSON := ext == ".json" || (ext == "" && (trimmed[0] == '{' || trimmed[0] == '['))

	var docs []any
	var err error
	if isJSON {
		docs, err = decodeJSONStream(trimmed)
	} else {
		docs, err = decodeYAMLStream(trimmed)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	var inputs []any
	for _, doc := range docs {
		if items, ok := doc.([]any); ok {
			inputs = append(inputs, items...)
			continue
		}
		inputs = append(inputs, doc)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%s: no input documents", source)
	}
	return inputs, nil
}

func decodeJSONStream(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var docs []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		docs = append(docs, v)
	}
}

func decodeYAMLStream(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if v != nil {
			docs = append(docs, v)
		}
	}
}
