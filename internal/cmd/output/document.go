package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mozilla-ai/convtree/internal/sink/docsink"
)

// Document formats supported by WriteDocument.
const (
	DocumentJSON = "json"
	DocumentYAML = "yaml"
	DocumentTOML = "toml"
)

// WriteDocument renders a converted document to w in the given format.
// Object key order is kept for JSON and YAML. TOML requires a table at the top level.
func WriteDocument(w io.Writer, format string, indent int, doc any) error {
	switch strings.ToLower(format) {
	case DocumentJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", indent))
		return enc.Encode(doc)
	case DocumentYAML:
		enc := yaml.NewEncoder(w)
		defer func(enc *yaml.Encoder) {
			_ = enc.Close()
		}(enc)
		if indent > 0 {
			enc.SetIndent(indent)
		}
		return enc.Encode(doc)
	case DocumentTOML:
		table := doc
		if n, ok := doc.(*docsink.Node); ok {
			table = n.Value()
		}
		if _, ok := table.(map[string]any); !ok {
			return fmt.Errorf("toml output requires an object at the top level, got %T", table)
		}
		enc := toml.NewEncoder(w)
		enc.Indent = strings.Repeat(" ", indent)
		return enc.Encode(table)
	default:
		return fmt.Errorf("unsupported document format '%s'", format)
	}
}
