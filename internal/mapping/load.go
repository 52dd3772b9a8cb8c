package mapping

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a definition file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

//go:embed schema.json
var schemaJSON []byte

var definitionSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the JSON schema definitions are validated against.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// FormatFromPath returns the format implied by the file extension of path.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported file extension '%s' (%s)", ErrDefinitionLoadFailed, filepath.Ext(path), path)
	}
}

// LoadFile reads, decodes and validates the definition stored at path.
func LoadFile(path string) (*Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefinitionLoadFailed, err)
	}

	return Parse(data, format, path)
}

// Parse decodes and validates a definition. source names the input in error messages.
func Parse(data []byte, format Format, source string) (*Definition, error) {
	raw, err := decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrDefinitionLoadFailed, source, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w (%s): definition is empty", ErrDefinitionLoadFailed, source)
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrDefinitionLoadFailed, source, err)
	}

	if err := validate(doc, source); err != nil {
		return nil, err
	}

	var def Definition
	if err := json.Unmarshal(doc, &def); err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrDefinitionLoadFailed, source, err)
	}

	if len(def.Patch) > 0 {
		ops, err := json.Marshal(def.Patch)
		if err != nil {
			return nil, fmt.Errorf("%w (%s): patch: %w", ErrDefinitionLoadFailed, source, err)
		}
		if def.patch, err = jsonpatch.DecodePatch(ops); err != nil {
			return nil, fmt.Errorf("%w (%s): patch: %w", ErrDefinitionLoadFailed, source, err)
		}
	}

	return &def, nil
}

func decode(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		if len(m) > 0 {
			raw = m
		}
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}
	return raw, nil
}

func validate(doc []byte, source string) error {
	schema, err := definitionSchema()
	if err != nil {
		return fmt.Errorf("%w: loading schema: %w", ErrDefinitionLoadFailed, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w (%s): %w", ErrDefinitionLoadFailed, source, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return &SchemaError{Source: source, Violations: violations}
}

// ApplyPatch applies the definition's patch to a JSON document.
// Documents are returned unchanged when the definition has no patch.
func (d *Definition) ApplyPatch(doc []byte) ([]byte, error) {
	if !d.HasPatch() {
		return doc, nil
	}
	out, err := d.patch.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatchFailed, err)
	}
	return out, nil
}
