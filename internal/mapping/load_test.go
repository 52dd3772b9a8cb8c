package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "a.yaml", want: FormatYAML},
		{path: "dir/a.YML", want: FormatYAML},
		{path: "a.toml", want: FormatTOML},
		{path: "a.json", want: FormatJSON},
		{path: "a.xml", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFromPath(tc.path)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrDefinitionLoadFailed)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		def, err := LoadFile(filepath.Join("testdata", "person.yaml"))
		require.NoError(t, err)
		require.Equal(t, "person", def.Name)
		require.Equal(t, "People export", def.Description)
		require.Len(t, def.Fields, 10)

		name := def.Fields[1]
		require.Equal(t, "name", name.Name)
		require.Equal(t, "fullName", name.ExternalName())
		require.Equal(t, []string{"trim", "upper"}, name.Decorate)

		children := def.Fields[7]
		require.True(t, children.IsFanOut())
		require.True(t, children.IsComposite())
		require.Equal(t, "child", children.ItemName())
		require.False(t, def.HasPatch())
	})

	t.Run("toml", func(t *testing.T) {
		t.Parallel()

		def, err := LoadFile(filepath.Join("testdata", "address.toml"))
		require.NoError(t, err)
		require.Equal(t, "address", def.Name)
		require.Len(t, def.Fields, 2)
		require.Equal(t, "contact.address", def.Fields[1].SourcePath())
		require.Equal(t, "city", def.Fields[1].Fields[0].Name)
	})

	t.Run("json with patch", func(t *testing.T) {
		t.Parallel()

		def, err := LoadFile(filepath.Join("testdata", "minimal.json"))
		require.NoError(t, err)
		require.True(t, def.HasPatch())

		out, err := def.ApplyPatch([]byte(`{"name":"x"}`))
		require.NoError(t, err)
		require.JSONEq(t, `{"version":2}`, string(out))

		_, err = def.ApplyPatch([]byte(`{"other":"x"}`))
		require.ErrorIs(t, err, ErrPatchFailed)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, ErrDefinitionLoadFailed)
	})
}

func TestParse_SchemaViolations(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join("testdata", "invalid.yaml"))
	require.ErrorIs(t, err, ErrSchemaViolation)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	require.NotEmpty(t, se.Violations)
	require.Contains(t, err.Error(), "name")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		format   Format
		sentinel error
	}{
		{name: "empty yaml", data: "", format: FormatYAML, sentinel: ErrDefinitionLoadFailed},
		{name: "empty json", data: "  ", format: FormatJSON, sentinel: ErrDefinitionLoadFailed},
		{name: "empty toml", data: "", format: FormatTOML, sentinel: ErrDefinitionLoadFailed},
		{name: "malformed yaml", data: "name: [", format: FormatYAML, sentinel: ErrDefinitionLoadFailed},
		{name: "malformed json", data: "{", format: FormatJSON, sentinel: ErrDefinitionLoadFailed},
		{name: "unknown format", data: "{}", format: Format("ini"), sentinel: ErrDefinitionLoadFailed},
		{name: "missing fields", data: `{"name":"x"}`, format: FormatJSON, sentinel: ErrSchemaViolation},
		{name: "bad root name", data: `{"name":"1x","fields":[]}`, format: FormatJSON, sentinel: ErrSchemaViolation},
		{
			name:     "map and expr",
			data:     `{"name":"x","fields":[{"name":"a","map":"int","expr":"value"}]}`,
			format:   FormatJSON,
			sentinel: ErrSchemaViolation,
		},
		{
			name:     "bad patch op",
			data:     `{"name":"x","fields":[],"patch":[{"op":"merge","path":"/a"}]}`,
			format:   FormatJSON,
			sentinel: ErrSchemaViolation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tc.data), tc.format, tc.name)
			require.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestSchema_IsValidJSON(t *testing.T) {
	t.Parallel()

	schema, err := definitionSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)

	raw, err := os.ReadFile("schema.json")
	require.NoError(t, err)
	require.JSONEq(t, string(raw), string(Schema()))
}
