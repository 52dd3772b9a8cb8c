package xmlsink

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/field"
)

func TestWriters(t *testing.T) {
	t.Parallel()

	doc, root := NewDocument("person")

	require.NoError(t, Attr(field.Of("id"), 7, root))
	require.NoError(t, Text(field.New("name", "fullName"), "Ada & Co", root))
	require.NoError(t, Text(field.Of("born"), time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC), root))

	address, err := Child(field.Of("address"), root)
	require.NoError(t, err)
	require.NoError(t, Text(field.Of("city"), "London", address))

	require.NoError(t, Text(field.Of("tag"), []string{"a", "b"}, root))
	require.NoError(t, Text(field.Of("meta"), map[string]any{"z": 1, "a": true}, root))

	out, err := Render(doc, 2)
	require.NoError(t, err)
	require.Equal(t, strings.TrimSpace(`<?xml version="1.0" encoding="UTF-8"?>
<person id="7">
  <fullName>Ada &amp; Co</fullName>
  <born>1815-12-10T00:00:00Z</born>
  <address>
    <city>London</city>
  </address>
  <tag>a</tag>
  <tag>b</tag>
  <meta>
    <a>true</a>
    <z>1</z>
  </meta>
</person>
`), strings.TrimSpace(out))
}

func TestAttr_RejectsComposites(t *testing.T) {
	t.Parallel()

	_, root := NewDocument("x")

	tests := []struct {
		name  string
		value any
	}{
		{name: "map", value: map[string]any{"a": 1}},
		{name: "slice", value: []any{1}},
		{name: "struct", value: struct{ A int }{A: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, Attr(field.Of("bad"), tc.value, root), ErrNotScalar)
		})
	}
}

func TestNilElement(t *testing.T) {
	t.Parallel()

	require.Error(t, Text(field.Of("a"), 1, nil))
	require.Error(t, Attr(field.Of("a"), 1, nil))

	_, err := Child(field.Of("a"), nil)
	require.Error(t, err)
}

func TestRender_Compact(t *testing.T) {
	t.Parallel()

	doc, root := NewDocument("r")
	require.NoError(t, Text(field.Of("v"), nil, root))

	out, err := Render(doc, 0)
	require.NoError(t, err)
	require.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><r><v/></r>`, out)
}
