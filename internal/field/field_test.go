package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOf_DefaultsExternalName(t *testing.T) {
	t.Parallel()

	f := Of("name")
	require.Equal(t, "name", f.InternalName())
	require.Equal(t, "name", f.ExternalName())
	require.True(t, f.IsPublic())
	require.False(t, f.HasFilter())
	require.Empty(t, f.Description())
}

func TestNew_ExplicitNames(t *testing.T) {
	t.Parallel()

	f := New("name", "ext")
	require.Equal(t, "name", f.InternalName())
	require.Equal(t, "ext", f.ExternalName())
	require.Equal(t, "name->ext", f.String())
	require.Equal(t, "from_name_to_ext", f.Marker())
}

func TestField_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a        Field
		b        Field
		expected bool
	}{
		{
			name:     "same names",
			a:        Of("a"),
			b:        New("a", "a"),
			expected: true,
		},
		{
			name:     "different external",
			a:        New("a", "b"),
			b:        New("a", "c"),
			expected: false,
		},
		{
			name:     "different internal",
			a:        New("x", "b"),
			b:        New("y", "b"),
			expected: false,
		},
		{
			name:     "metadata is ignored",
			a:        Of("a").WithDescription("first").WithFilter(true),
			b:        Of("a").WithPublic(false),
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.expected, tc.a.Equal(tc.b))
			require.Equal(t, tc.expected, tc.a.Key() == tc.b.Key())
		})
	}
}

func TestField_WithMethodsReturnCopies(t *testing.T) {
	t.Parallel()

	original := Of("id")
	changed := original.WithDescription("identifier").WithPublic(false).WithFilter(true)

	require.Empty(t, original.Description())
	require.True(t, original.IsPublic())
	require.False(t, original.HasFilter())

	require.Equal(t, "identifier", changed.Description())
	require.False(t, changed.IsPublic())
	require.True(t, changed.HasFilter())
}

func TestField_UsableAsMapKey(t *testing.T) {
	t.Parallel()

	seen := map[Key]int{}
	seen[Of("a").Key()]++
	seen[New("a", "a").Key()]++
	seen[New("a", "b").Key()]++

	require.Len(t, seen, 2)
	require.Equal(t, 2, seen[Of("a").Key()])
}

func TestField_IsZero(t *testing.T) {
	t.Parallel()

	require.True(t, Field{}.IsZero())
	require.False(t, Of("x").IsZero())
}
