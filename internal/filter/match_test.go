package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	Name    string
	Alias   string
	Enabled bool
	Count   int
}

func itemOptions() []Option[item] {
	return []Option[item]{
		WithMatcher("name", Equals(func(i item) string { return i.Name })),
		WithMatcher("any", PartialAny(
			func(i item) string { return i.Name },
			func(i item) string { return i.Alias },
		)),
		WithMatcher("part", Partial(func(i item) string { return i.Name })),
		WithMatcher("enabled", EqualsBool(func(i item) bool { return i.Enabled })),
		WithMatcher("count", EqualsInt(func(i item) int { return i.Count })),
	}
}

func TestNormalizeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello world", NormalizeString("  Hello World  "))
}

func TestMatch(t *testing.T) {
	t.Parallel()

	it := item{Name: "Address", Alias: "addr", Enabled: true, Count: 3}

	tests := []struct {
		name    string
		filters map[string]string
		want    bool
	}{
		{name: "nil filters", filters: nil, want: true},
		{name: "equals ignores case", filters: map[string]string{"name": " address "}, want: true},
		{name: "equals mismatch", filters: map[string]string{"name": "addr"}, want: false},
		{name: "partial", filters: map[string]string{"part": "DRE"}, want: true},
		{name: "partial any second provider", filters: map[string]string{"any": "ddr"}, want: true},
		{name: "partial any none", filters: map[string]string{"any": "zip"}, want: false},
		{name: "bool", filters: map[string]string{"enabled": "TRUE"}, want: true},
		{name: "bool mismatch", filters: map[string]string{"enabled": "false"}, want: false},
		{name: "bool unparseable", filters: map[string]string{"enabled": "yes please"}, want: false},
		{name: "int", filters: map[string]string{"count": "3"}, want: true},
		{name: "int unparseable", filters: map[string]string{"count": "three"}, want: false},
		{name: "all must match", filters: map[string]string{"name": "address", "count": "4"}, want: false},
		{name: "unknown keys ignored", filters: map[string]string{"colour": "red"}, want: true},
		{name: "empty key skipped", filters: map[string]string{" ": "x"}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Match(it, tc.filters, itemOptions()...)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMatch_StrictKeys(t *testing.T) {
	t.Parallel()

	opts := append(itemOptions(), WithStrictKeys[item]())

	_, err := Match(item{}, map[string]string{"colour": "red"}, opts...)
	require.ErrorContains(t, err, "unsupported filter key 'colour', must be one of: any, count, enabled, name, part")
}

func TestWithMatcher_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewOptions(WithMatcher[item](" ", Equals(func(i item) string { return i.Name })))
	require.ErrorContains(t, err, "cannot be empty")

	_, err = NewOptions(WithMatcher[item]("x", nil))
	require.ErrorContains(t, err, "cannot be nil")
}

func TestFilter(t *testing.T) {
	t.Parallel()

	items := []item{{Name: "a", Count: 1}, {Name: "b", Count: 2}, {Name: "c", Count: 1}}

	got, err := Filter(items, map[string]string{"count": "1"}, itemOptions()...)
	require.NoError(t, err)
	require.Equal(t, []item{{Name: "a", Count: 1}, {Name: "c", Count: 1}}, got)

	got, err = Filter(items, nil, itemOptions()...)
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestParseFilters(t *testing.T) {
	t.Parallel()

	got, err := ParseFilters([]string{"Kind=fanout", "public = false", "path=a=b", "kind=object"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"kind": "object", "public": "false", "path": "a=b"}, got)

	_, err = ParseFilters([]string{"kind"})
	require.ErrorContains(t, err, "expected key=value")

	_, err = ParseFilters([]string{"=x"})
	require.Error(t, err)
}

func TestMatchRequestedSlice(t *testing.T) {
	t.Parallel()

	available := []string{"people", "orders", "Invoices"}

	tests := []struct {
		name      string
		requested []string
		want      []string
		wantErr   string
	}{
		{name: "everything", requested: nil, want: []string{"Invoices", "orders", "people"}},
		{name: "subset", requested: []string{" people", "orders", "people"}, want: []string{"orders", "people"}},
		{name: "case sensitive", requested: []string{"invoices"}, wantErr: "missing values: invoices"},
		{name: "missing sorted", requested: []string{"zeta", "people", "alpha"}, wantErr: "missing values: alpha, zeta"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := MatchRequestedSlice(tc.requested, available)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
