package converter

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/field"
	"github.com/mozilla-ai/convtree/internal/sink/mapsink"
)

func identity(s string) string {
	return s
}

func TestExtracting_WriterPlacementDoesNotMatter(t *testing.T) {
	t.Parallel()

	appendA := func(s string) string { return s + "a" }
	appendB := func(s string) string { return s + "b" }

	tests := []struct {
		name    string
		builder Builder[string, map[string]any]
	}{
		{
			name: "writer first",
			builder: Extract[map[string]any](field.Of("v"), identity).
				WithWriter(mapsink.Put).
				Decorate(appendA).
				Decorate(appendB),
		},
		{
			name: "writer between decorators",
			builder: Extract[map[string]any](field.Of("v"), identity).
				Decorate(appendA).
				WithWriter(mapsink.Put).
				Decorate(appendB),
		},
		{
			name: "writer last",
			builder: Extract[map[string]any](field.Of("v"), identity).
				Decorate(appendA).
				Decorate(appendB).
				WithWriter(mapsink.Put),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := tc.builder.Build()
			require.NoError(t, err)

			dst := map[string]any{}
			require.NoError(t, c.Consume("x", dst))
			require.Equal(t, "xab", dst["v"])
		})
	}
}

func TestExtracting_DecoratorsRunBeforeMapper(t *testing.T) {
	t.Parallel()

	var calls []string

	b := Extract[map[string]any](field.Of("n"), identity).
		Decorate(func(s string) string {
			calls = append(calls, "trim")
			return strings.TrimSpace(s)
		})

	mapped := Map(b.WithWriter(mapsink.Put), func(s string) (int, error) {
		calls = append(calls, "atoi")
		return strconv.Atoi(s)
	})

	c, err := mapped.Build()
	require.NoError(t, err)

	dst := map[string]any{}
	require.NoError(t, c.Consume(" 12 ", dst))
	require.Equal(t, 12, dst["n"])
	require.Equal(t, []string{"trim", "atoi"}, calls)
}

func TestExtracting_AbsentValueSkipsEverything(t *testing.T) {
	t.Parallel()

	explode := func(string) string { panic("decorator must not run") }
	writer := func(field.Field, any, map[string]any) error { return errors.New("writer must not run") }

	c, err := Map(
		ExtractWith[map[string]any](field.Of("v"), func(field.Field, string) (string, bool, error) {
			return "", false, nil
		}).Decorate(explode),
		func(string) (int, error) { return 0, errors.New("mapper must not run") },
	).WithWriter(writer).Build()
	require.NoError(t, err)

	require.NoError(t, c.Consume("anything", map[string]any{}))
}

func TestExtracting_NilPointerResultIsAbsent(t *testing.T) {
	t.Parallel()

	c, err := Extract[map[string]any](field.Of("name"), (*testObject).Name).
		WithWriter(mapsink.Put).
		Build()
	require.NoError(t, err)

	dst := map[string]any{}
	require.NoError(t, c.Consume(&testObject{}, dst))
	require.Empty(t, dst)

	require.NoError(t, c.Consume(nil, dst))
	require.Empty(t, dst)

	require.NoError(t, c.Consume(newTestObject("x", 1), dst))
	require.Equal(t, "x", derefString(dst["name"].(*string)))
}

func TestExtracting_FilterSkipsNode(t *testing.T) {
	t.Parallel()

	c, err := Extract[map[string]any](field.Of("v"), identity).
		Filter(func(s string) bool { return s != "skip" }).
		WithWriter(mapsink.Put).
		Build()
	require.NoError(t, err)

	dst := map[string]any{}
	require.NoError(t, c.Consume("skip", dst))
	require.Empty(t, dst)

	require.NoError(t, c.Consume("keep", dst))
	require.Equal(t, "keep", dst["v"])
}

func TestExtracting_Keep(t *testing.T) {
	t.Parallel()

	positive := func(i int) bool { return i > 0 }

	c, err := Map(Extract[map[string]any](field.Of("n"), identity), strconv.Atoi).
		Keep(positive).
		WithWriter(mapsink.Put).
		Build()
	require.NoError(t, err)

	dst := map[string]any{}
	require.NoError(t, c.Consume("-3", dst))
	require.Empty(t, dst)

	require.NoError(t, c.Consume("3", dst))
	require.Equal(t, 3, dst["n"])

	nonEmpty := func(s string) bool { return s != "" }
	c, err = Extract[map[string]any](field.Of("s"), identity).
		Keep(nonEmpty).
		WithWriter(mapsink.Put).
		Build()
	require.NoError(t, err)

	dst = map[string]any{}
	require.NoError(t, c.Consume("", dst))
	require.Empty(t, dst)
}

func TestExtracting_PanicsBecomeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		builder  Builder[string, map[string]any]
		sentinel error
		stage    Stage
	}{
		{
			name: "extractor",
			builder: Extract[map[string]any](field.Of("v"), func(string) string { panic("boom") }).
				WithWriter(mapsink.Put),
			sentinel: ErrExtraction,
			stage:    StageExtract,
		},
		{
			name: "decorator",
			builder: Extract[map[string]any](field.Of("v"), identity).
				Decorate(func(string) string { panic("boom") }).
				WithWriter(mapsink.Put),
			sentinel: ErrMapping,
			stage:    StageDecorate,
		},
		{
			name: "mapper",
			builder: Map(Extract[map[string]any](field.Of("v"), identity), func(string) (int, error) { panic("boom") }).
				WithWriter(mapsink.Put),
			sentinel: ErrMapping,
			stage:    StageMap,
		},
		{
			name: "filter",
			builder: Extract[map[string]any](field.Of("v"), identity).
				Filter(func(string) bool { panic("boom") }).
				WithWriter(mapsink.Put),
			sentinel: ErrMapping,
			stage:    StageFilter,
		},
		{
			name: "writer",
			builder: Extract[map[string]any](field.Of("v"), identity).
				WithWriter(func(field.Field, any, map[string]any) error { panic("boom") }),
			sentinel: ErrWriter,
			stage:    StageWrite,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := tc.builder.Build()
			require.NoError(t, err)

			err = c.Consume("x", map[string]any{})
			require.ErrorIs(t, err, tc.sentinel)

			var ce *ConversionError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, tc.stage, ce.Stage)
			require.Contains(t, err.Error(), "panic: boom")
		})
	}
}

func TestExtracting_ExtractionErrorSilencing(t *testing.T) {
	t.Parallel()

	failing := func(field.Field, string) (string, bool, error) {
		return "", false, errors.New("lookup failed")
	}

	c, err := ExtractWith[map[string]any](field.Of("v"), failing).WithWriter(mapsink.Put).Build()
	require.NoError(t, err)
	err = c.Consume("x", map[string]any{})
	require.ErrorIs(t, err, ErrExtraction)
	require.EqualError(t, err, "field v (from_v_to_v, extracting): extraction failed: lookup failed")

	var observed []error
	c, err = ExtractWith[map[string]any](field.Of("v"), failing).
		SilenceExtractionErrors().
		OnError(func(err error, _ string) { observed = append(observed, err) }).
		WithLogger(hclog.NewNullLogger()).
		WithWriter(mapsink.Put).
		Build()
	require.NoError(t, err)

	dst := map[string]any{}
	require.NoError(t, c.Consume("x", dst))
	require.Empty(t, dst)
	require.Len(t, observed, 1)
	require.ErrorIs(t, observed[0], ErrExtraction)
}

func TestExtracting_WriterErrorsAreNeverSilenced(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("sink unavailable")

	c, err := Extract[map[string]any](field.Of("v"), identity).
		SilenceErrors().
		WithWriter(func(field.Field, any, map[string]any) error { return writeErr }).
		Build()
	require.NoError(t, err)

	err = c.Consume("x", map[string]any{})
	require.ErrorIs(t, err, ErrWriter)
	require.ErrorIs(t, err, writeErr)
}

func TestExtracting_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		builder  Builder[string, map[string]any]
		contains string
	}{
		{
			name:     "missing writer",
			builder:  Extract[map[string]any](field.Of("v"), identity),
			contains: "writer is required",
		},
		{
			name:     "missing extractor",
			builder:  Extract[map[string]any, string, string](field.Of("v"), nil).WithWriter(mapsink.Put),
			contains: "extractor is required",
		},
		{
			name: "missing mapper",
			builder: Map[string, map[string]any, string, int](
				Extract[map[string]any](field.Of("v"), identity).WithWriter(mapsink.Put),
				nil,
			),
			contains: "mapper is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := tc.builder.Build()
			require.Nil(t, c)
			require.ErrorIs(t, err, ErrConfiguration)
			require.ErrorContains(t, err, tc.contains)

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, KindExtracting, ce.Kind)
		})
	}
}

func TestExtracting_FinalizedBuilderRejectsChanges(t *testing.T) {
	t.Parallel()

	b := Extract[map[string]any](field.Of("v"), identity).WithWriter(mapsink.Put)

	first, err := b.Build()
	require.NoError(t, err)

	again, err := b.Build()
	require.NoError(t, err)
	require.Same(t, first, again)

	b.Decorate(strings.ToUpper)
	_, err = b.Build()
	require.ErrorIs(t, err, ErrBuilderFinalized)

	dst := map[string]any{}
	require.NoError(t, first.Consume("x", dst))
	require.Equal(t, "x", dst["v"])
}

func TestExtracting_BuilderRetiredByMap(t *testing.T) {
	t.Parallel()

	b := Extract[map[string]any](field.Of("v"), identity).WithWriter(mapsink.Put)
	mapped := Map(b, strconv.Atoi)

	_, err := b.Build()
	require.ErrorIs(t, err, ErrBuilderFinalized)

	_, err = mapped.Build()
	require.NoError(t, err)
}

func TestExtracting_ChangesToRetiredBuilderFailMappedBuilder(t *testing.T) {
	t.Parallel()

	b := Extract[map[string]any](field.Of("v"), identity).WithWriter(mapsink.Put)
	mapped := Map(b, func(s string) (string, error) { return s + "!", nil })

	_, err := mapped.Build()
	require.NoError(t, err)

	b.Decorate(strings.ToUpper)

	c, err := mapped.Build()
	require.Nil(t, c)
	require.ErrorIs(t, err, ErrBuilderFinalized)
	require.ErrorContains(t, err, "decorate")
}

func TestExtracting_MapWithSource(t *testing.T) {
	t.Parallel()

	b := Extract[map[string]any](field.Of("v"), func(o *testObject) string { return o.NameOrEmpty() }).
		Decorate(strings.ToUpper)
	c, err := MapWithSource(b, func(o *testObject, name string) (string, error) {
		return name + ":" + o.NumberLike(), nil
	}).WithWriter(mapsink.Put).Build()
	require.NoError(t, err)

	dst := map[string]any{}
	require.NoError(t, c.Consume(newTestObject("ada", 36), dst))
	require.Equal(t, "ADA:36", dst["v"])

	_, err = MapWithSource(b, func(*testObject, string) (int, error) { return 0, nil }).
		WithWriter(mapsink.Put).
		Build()
	require.ErrorIs(t, err, ErrBuilderFinalized)
}
