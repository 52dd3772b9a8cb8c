package converter

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/field"
	"github.com/mozilla-ai/convtree/internal/sink/mapsink"
)

func nameExtractor(_ field.Field, o *testObject) (string, bool, error) {
	if o.name == nil {
		return "", false, nil
	}
	return *o.name, true, nil
}

func upperNameNode(t *testing.T) Converter[*testObject, map[string]any] {
	t.Helper()

	c, err := ExtractWith[map[string]any](field.New("name", "ext"), nameExtractor).
		Decorate(strings.ToUpper).
		WithWriter(mapsink.Put).
		Build()
	require.NoError(t, err)
	return c
}

func TestScenario_DecoratedValueIsWritten(t *testing.T) {
	t.Parallel()

	dst := map[string]any{}
	require.NoError(t, upperNameNode(t).Consume(newTestObject("Some", 0), dst))
	require.Equal(t, map[string]any{"ext": "SOME"}, dst)
}

func TestScenario_AbsentValueIsNotWritten(t *testing.T) {
	t.Parallel()

	dst := map[string]any{}
	require.NoError(t, upperNameNode(t).Consume(&testObject{}, dst))
	require.NotContains(t, dst, "ext")
	require.Empty(t, dst)
}

func fanOutTree(t *testing.T) Converter[string, map[string]any] {
	t.Helper()

	item := ObjectWithContext[*testObject](field.Of("item"), mapsink.AppendMap).
		Field(Extract[map[string]any](field.Of("name"), (*testObject).NameOrEmpty).
			WithWriter(mapsink.Put)).
		Field(Map(Extract[map[string]any](field.New("array", "myList"), (*testObject).Array), splitComma).
			WithWriter(mapsink.Put)).
		Field(Map(Extract[map[string]any](field.New("numberLike", "myInt"), (*testObject).NumberLike), strconv.Atoi).
			SilenceErrors().
			WithWriter(mapsink.Put)).
		Field(MapSource(Object[*testObject, map[string]any](field.Of("sub")), func(o *testObject) (*testSubObject, error) {
			return o.Sub(), nil
		}).
			Field(Extract[map[string]any](field.New("id", "subId"), (*testSubObject).ID).WithWriter(mapsink.Put)).
			Field(Extract[map[string]any](field.New("name", "subName"), (*testSubObject).SubName).WithWriter(mapsink.Put)))

	root, err := Object[string, map[string]any](field.Of("root")).
		Field(FlatMap(ObjectWithContext[string](field.Of("items"), mapsink.NewList), findObjectsByQuery).
			PipeTo(item)).
		Build()
	require.NoError(t, err)

	return root
}

func TestScenario_FanOutProducesOneMapPerElement(t *testing.T) {
	t.Parallel()

	dst := map[string]any{}
	require.NoError(t, fanOutTree(t).Consume("Some", dst))

	items, ok := dst["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	require.Equal(t, map[string]any{
		"name":    "Some",
		"myList":  []string{"Some1", "Some2"},
		"myInt":   4,
		"subId":   "2",
		"subName": "sSome",
	}, items[0])

	require.Equal(t, map[string]any{
		"name":    "SomeSome",
		"myList":  []string{"SomeSome1", "SomeSome2"},
		"myInt":   8,
		"subId":   "4",
		"subName": "sSomeSome",
	}, items[1])
}

func TestScenario_FanOutStructure(t *testing.T) {
	t.Parallel()

	root := fanOutTree(t)
	require.Len(t, root.Fields(), 1)

	items := root.Fields()[0]
	require.Equal(t, "items", items.ExternalName())
	require.Equal(t, KindFanOut, items.Kind())
	require.Len(t, items.Fields(), 1)

	item := items.Fields()[0]
	require.Equal(t, KindObject, item.Kind())

	names := make([]string, 0, len(item.Fields()))
	for _, n := range item.Fields() {
		names = append(names, n.ExternalName())
	}
	require.Equal(t, []string{"name", "myList", "myInt", "sub"}, names)
}

func atoiNode(t *testing.T, silence bool) Converter[map[string]any, map[string]any] {
	t.Helper()

	get := func(src map[string]any) string {
		s, _ := src["value"].(string)
		return s
	}

	b := Map(Extract[map[string]any](field.Of("value"), get), strconv.Atoi).WithWriter(mapsink.Put)
	if silence {
		b = b.SilenceErrors()
	}

	c, err := b.Build()
	require.NoError(t, err)
	return c
}

func TestScenario_MappingFailurePropagatesUnlessSilenced(t *testing.T) {
	t.Parallel()

	src := map[string]any{"value": "notANumber"}

	dst := map[string]any{}
	err := atoiNode(t, false).Consume(src, dst)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMapping)
	require.ErrorIs(t, err, strconv.ErrSyntax)

	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "value", ce.Field.InternalName())
	require.Equal(t, "value", ce.Field.ExternalName())
	require.Equal(t, "from_value_to_value", ce.Marker())
	require.Equal(t, StageMap, ce.Stage)
	require.Equal(t, KindExtracting, ce.Kind)
	require.Empty(t, dst)

	dst = map[string]any{}
	require.NoError(t, atoiNode(t, true).Consume(src, dst))
	require.NotContains(t, dst, "value")

	dst = map[string]any{}
	require.NoError(t, atoiNode(t, true).Consume(map[string]any{"value": "42"}, dst))
	require.Equal(t, map[string]any{"value": 42}, dst)
}

func TestScenario_FanOutPreservesIterationOrder(t *testing.T) {
	t.Parallel()

	words := []string{"c", "a", "b"}

	item := ObjectWithContext[string](field.Of("word"), mapsink.AppendMap).
		Field(Extract[map[string]any](field.Of("value"), func(s string) string { return s }).WithWriter(mapsink.Put))

	root := MustBuild[[]string, map[string]any](
		FlatMap(ObjectWithContext[[]string](field.Of("words"), mapsink.NewList), func(w []string) ([]string, error) {
			return w, nil
		}).PipeTo(item),
	)

	dst := map[string]any{}
	require.NoError(t, root.Consume(words, dst))
	require.Equal(t, []any{
		map[string]any{"value": "c"},
		map[string]any{"value": "a"},
		map[string]any{"value": "b"},
	}, dst["words"])
}
