package converter

import (
	"strconv"
	"strings"
)

// testObject is the source used across converter tests.
type testObject struct {
	name  *string
	value int
}

type testSubObject struct {
	id   string
	name string
}

func newTestObject(name string, value int) *testObject {
	return &testObject{name: &name, value: value}
}

func (o *testObject) Name() *string {
	return o.name
}

func (o *testObject) NameOrEmpty() string {
	if o.name == nil {
		return ""
	}
	return *o.name
}

// Array returns "<name>1,<name>2".
func (o *testObject) Array() string {
	n := o.NameOrEmpty()
	return n + "1," + n + "2"
}

// NumberLike returns the value as text.
func (o *testObject) NumberLike() string {
	return strconv.Itoa(o.value)
}

func (o *testObject) Sub() *testSubObject {
	return &testSubObject{
		id:   strconv.Itoa(o.value / 2),
		name: "s" + o.NameOrEmpty(),
	}
}

func (s *testSubObject) ID() string {
	return s.id
}

func (s *testSubObject) SubName() string {
	return s.name
}

// findObjectsByQuery returns two objects derived from q.
func findObjectsByQuery(q string) ([]*testObject, error) {
	return []*testObject{
		newTestObject(q, len(q)),
		newTestObject(q+q, 2*len(q)),
	}, nil
}

func splitComma(s string) ([]string, error) {
	return strings.Split(s, ","), nil
}

func derefString(s *string) string {
	return *s
}
