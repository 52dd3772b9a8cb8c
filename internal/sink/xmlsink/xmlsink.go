// Package xmlsink provides writers and context mappers that convert into an etree XML document.
// Every composite creates a child element named after its field; leaves become child elements
// holding text, or attributes of the current element.
package xmlsink

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/beevik/etree"

	"github.com/mozilla-ai/convtree/internal/field"
)

// ErrNotScalar indicates that a composite value was written where only text is allowed.
var ErrNotScalar = errors.New("value is not a scalar")

// NewDocument returns a document with an XML declaration and its root element.
func NewDocument(root string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc, doc.CreateElement(root)
}

// Render serialises doc, indenting nested elements by indent spaces.
func Render(doc *etree.Document, indent int) (string, error) {
	if indent > 0 {
		doc.Indent(indent)
	}
	return doc.WriteToString()
}

// Text is a writer that appends a child element named after the field holding value as text.
// Maps become nested elements (keys in sorted order) and slices repeat the element once per item.
func Text(f field.Field, value any, el *etree.Element) error {
	if el == nil {
		return fmt.Errorf("text '%s': element is nil", f.ExternalName())
	}
	return write(el, f.ExternalName(), value)
}

// Attr is a writer that sets an attribute named after the field on the current element.
func Attr(f field.Field, value any, el *etree.Element) error {
	if el == nil {
		return fmt.Errorf("attr '%s': element is nil", f.ExternalName())
	}
	s, err := scalar(value)
	if err != nil {
		return fmt.Errorf("attr '%s': %w", f.ExternalName(), err)
	}
	el.CreateAttr(f.ExternalName(), s)
	return nil
}

// Child is a context mapper that appends a new element named after the field.
func Child(f field.Field, el *etree.Element) (*etree.Element, error) {
	if el == nil {
		return nil, fmt.Errorf("child '%s': element is nil", f.ExternalName())
	}
	return el.CreateElement(f.ExternalName()), nil
}

func write(parent *etree.Element, name string, value any) error {
	switch v := value.(type) {
	case map[string]any:
		child := parent.CreateElement(name)
		for _, k := range slices.Sorted(maps.Keys(v)) {
			if err := write(child, k, v[k]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range v {
			if err := write(parent, name, item); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		for i := range rv.Len() {
			if err := write(parent, name, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	s, err := scalar(value)
	if err != nil {
		return fmt.Errorf("text '%s': %w", name, err)
	}
	child := parent.CreateElement(name)
	if s != "" {
		child.SetText(s)
	}
	return nil
}

func scalar(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Func, reflect.Chan:
		return "", fmt.Errorf("%w: %T", ErrNotScalar, value)
	default:
		return fmt.Sprint(value), nil
	}
}
