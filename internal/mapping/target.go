package mapping

import (
	"errors"

	"github.com/beevik/etree"

	"github.com/mozilla-ai/convtree/internal/field"
	"github.com/mozilla-ai/convtree/internal/sink/docsink"
	"github.com/mozilla-ai/convtree/internal/sink/xmlsink"
)

// Target tells the compiler how to write into a destination of type C.
type Target[C any] struct {
	// Write stores a leaf value.
	Write func(field.Field, any, C) error

	// Attr stores a leaf value flagged with attr. Write is used when nil.
	Attr func(field.Field, any, C) error

	// Append stores one scalar element of a fan-out.
	Append func(field.Field, any, C) error

	// Object derives the destination of a nested object.
	Object func(field.Field, C) (C, error)

	// Array derives the destination shared by the elements of a fan-out.
	Array func(field.Field, C) (C, error)

	// Item derives the destination of one fan-out element.
	Item func(field.Field, C) (C, error)
}

func (t Target[C]) validate() error {
	var errs []error
	if t.Write == nil {
		errs = append(errs, errors.New("target writer is required"))
	}
	if t.Append == nil {
		errs = append(errs, errors.New("target append writer is required"))
	}
	if t.Object == nil || t.Array == nil || t.Item == nil {
		errs = append(errs, errors.New("target object, array and item mappers are required"))
	}
	return errors.Join(errs...)
}

func (t Target[C]) attr() func(field.Field, any, C) error {
	if t.Attr != nil {
		return t.Attr
	}
	return t.Write
}

// DocumentTarget writes into ordered documents rendered as JSON, YAML or TOML.
func DocumentTarget() Target[*docsink.Node] {
	return Target[*docsink.Node]{
		Write:  docsink.Put,
		Append: docsink.AppendValue,
		Object: docsink.Child,
		Array:  docsink.Array,
		Item:   docsink.Item,
	}
}

// XMLTarget writes into etree elements. Fan-outs become a container element holding one
// element per item.
func XMLTarget() Target[*etree.Element] {
	return Target[*etree.Element]{
		Write:  xmlsink.Text,
		Attr:   xmlsink.Attr,
		Append: xmlsink.Text,
		Object: xmlsink.Child,
		Array:  xmlsink.Child,
		Item:   xmlsink.Child,
	}
}
