// Package marshaller converts documents between their external shape and the uniform
// internal shape used by the in-memory backend, where every field holds a list.
//
// Internal shape, per field kind:
//
//	scalar: []any of leaf values
//	object: []any of internal sub-documents
//	typed:  []any of single-entry maps {tag: internal sub-document}
//
// Single-valued fields are unwrapped to their only element on the way out.
package marshaller

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal/schema"
)

// ErrInvalidValue is returned when a value does not fit its field.
var ErrInvalidValue = errors.New("marshaller: invalid value")

// Marshal converts an external document into internal shape. Fields that are not part
// of the field tree are dropped and nil values are treated as absent.
func Marshal(fields []schema.Field, doc map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))

	for _, f := range fields {
		raw, ok := doc[f.Name()]
		if !ok || raw == nil {
			continue
		}

		items := []any{raw}
		if f.Multiple() {
			list, ok := toList(raw)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidValue, "field %q is multiple and expects a list, got %T", f.Name(), raw)
			}
			items = list
		}

		values := make([]any, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			v, err := marshalValue(f, item)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		out[f.Name()] = values
	}

	return out, nil
}

func marshalValue(f schema.Field, v any) (any, error) {
	switch field := f.(type) {
	case *schema.ScalarField:
		if _, isList := toList(v); isList {
			return nil, errors.Wrapf(ErrInvalidValue, "field %q expects a single %s value, got %T", f.Name(), field.Type(), v)
		}
		if _, isMap := v.(map[string]any); isMap {
			return nil, errors.Wrapf(ErrInvalidValue, "field %q expects a %s value, got an object", f.Name(), field.Type())
		}
		return v, nil

	case *schema.ObjectField:
		sub, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidValue, "field %q expects an object, got %T", f.Name(), v)
		}
		m, err := Marshal(field.Fields(), sub)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Name())
		}
		return m, nil

	case *schema.TypedField:
		sub, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidValue, "field %q expects an object, got %T", f.Name(), v)
		}
		tag, _ := sub[schema.TypeKey].(string)
		variant, ok := field.Variant(tag)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidValue, "field %q has no type %q", f.Name(), tag)
		}
		m, err := Marshal(variant, sub)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q type %q", f.Name(), tag)
		}
		return map[string]any{tag: m}, nil

	default:
		panic(fmt.Sprintf("marshaller: unhandled field type %T", f))
	}
}

// Unmarshal converts an internal document back into external shape.
func Unmarshal(fields []schema.Field, doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))

	for _, f := range fields {
		values, ok := doc[f.Name()].([]any)
		if !ok {
			continue
		}

		if !f.Multiple() {
			if len(values) == 0 {
				continue
			}
			out[f.Name()] = unmarshalValue(f, values[0])
			continue
		}

		list := make([]any, 0, len(values))
		for _, v := range values {
			list = append(list, unmarshalValue(f, v))
		}
		out[f.Name()] = list
	}

	return out
}

func unmarshalValue(f schema.Field, v any) any {
	switch field := f.(type) {
	case *schema.ScalarField:
		return v

	case *schema.ObjectField:
		sub, _ := v.(map[string]any)
		return Unmarshal(field.Fields(), sub)

	case *schema.TypedField:
		tagged, _ := v.(map[string]any)
		for tag, sub := range tagged {
			variant, _ := field.Variant(tag)
			m, _ := sub.(map[string]any)
			out := Unmarshal(variant, m)
			out[schema.TypeKey] = tag
			return out
		}
		return map[string]any{}

	default:
		panic(fmt.Sprintf("marshaller: unhandled field type %T", f))
	}
}

// Identifier returns the identifier of an internal document as a string.
// It reports false when the identifier is absent or empty.
func Identifier(index *schema.Index, doc map[string]any) (string, bool) {
	values, _ := doc[index.IdentifierField().Name()].([]any)
	if len(values) == 0 {
		return "", false
	}

	id := Stringify(values[0])
	return id, id != ""
}

// Stringify formats an identifier value.
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}

func toList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}
