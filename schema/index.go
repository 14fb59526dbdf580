package schema

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Error codes carried by the schema errors. They continue the seal.ErrorCode range.
const (
	CodeInvalidSchema = 1008 + iota
	CodeIndexNotFound
	CodeFieldNotFound
)

var (
	// ErrInvalidSchema is returned when an index or schema definition is malformed.
	ErrInvalidSchema = newErrorWithCode(CodeInvalidSchema, "schema: invalid schema")

	// ErrIndexNotFound is returned when an index name is not part of the schema.
	ErrIndexNotFound = newErrorWithCode(CodeIndexNotFound, "schema: index not found")

	// ErrFieldNotFound is returned when a field path does not resolve.
	ErrFieldNotFound = newErrorWithCode(CodeFieldNotFound, "schema: field not found")
)

func newErrorWithCode(code int, msg string) error {
	return errors.WithSecondaryError(errors.New(msg), errors.Newf("code: %d", code))
}

// Index is a named collection of documents sharing one field tree.
type Index struct {
	name            string
	fields          []Field
	identifierField *ScalarField
}

// NewIndex validates the field tree and creates an Index.
// The tree must contain exactly one top-level, single-valued identifier field.
func NewIndex(name string, fields ...Field) (*Index, error) {
	if name == "" {
		return nil, errors.Wrap(ErrInvalidSchema, "index name is required")
	}

	if err := validateFields(name, fields); err != nil {
		return nil, err
	}

	var identifier *ScalarField
	for _, f := range fields {
		s, ok := f.(*ScalarField)
		if !ok || s.Type() != TypeIdentifier {
			continue
		}
		if identifier != nil {
			return nil, errors.Wrapf(ErrInvalidSchema, "index %q declares more than one identifier field", name)
		}
		if s.Multiple() {
			return nil, errors.Wrapf(ErrInvalidSchema, "identifier field %q of index %q cannot be multiple", s.Name(), name)
		}
		identifier = s
	}

	if identifier == nil {
		return nil, errors.Wrapf(ErrInvalidSchema, "index %q has no identifier field", name)
	}

	return &Index{
		name:            name,
		fields:          fields,
		identifierField: identifier,
	}, nil
}

// MustIndex is like NewIndex but panics on an invalid definition.
func MustIndex(name string, fields ...Field) *Index {
	idx, err := NewIndex(name, fields...)
	if err != nil {
		panic(err)
	}
	return idx
}

// Name returns the index name.
func (i *Index) Name() string { return i.name }

// Fields returns the top-level fields in declaration order.
func (i *Index) Fields() []Field { return i.fields }

// IdentifierField returns the identifier field.
func (i *Index) IdentifierField() *ScalarField { return i.identifierField }

// FieldByPath resolves a dotted path. Object fields are entered by subfield name,
// typed fields by type tag and then subfield name, e.g. "blocks.text.title".
func (i *Index) FieldByPath(path string) (Field, error) {
	segments := strings.Split(path, PathSeparator)
	fields := i.fields

	for n := 0; n < len(segments); n++ {
		f := lookup(fields, segments[n])
		if f == nil {
			return nil, errors.Wrapf(ErrFieldNotFound, "field %q in index %q", path, i.name)
		}

		if n == len(segments)-1 {
			return f, nil
		}

		switch v := f.(type) {
		case *ObjectField:
			fields = v.Fields()
		case *TypedField:
			n++
			if n == len(segments)-1 {
				return nil, errors.Wrapf(ErrFieldNotFound, "field %q in index %q ends on a type tag", path, i.name)
			}
			variant, ok := v.Variant(segments[n])
			if !ok {
				return nil, errors.Wrapf(ErrFieldNotFound, "type %q of field %q in index %q", segments[n], v.Name(), i.name)
			}
			fields = variant
		default:
			return nil, errors.Wrapf(ErrFieldNotFound, "field %q in index %q: %q has no subfields", path, i.name, f.Name())
		}
	}

	return nil, errors.Wrapf(ErrFieldNotFound, "field %q in index %q", path, i.name)
}

func lookup(fields []Field, name string) Field {
	for _, f := range fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

func validateFields(scope string, fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == nil {
			return errors.Wrapf(ErrInvalidSchema, "nil field in %q", scope)
		}

		name := f.Name()
		if name == "" {
			return errors.Wrapf(ErrInvalidSchema, "unnamed field in %q", scope)
		}
		if strings.Contains(name, PathSeparator) {
			return errors.Wrapf(ErrInvalidSchema, "field name %q in %q contains %q", name, scope, PathSeparator)
		}
		if _, dup := seen[name]; dup {
			return errors.Wrapf(ErrInvalidSchema, "duplicate field %q in %q", name, scope)
		}
		seen[name] = struct{}{}

		path := scope + PathSeparator + name
		switch v := f.(type) {
		case *ScalarField:
		case *ObjectField:
			if err := validateFields(path, v.Fields()); err != nil {
				return err
			}
		case *TypedField:
			if len(v.Types()) == 0 {
				return errors.Wrapf(ErrInvalidSchema, "typed field %q declares no types", path)
			}
			for tag, variant := range v.Types() {
				if tag == "" {
					return errors.Wrapf(ErrInvalidSchema, "typed field %q has an empty type tag", path)
				}
				if lookup(variant, TypeKey) != nil {
					return errors.Wrapf(ErrInvalidSchema, "type %q of %q redeclares %q", tag, path, TypeKey)
				}
				if err := validateFields(path+PathSeparator+tag, variant); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
