// Package schema describes indexes and the typed field trees of the documents they hold.
package schema

// FieldType is the value type of a scalar field.
type FieldType string

const (
	// TypeText is a free text value.
	TypeText FieldType = "text"
	// TypeNumber is an integer or floating point value.
	TypeNumber FieldType = "number"
	// TypeBoolean is a true/false value.
	TypeBoolean FieldType = "boolean"
	// TypeDate is a date or datetime, either a time.Time or an RFC 3339 string.
	TypeDate FieldType = "date"
	// TypeIdentifier is the document identifier.
	TypeIdentifier FieldType = "identifier"
)

// TypeKey is the key that carries the type tag of a typed field item in external documents.
const TypeKey = "type"

// PathSeparator separates segments of a nested field path.
const PathSeparator = "."

// Field is a named element of an index's field tree.
// The set of implementations is closed: *ScalarField, *ObjectField and *TypedField.
type Field interface {
	// Name returns the field name, unique among its siblings.
	Name() string
	// Searchable reports whether the field contributes to full-text matching.
	Searchable() bool
	// Multiple reports whether the field holds a list at the external boundary.
	Multiple() bool

	field()
}

type baseField struct {
	name       string
	searchable bool
	multiple   bool
}

func (b *baseField) Name() string     { return b.name }
func (b *baseField) Searchable() bool { return b.searchable }
func (b *baseField) Multiple() bool   { return b.multiple }
func (b *baseField) field()           {}

// FieldOption configures a field at construction time.
type FieldOption func(*baseField)

// Multiple marks a field as holding a list of values.
func Multiple() FieldOption {
	return func(f *baseField) {
		f.multiple = true
	}
}

// NotSearchable excludes a field from full-text matching.
func NotSearchable() FieldOption {
	return func(f *baseField) {
		f.searchable = false
	}
}

func newBase(name string, opts []FieldOption) baseField {
	b := baseField{name: name, searchable: true}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// ScalarField holds leaf values of a single FieldType.
type ScalarField struct {
	baseField
	typ FieldType
}

// Type returns the value type of the field.
func (s *ScalarField) Type() FieldType { return s.typ }

// ObjectField holds a nested document, or a list of them when Multiple.
type ObjectField struct {
	baseField
	fields []Field
}

// Fields returns the subfields in declaration order.
func (o *ObjectField) Fields() []Field { return o.fields }

// TypedField holds a nested document whose shape is chosen by a type tag.
type TypedField struct {
	baseField
	types map[string][]Field
}

// Types returns the field sets keyed by type tag.
func (t *TypedField) Types() map[string][]Field { return t.types }

// Variant returns the field set of the given type tag.
func (t *TypedField) Variant(tag string) ([]Field, bool) {
	fields, ok := t.types[tag]
	return fields, ok
}

func scalar(name string, typ FieldType, opts []FieldOption) *ScalarField {
	return &ScalarField{baseField: newBase(name, opts), typ: typ}
}

// Identifier creates the identifier field of an index.
func Identifier(name string) *ScalarField {
	return scalar(name, TypeIdentifier, nil)
}

// Text creates a text field.
func Text(name string, opts ...FieldOption) *ScalarField {
	return scalar(name, TypeText, opts)
}

// Number creates a numeric field.
func Number(name string, opts ...FieldOption) *ScalarField {
	return scalar(name, TypeNumber, opts)
}

// Boolean creates a boolean field.
func Boolean(name string, opts ...FieldOption) *ScalarField {
	return scalar(name, TypeBoolean, opts)
}

// Date creates a date field.
func Date(name string, opts ...FieldOption) *ScalarField {
	return scalar(name, TypeDate, opts)
}

// Object creates a nested object field.
func Object(name string, fields []Field, opts ...FieldOption) *ObjectField {
	return &ObjectField{baseField: newBase(name, opts), fields: fields}
}

// Typed creates a polymorphic nested field discriminated by a type tag.
func Typed(name string, types map[string][]Field, opts ...FieldOption) *TypedField {
	return &TypedField{baseField: newBase(name, opts), types: types}
}
