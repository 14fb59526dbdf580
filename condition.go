package seal

// Condition is one atomic predicate of a search's implicit-AND filter list.
// All Conditions are SearchOptions, but not all SearchOptions are Conditions.
//
// The set of conditions is closed. Backends dispatch on it through ConditionVisitor,
// so adding a condition kind breaks every visitor at compile time.
type Condition interface {
	SearchOption
	// Accept calls the visitor method matching the condition kind.
	Accept(v ConditionVisitor) error
}

// ConditionVisitor handles every condition kind.
type ConditionVisitor interface {
	VisitIdentifier(c IdentifierCondition) error
	VisitSearch(c SearchCondition) error
	VisitEqual(c EqualCondition) error
	VisitNotEqual(c NotEqualCondition) error
	VisitGreaterThan(c GreaterThanCondition) error
	VisitGreaterThanEqual(c GreaterThanEqualCondition) error
	VisitLessThan(c LessThanCondition) error
	VisitLessThanEqual(c LessThanEqualCondition) error
}

// IdentifierCondition matches the document with the given identifier.
type IdentifierCondition struct {
	// Identifier is compared against the document identifier as a string.
	Identifier string
}

// Apply implements the SearchOption interface for IdentifierCondition.
func (c IdentifierCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for IdentifierCondition.
func (c IdentifierCondition) Accept(v ConditionVisitor) error { return v.VisitIdentifier(c) }

// Identifier creates an identifier condition.
func Identifier(id string) Condition {
	return IdentifierCondition{Identifier: id}
}

// SearchCondition is a full-text condition. The query is split on spaces
// and every term must be found in the searchable text of the document.
type SearchCondition struct {
	// Query is the full-text query.
	Query string
}

// Apply implements the SearchOption interface for SearchCondition.
func (c SearchCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for SearchCondition.
func (c SearchCondition) Accept(v ConditionVisitor) error { return v.VisitSearch(c) }

// FullText creates a full-text condition.
func FullText(query string) Condition {
	return SearchCondition{Query: query}
}

// EqualCondition matches when Value is one of the field's values.
type EqualCondition struct {
	// Field is the name of the field to compare.
	Field string
	// Value is the value to look for.
	Value any
}

// Apply implements the SearchOption interface for EqualCondition.
func (c EqualCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for EqualCondition.
func (c EqualCondition) Accept(v ConditionVisitor) error { return v.VisitEqual(c) }

// Equal creates an equality condition.
func Equal(field string, value any) Condition {
	return EqualCondition{Field: field, Value: value}
}

// NotEqualCondition matches when Value is none of the field's values.
type NotEqualCondition struct {
	// Field is the name of the field to compare.
	Field string
	// Value is the value that must be absent.
	Value any
}

// Apply implements the SearchOption interface for NotEqualCondition.
func (c NotEqualCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for NotEqualCondition.
func (c NotEqualCondition) Accept(v ConditionVisitor) error { return v.VisitNotEqual(c) }

// NotEqual creates a not-equal condition.
func NotEqual(field string, value any) Condition {
	return NotEqualCondition{Field: field, Value: value}
}

// GreaterThanCondition matches when the field has values and all of them are greater than Value.
type GreaterThanCondition struct {
	// Field is the name of the field to compare.
	Field string
	// Value is the exclusive lower bound.
	Value any
}

// Apply implements the SearchOption interface for GreaterThanCondition.
func (c GreaterThanCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for GreaterThanCondition.
func (c GreaterThanCondition) Accept(v ConditionVisitor) error { return v.VisitGreaterThan(c) }

// GreaterThan creates a greater-than condition.
func GreaterThan(field string, value any) Condition {
	return GreaterThanCondition{Field: field, Value: value}
}

// GreaterThanEqualCondition matches when the field has values and all of them are at least Value.
type GreaterThanEqualCondition struct {
	// Field is the name of the field to compare.
	Field string
	// Value is the inclusive lower bound.
	Value any
}

// Apply implements the SearchOption interface for GreaterThanEqualCondition.
func (c GreaterThanEqualCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for GreaterThanEqualCondition.
func (c GreaterThanEqualCondition) Accept(v ConditionVisitor) error {
	return v.VisitGreaterThanEqual(c)
}

// GreaterThanEqual creates a greater-than-or-equal condition.
func GreaterThanEqual(field string, value any) Condition {
	return GreaterThanEqualCondition{Field: field, Value: value}
}

// LessThanCondition matches when the field has values and all of them are less than Value.
type LessThanCondition struct {
	// Field is the name of the field to compare.
	Field string
	// Value is the exclusive upper bound.
	Value any
}

// Apply implements the SearchOption interface for LessThanCondition.
func (c LessThanCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for LessThanCondition.
func (c LessThanCondition) Accept(v ConditionVisitor) error { return v.VisitLessThan(c) }

// LessThan creates a less-than condition.
func LessThan(field string, value any) Condition {
	return LessThanCondition{Field: field, Value: value}
}

// LessThanEqualCondition matches when the field has values and all of them are at most Value.
type LessThanEqualCondition struct {
	// Field is the name of the field to compare.
	Field string
	// Value is the inclusive upper bound.
	Value any
}

// Apply implements the SearchOption interface for LessThanEqualCondition.
func (c LessThanEqualCondition) Apply(s *Search) { s.Filters = append(s.Filters, c) }

// Accept implements the Condition interface for LessThanEqualCondition.
func (c LessThanEqualCondition) Accept(v ConditionVisitor) error { return v.VisitLessThanEqual(c) }

// LessThanEqual creates a less-than-or-equal condition.
func LessThanEqual(field string, value any) Condition {
	return LessThanEqualCondition{Field: field, Value: value}
}

// FieldOf returns the field a condition filters on, or "" for identifier
// and full-text conditions.
func FieldOf(c Condition) string {
	var v fieldVisitor
	_ = c.Accept(&v)
	return v.field
}

type fieldVisitor struct {
	field string
}

func (v *fieldVisitor) VisitIdentifier(IdentifierCondition) error { return nil }
func (v *fieldVisitor) VisitSearch(SearchCondition) error         { return nil }

func (v *fieldVisitor) VisitEqual(c EqualCondition) error {
	v.field = c.Field
	return nil
}

func (v *fieldVisitor) VisitNotEqual(c NotEqualCondition) error {
	v.field = c.Field
	return nil
}

func (v *fieldVisitor) VisitGreaterThan(c GreaterThanCondition) error {
	v.field = c.Field
	return nil
}

func (v *fieldVisitor) VisitGreaterThanEqual(c GreaterThanEqualCondition) error {
	v.field = c.Field
	return nil
}

func (v *fieldVisitor) VisitLessThan(c LessThanCondition) error {
	v.field = c.Field
	return nil
}

func (v *fieldVisitor) VisitLessThanEqual(c LessThanEqualCondition) error {
	v.field = c.Field
	return nil
}

var _ ConditionVisitor = (*fieldVisitor)(nil)
