package memory

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/schema"
)

// validator checks every condition of a search against an index before any document
// is read.
type validator struct {
	index   *schema.Index
	visited bool
}

func validateFilters(index *schema.Index, filters []seal.Condition) error {
	for _, f := range filters {
		v := &validator{index: index}
		if err := f.Accept(v); err != nil {
			return err
		}
		if !v.visited {
			return errors.Wrapf(seal.ErrNotImplemented, "filter %T", f)
		}
	}
	return nil
}

func (v *validator) VisitIdentifier(seal.IdentifierCondition) error {
	v.visited = true
	return nil
}

func (v *validator) VisitSearch(seal.SearchCondition) error {
	v.visited = true
	return nil
}

func (v *validator) VisitEqual(c seal.EqualCondition) error {
	v.visited = true
	return v.field(c.Field)
}

func (v *validator) VisitNotEqual(c seal.NotEqualCondition) error {
	v.visited = true
	return v.field(c.Field)
}

func (v *validator) VisitGreaterThan(c seal.GreaterThanCondition) error {
	v.visited = true
	return v.bound(c.Field, c.Value)
}

func (v *validator) VisitGreaterThanEqual(c seal.GreaterThanEqualCondition) error {
	v.visited = true
	return v.bound(c.Field, c.Value)
}

func (v *validator) VisitLessThan(c seal.LessThanCondition) error {
	v.visited = true
	return v.bound(c.Field, c.Value)
}

func (v *validator) VisitLessThanEqual(c seal.LessThanEqualCondition) error {
	v.visited = true
	return v.bound(c.Field, c.Value)
}

func (v *validator) field(name string) error {
	return checkScalarField(v.index, name)
}

func (v *validator) bound(name string, value any) error {
	if err := v.field(name); err != nil {
		return err
	}
	if !orderable(value) {
		return errors.Wrapf(seal.ErrTypeMismatch, "field %q cannot be compared with %T", name, value)
	}
	return nil
}

// checkScalarField rejects dotted paths and fields holding sub-documents.
// Fields unknown to the index are accepted and read as empty.
func checkScalarField(index *schema.Index, name string) error {
	if strings.Contains(name, schema.PathSeparator) {
		return errors.Wrapf(seal.ErrUnsupportedField, "field %q of index %q", name, index.Name())
	}

	f, err := index.FieldByPath(name)
	if err != nil {
		return nil
	}
	if _, ok := f.(*schema.ScalarField); !ok {
		return errors.Wrapf(seal.ErrUnsupportedField, "field %q of index %q holds sub-documents", name, index.Name())
	}
	return nil
}

// matcher decides whether a single document passes the filters of a search.
type matcher struct {
	index       *schema.Index
	entry       entry
	projections *projector
	matched     bool
}

// matches evaluates the filters conjunctively and stops at the first one that fails.
func (m *matcher) matches(filters []seal.Condition) (bool, error) {
	for _, f := range filters {
		m.matched = false
		if err := f.Accept(m); err != nil {
			return false, err
		}
		if !m.matched {
			return false, nil
		}
	}
	return true, nil
}

func (m *matcher) values(field string) []any {
	values, _ := m.entry.doc[field].([]any)
	return values
}

func (m *matcher) VisitIdentifier(c seal.IdentifierCondition) error {
	m.matched = m.entry.id == c.Identifier
	return nil
}

// VisitSearch requires every space separated term of the query to occur in the
// searchable projection of the document. Matching is plain case-sensitive substring
// containment, so a term may also match inside a longer word or a field name.
func (m *matcher) VisitSearch(c seal.SearchCondition) error {
	text, err := m.projections.text(m.index, m.entry)
	if err != nil {
		return err
	}

	for _, term := range strings.Split(c.Query, " ") {
		if !strings.Contains(text, term) {
			m.matched = false
			return nil
		}
	}
	m.matched = true
	return nil
}

func (m *matcher) VisitEqual(c seal.EqualCondition) error {
	m.matched = contains(m.values(c.Field), c.Value)
	return nil
}

func (m *matcher) VisitNotEqual(c seal.NotEqualCondition) error {
	m.matched = !contains(m.values(c.Field), c.Value)
	return nil
}

func (m *matcher) VisitGreaterThan(c seal.GreaterThanCondition) error {
	return m.every(c.Field, c.Value, func(n int) bool { return n > 0 })
}

func (m *matcher) VisitGreaterThanEqual(c seal.GreaterThanEqualCondition) error {
	return m.every(c.Field, c.Value, func(n int) bool { return n >= 0 })
}

func (m *matcher) VisitLessThan(c seal.LessThanCondition) error {
	return m.every(c.Field, c.Value, func(n int) bool { return n < 0 })
}

func (m *matcher) VisitLessThanEqual(c seal.LessThanEqualCondition) error {
	return m.every(c.Field, c.Value, func(n int) bool { return n <= 0 })
}

// every matches when the field holds at least one value and every value satisfies
// the bound.
func (m *matcher) every(field string, bound any, ok func(n int) bool) error {
	values := m.values(field)
	if len(values) == 0 {
		m.matched = false
		return nil
	}

	for _, v := range values {
		n, err := compareValues(v, bound)
		if err != nil {
			return errors.Wrapf(err, "field %q of document %q", field, m.entry.id)
		}
		if !ok(n) {
			m.matched = false
			return nil
		}
	}

	m.matched = true
	return nil
}

func contains(values []any, value any) bool {
	for _, v := range values {
		if equalValues(v, value) {
			return true
		}
	}
	return false
}
