package algolia

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
)

// filterBuilder translates seal conditions into an Algolia query and filter string.
// Full text conditions become the query; all other conditions are joined with AND.
type filterBuilder struct {
	terms   []string
	filters []string
	visited bool
}

func buildFilters(conditions []seal.Condition) (query, filters string, err error) {
	b := &filterBuilder{}
	for _, c := range conditions {
		b.visited = false
		if err := c.Accept(b); err != nil {
			return "", "", err
		}
		if !b.visited {
			return "", "", errors.Wrapf(seal.ErrNotImplemented, "filter %T", c)
		}
	}
	return strings.Join(b.terms, " "), strings.Join(b.filters, " AND "), nil
}

func (b *filterBuilder) VisitIdentifier(c seal.IdentifierCondition) error {
	b.visited = true
	b.filters = append(b.filters, "objectID:"+escapeValue(c.Identifier))
	return nil
}

func (b *filterBuilder) VisitSearch(c seal.SearchCondition) error {
	b.visited = true
	b.terms = append(b.terms, c.Query)
	return nil
}

func (b *filterBuilder) VisitEqual(c seal.EqualCondition) error {
	b.visited = true
	if n, ok := numericValue(c.Value); ok {
		b.filters = append(b.filters, fmt.Sprintf("%s = %s", escapeField(c.Field), n))
		return nil
	}
	b.filters = append(b.filters, fmt.Sprintf("%s:%s", escapeField(c.Field), escapeValue(c.Value)))
	return nil
}

func (b *filterBuilder) VisitNotEqual(c seal.NotEqualCondition) error {
	b.visited = true
	if n, ok := numericValue(c.Value); ok {
		b.filters = append(b.filters, fmt.Sprintf("%s != %s", escapeField(c.Field), n))
		return nil
	}
	b.filters = append(b.filters, fmt.Sprintf("NOT %s:%s", escapeField(c.Field), escapeValue(c.Value)))
	return nil
}

func (b *filterBuilder) VisitGreaterThan(c seal.GreaterThanCondition) error {
	return b.numeric(c.Field, ">", c.Value)
}

func (b *filterBuilder) VisitGreaterThanEqual(c seal.GreaterThanEqualCondition) error {
	return b.numeric(c.Field, ">=", c.Value)
}

func (b *filterBuilder) VisitLessThan(c seal.LessThanCondition) error {
	return b.numeric(c.Field, "<", c.Value)
}

func (b *filterBuilder) VisitLessThanEqual(c seal.LessThanEqualCondition) error {
	return b.numeric(c.Field, "<=", c.Value)
}

// numeric adds a numeric comparison. Algolia only compares numbers, so dates are
// sent as Unix timestamps and anything else is rejected.
func (b *filterBuilder) numeric(field, op string, value any) error {
	b.visited = true
	n, ok := numericValue(value)
	if !ok {
		return errors.Wrapf(seal.ErrTypeMismatch, "algolia can only compare %q with numbers or dates, got %T", field, value)
	}
	b.filters = append(b.filters, fmt.Sprintf("%s %s %s", escapeField(field), op, n))
	return nil
}

// escapeField escapes field names for Algolia filters
func escapeField(field string) string {
	if strings.ContainsAny(field, " :-()") {
		return fmt.Sprintf(`"%s"`, field)
	}
	return field
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escapeValue quotes values for facet filters
func escapeValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return `"` + valueEscaper.Replace(v) + `"`
	case bool:
		return `"` + strconv.FormatBool(v) + `"`
	default:
		return fmt.Sprintf(`"%v"`, value)
	}
}

// numericValue formats numbers and dates for numeric filters.
func numericValue(value any) (string, bool) {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return strconv.FormatInt(v.Unix(), 10), true
	default:
		return "", false
	}
}
