package memory

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/schema"
)

type match struct {
	index *schema.Index
	entry entry
}

// sortMatches orders matches by the sort keys, the first key being the primary one.
// One stable pass runs per key from the last key to the first, so earlier keys
// dominate and later keys only break their ties. Matches keep their collection order
// when all keys are equal.
func sortMatches(matches []match, sortBys []seal.SortBy) error {
	for i := len(sortBys) - 1; i >= 0; i-- {
		sb := sortBys[i]

		var err error
		sort.SliceStable(matches, func(a, b int) bool {
			n, cmpErr := compareSortValues(sortValue(matches[a], sb.Field), sortValue(matches[b], sb.Field))
			if cmpErr != nil {
				if err == nil {
					err = errors.Wrapf(cmpErr, "failed to sort by %q", sb.Field)
				}
				return false
			}
			if sb.Direction == seal.Desc {
				return n > 0
			}
			return n < 0
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// sortValue is the first stored value of the field, or nil when absent.
func sortValue(m match, field string) any {
	values, _ := m.entry.doc[field].([]any)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

func validateSort(index *schema.Index, sortBys []seal.SortBy) error {
	for _, sb := range sortBys {
		if err := checkScalarField(index, sb.Field); err != nil {
			return errors.Wrap(err, "sort")
		}
	}
	return nil
}
