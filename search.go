package seal

import (
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal/schema"
)

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*Search)
}

// Direction is the order of a sort key.
type Direction string

const (
	// Asc sorts in ascending natural order.
	Asc Direction = "asc"
	// Desc sorts in descending natural order.
	Desc Direction = "desc"
)

// SortBy is one key of a composite sort.
type SortBy struct {
	// Field is the name of the field to sort by.
	Field string
	// Direction is the order for this key.
	Direction Direction
}

// Search is a structured query against one or more indexes.
type Search struct {
	// Indexes are searched in order; documents are joined in index order.
	Indexes []*schema.Index

	// Filters are combined with AND.
	Filters []Condition

	// SortBys lists sort keys from primary to least significant.
	SortBys []SortBy

	// Offset specifies the number of results to skip for pagination.
	Offset int

	// Limit specifies the maximum number of results to return. Zero means unbounded.
	Limit int
}

// NewSearch creates a Search over the given indexes.
func NewSearch(indexes []*schema.Index, opts ...SearchOption) *Search {
	s := &Search{Indexes: indexes}
	for _, opt := range opts {
		opt.Apply(s)
	}
	return s
}

// Validate checks the request independently of any backend.
func (s *Search) Validate() error {
	if len(s.Indexes) == 0 {
		return errors.Wrap(ErrInvalidOption, "at least one index is required")
	}
	for i, idx := range s.Indexes {
		if idx == nil {
			return errors.Wrapf(ErrInvalidOption, "index %d is nil", i)
		}
	}
	if s.Offset < 0 {
		return errors.Wrapf(ErrInvalidOption, "offset must not be negative, got %d", s.Offset)
	}
	if s.Limit < 0 {
		return errors.Wrapf(ErrInvalidOption, "limit must not be negative, got %d", s.Limit)
	}
	for _, sb := range s.SortBys {
		if sb.Field == "" {
			return errors.Wrap(ErrInvalidOption, "sort field is required")
		}
		if sb.Direction != Asc && sb.Direction != Desc {
			return errors.Wrapf(ErrInvalidOption, "unknown sort direction %q for field %q", sb.Direction, sb.Field)
		}
	}
	for _, f := range s.Filters {
		if f == nil {
			return errors.Wrap(ErrInvalidOption, "nil filter")
		}
	}
	return nil
}

// optionFunc is a function that implements SearchOption.
type optionFunc func(*Search)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(s *Search) {
	f(s)
}

// WithLimit sets the maximum number of results to return.
func WithLimit(n int) SearchOption {
	return optionFunc(func(s *Search) {
		s.Limit = n
	})
}

// WithOffset sets the number of results to skip for pagination.
func WithOffset(n int) SearchOption {
	return optionFunc(func(s *Search) {
		s.Offset = n
	})
}

// WithSort appends a sort key. Keys added first take precedence.
func WithSort(field string, direction Direction) SearchOption {
	return optionFunc(func(s *Search) {
		s.SortBys = append(s.SortBys, SortBy{Field: field, Direction: direction})
	})
}
