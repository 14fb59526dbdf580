package schema

import "github.com/cockroachdb/errors"

// Schema is the ordered set of indexes known to an engine.
type Schema struct {
	indexes []*Index
	byName  map[string]*Index
}

// NewSchema creates a Schema. Index names must be unique.
func NewSchema(indexes ...*Index) (*Schema, error) {
	s := &Schema{
		indexes: make([]*Index, 0, len(indexes)),
		byName:  make(map[string]*Index, len(indexes)),
	}

	for _, idx := range indexes {
		if idx == nil {
			return nil, errors.Wrap(ErrInvalidSchema, "nil index")
		}
		if _, dup := s.byName[idx.Name()]; dup {
			return nil, errors.Wrapf(ErrInvalidSchema, "duplicate index %q", idx.Name())
		}
		s.byName[idx.Name()] = idx
		s.indexes = append(s.indexes, idx)
	}

	return s, nil
}

// Index returns the index with the given name.
func (s *Schema) Index(name string) (*Index, error) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrIndexNotFound, "index %q", name)
	}
	return idx, nil
}

// Indexes returns all indexes in declaration order.
func (s *Schema) Indexes() []*Index {
	out := make([]*Index, len(s.indexes))
	copy(out, s.indexes)
	return out
}
