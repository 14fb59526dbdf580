package memory

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
)

// entry is a stored document in internal shape. Entries are never mutated after they
// are stored; an overwrite replaces the entry.
type entry struct {
	id       string
	doc      map[string]any
	revision uint64
}

// store is the ordered collection of documents of a single index.
type store struct {
	entries   []entry
	positions map[string]int // maps identifier to position in entries
}

func newStore() *store {
	return &store{
		entries:   make([]entry, 0),
		positions: make(map[string]int),
	}
}

// Storage holds the documents of every index in process memory.
// A single lock guards all indexes, so each save, delete and search is atomic
// with respect to every store it touches.
type Storage struct {
	mu       sync.RWMutex
	indexes  map[string]*store
	revision uint64
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{
		indexes: make(map[string]*store),
	}
}

// CreateIndex allocates an empty store for the index. Creating an existing index keeps
// its documents.
func (s *Storage) CreateIndex(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[name]; !exists {
		s.indexes[name] = newStore()
	}
}

// DropIndex discards the index and all of its documents.
// Returns false if the index did not exist.
func (s *Storage) DropIndex(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.indexes[name]; !exists {
		return false
	}
	delete(s.indexes, name)
	return true
}

// HasIndex reports whether the index has been created.
func (s *Storage) HasIndex(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.indexes[name]
	return exists
}

// Save inserts or overwrites a document. An overwrite keeps the document's position.
func (s *Storage) Save(index, id string, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.lookup(index)
	if err != nil {
		return err
	}

	s.revision++
	e := entry{id: id, doc: doc, revision: s.revision}

	if pos, exists := st.positions[id]; exists {
		st.entries[pos] = e
		return nil
	}

	st.positions[id] = len(st.entries)
	st.entries = append(st.entries, e)
	return nil
}

// Delete removes a document. Returns false if the document was not found.
func (s *Storage) Delete(index, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.lookup(index)
	if err != nil {
		return false, err
	}

	pos, exists := st.positions[id]
	if !exists {
		return false, nil
	}

	st.entries = append(st.entries[:pos], st.entries[pos+1:]...)

	delete(st.positions, id)
	for i := pos; i < len(st.entries); i++ {
		st.positions[st.entries[i].id] = i
	}

	return true, nil
}

// Len returns the number of documents stored in the index.
func (s *Storage) Len(index string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, err := s.lookup(index)
	if err != nil {
		return 0, err
	}
	return len(st.entries), nil
}

// scan calls fn for every document of the given indexes, index by index in the given
// order and in insertion order within an index. The read lock is held for the whole
// scan. Every index is resolved before fn is first called.
func (s *Storage) scan(indexes []string, fn func(pos int, e entry) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stores := make([]*store, len(indexes))
	for i, name := range indexes {
		st, err := s.lookup(name)
		if err != nil {
			return err
		}
		stores[i] = st
	}

	for i, st := range stores {
		for _, e := range st.entries {
			if err := fn(i, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// lookup must be called with s.mu held.
func (s *Storage) lookup(name string) (*store, error) {
	st, exists := s.indexes[name]
	if !exists {
		return nil, errors.Wrapf(seal.ErrIndexNotFound, "index %q has not been created", name)
	}
	return st, nil
}
