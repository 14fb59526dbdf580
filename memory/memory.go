// Package memory is the in-process reference backend. It stores documents in memory
// and answers the complete query model: identifier lookup, full text, equality and
// range filters, multi-key sort and pagination. Other backends are checked against it.
//
// Documents are kept in the uniform internal shape produced by the marshaller package,
// where every field holds a list. Equality filters match when any stored value equals
// the filter value; range filters match only when the field holds values and all of
// them satisfy the bound.
package memory

import (
	"log/slog"

	"github.com/letmevibethatforyou/seal"
)

// DefaultProjectionCacheSize is the number of rendered full-text projections kept.
const DefaultProjectionCacheSize = 1024

type config struct {
	storage   *Storage
	logger    *slog.Logger
	cacheSize int
}

// Option configures the memory adapter.
type Option func(*config)

// WithStorage makes the adapter use an existing storage, for example to share it
// between adapters.
func WithStorage(storage *Storage) Option {
	return func(c *config) {
		c.storage = storage
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProjectionCache sets how many full-text projections are cached. 0 disables the cache.
func WithProjectionCache(size int) Option {
	return func(c *config) {
		c.cacheSize = size
	}
}

// Adapter implements seal.Adapter in memory.
type Adapter struct {
	storage       *Storage
	indexer       *Indexer
	searcher      *Searcher
	schemaManager *SchemaManager
}

// New creates a memory adapter. Without WithStorage it starts with an empty storage.
func New(opts ...Option) (*Adapter, error) {
	cfg := &config{
		logger:    slog.Default(),
		cacheSize: DefaultProjectionCacheSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.storage == nil {
		cfg.storage = NewStorage()
	}

	projections, err := newProjector(cfg.cacheSize)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		storage:       cfg.storage,
		indexer:       &Indexer{storage: cfg.storage, logger: cfg.logger},
		searcher:      &Searcher{storage: cfg.storage, projections: projections, logger: cfg.logger},
		schemaManager: &SchemaManager{storage: cfg.storage},
	}, nil
}

// Storage returns the storage backing the adapter.
func (a *Adapter) Storage() *Storage { return a.storage }

func (a *Adapter) Indexer() seal.Indexer             { return a.indexer }
func (a *Adapter) Searcher() seal.Searcher           { return a.searcher }
func (a *Adapter) SchemaManager() seal.SchemaManager { return a.schemaManager }

var _ seal.Adapter = (*Adapter)(nil)
