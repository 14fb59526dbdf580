package seal

import (
	"context"

	"github.com/letmevibethatforyou/seal/schema"
)

// Indexer writes documents to a backend.
type Indexer interface {
	// Save inserts or overwrites a document, keyed by the index's identifier field.
	Save(ctx context.Context, index *schema.Index, doc Document, opts ...WriteOption) (Task, error)
	// Delete removes the document with the given identifier.
	Delete(ctx context.Context, index *schema.Index, identifier string, opts ...WriteOption) (Task, error)
}

// Searcher executes searches against a backend.
type Searcher interface {
	Search(ctx context.Context, search *Search) (*Result, error)
}

// SearcherFunc is a function type that implements the Searcher interface.
// This allows using a function as a Searcher, similar to http.HandlerFunc.
type SearcherFunc func(context.Context, *Search) (*Result, error)

// Search implements the Searcher interface for SearcherFunc.
func (f SearcherFunc) Search(ctx context.Context, search *Search) (*Result, error) {
	return f(ctx, search)
}

// SchemaManager manages the lifecycle of indexes in a backend.
type SchemaManager interface {
	CreateIndex(ctx context.Context, index *schema.Index, opts ...WriteOption) (Task, error)
	DropIndex(ctx context.Context, index *schema.Index, opts ...WriteOption) (Task, error)
	ExistIndex(ctx context.Context, index *schema.Index) (bool, error)
}

// Adapter bundles the capabilities a backend provides.
type Adapter interface {
	Indexer() Indexer
	Searcher() Searcher
	SchemaManager() SchemaManager
}

// WriteConfig holds options for write operations.
type WriteConfig struct {
	// ReturnTask requests a completion handle. Without it writes are fire-and-forget
	// and return a nil Task.
	ReturnTask bool
}

// WriteOption configures a write operation.
type WriteOption func(*WriteConfig)

// WithCompletionHandle requests a Task that resolves once the write is durable.
func WithCompletionHandle() WriteOption {
	return func(cfg *WriteConfig) {
		cfg.ReturnTask = true
	}
}

// ApplyWriteOptions folds the options into a WriteConfig.
func ApplyWriteOptions(opts []WriteOption) WriteConfig {
	var cfg WriteConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
