// Package seal is a backend-agnostic document search abstraction. A Schema of indexes
// and typed fields is written to and queried through an Engine; each search engine
// plugs in as an Adapter providing an Indexer, a Searcher and a SchemaManager.
package seal

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal/schema"
)

// Engine resolves index names against a schema and delegates to an adapter.
type Engine struct {
	adapter Adapter
	schema  *schema.Schema
	logger  *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used by the engine. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine.
func NewEngine(adapter Adapter, s *schema.Schema, opts ...EngineOption) *Engine {
	e := &Engine{
		adapter: adapter,
		schema:  s,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the engine's schema.
func (e *Engine) Schema() *schema.Schema {
	return e.schema
}

// SaveDocument inserts or overwrites a document in the named index.
func (e *Engine) SaveDocument(ctx context.Context, index string, doc Document, opts ...WriteOption) (Task, error) {
	idx, err := e.schema.Index(index)
	if err != nil {
		return nil, err
	}
	return e.adapter.Indexer().Save(ctx, idx, doc, opts...)
}

// DeleteDocument removes a document from the named index.
func (e *Engine) DeleteDocument(ctx context.Context, index, identifier string, opts ...WriteOption) (Task, error) {
	idx, err := e.schema.Index(index)
	if err != nil {
		return nil, err
	}
	return e.adapter.Indexer().Delete(ctx, idx, identifier, opts...)
}

// GetDocument loads a single document by identifier. It returns ErrDocumentNotFound
// when the index holds no such document.
func (e *Engine) GetDocument(ctx context.Context, index, identifier string) (Document, error) {
	res, err := e.Search(ctx, []string{index}, Identifier(identifier), WithLimit(1))
	if err != nil {
		return nil, err
	}

	for doc := range res.Documents() {
		return doc, nil
	}

	return nil, errors.Wrapf(ErrDocumentNotFound, "document with the identifier %q not found in index %q", identifier, index)
}

// Search runs a search over the named indexes. Unknown index names fail before the
// backend is called.
func (e *Engine) Search(ctx context.Context, indexes []string, opts ...SearchOption) (*Result, error) {
	resolved := make([]*schema.Index, 0, len(indexes))
	for _, name := range indexes {
		idx, err := e.schema.Index(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, idx)
	}

	search := NewSearch(resolved, opts...)
	if err := search.Validate(); err != nil {
		return nil, err
	}

	return e.adapter.Searcher().Search(ctx, search)
}

// CreateIndex creates the named index in the backend.
func (e *Engine) CreateIndex(ctx context.Context, index string, opts ...WriteOption) (Task, error) {
	idx, err := e.schema.Index(index)
	if err != nil {
		return nil, err
	}
	return e.adapter.SchemaManager().CreateIndex(ctx, idx, opts...)
}

// DropIndex drops the named index from the backend.
func (e *Engine) DropIndex(ctx context.Context, index string, opts ...WriteOption) (Task, error) {
	idx, err := e.schema.Index(index)
	if err != nil {
		return nil, err
	}
	return e.adapter.SchemaManager().DropIndex(ctx, idx, opts...)
}

// ExistIndex reports whether the named index exists in the backend.
func (e *Engine) ExistIndex(ctx context.Context, index string) (bool, error) {
	idx, err := e.schema.Index(index)
	if err != nil {
		return false, err
	}
	return e.adapter.SchemaManager().ExistIndex(ctx, idx)
}

// CreateSchema creates every index of the schema.
func (e *Engine) CreateSchema(ctx context.Context, opts ...WriteOption) (Task, error) {
	return e.eachIndex(ctx, "create", e.adapter.SchemaManager().CreateIndex, opts)
}

// DropSchema drops every index of the schema.
func (e *Engine) DropSchema(ctx context.Context, opts ...WriteOption) (Task, error) {
	return e.eachIndex(ctx, "drop", e.adapter.SchemaManager().DropIndex, opts)
}

func (e *Engine) eachIndex(
	ctx context.Context,
	action string,
	fn func(context.Context, *schema.Index, ...WriteOption) (Task, error),
	opts []WriteOption,
) (Task, error) {
	var tasks []Task
	for _, idx := range e.schema.Indexes() {
		t, err := fn(ctx, idx, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to %s index %s", action, idx.Name())
		}
		tasks = append(tasks, t)
	}

	if !ApplyWriteOptions(opts).ReturnTask {
		return nil, nil
	}
	return MultiTask(tasks...), nil
}
