package algolia

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/marshaller"
	"github.com/letmevibethatforyou/seal/schema"
)

// maxLength is the largest page Algolia returns with offset pagination.
const maxLength = 1000

// Adapter implements seal.Adapter on Algolia. Each seal index maps to the Algolia
// index of the same name and each document identifier to the objectID.
type Adapter struct {
	client *Client
	logger *slog.Logger
}

// Option configures the adapter.
type Option func(*Adapter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New creates an Algolia adapter.
func New(client *Client, opts ...Option) *Adapter {
	a := &Adapter{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Indexer() seal.Indexer             { return (*indexer)(a) }
func (a *Adapter) Searcher() seal.Searcher           { return (*searcher)(a) }
func (a *Adapter) SchemaManager() seal.SchemaManager { return (*schemaManager)(a) }

type indexer Adapter

func (i *indexer) Save(ctx context.Context, index *schema.Index, doc seal.Document, opts ...seal.WriteOption) (seal.Task, error) {
	internal, err := marshaller.Marshal(index.Fields(), doc)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(seal.ErrInvalidDocument, "index %q", index.Name()), err)
	}

	id, ok := marshaller.Identifier(index, internal)
	if !ok {
		return nil, errors.Wrapf(seal.ErrInvalidDocument, "document for index %q has no %q identifier",
			index.Name(), index.IdentifierField().Name())
	}

	object := marshaller.Unmarshal(index.Fields(), internal)
	object["objectID"] = id

	res, err := i.client.SaveObject(ctx, index.Name(), object)
	if err != nil {
		return nil, err
	}
	return task(opts, res.Wait), nil
}

func (i *indexer) Delete(ctx context.Context, index *schema.Index, identifier string, opts ...seal.WriteOption) (seal.Task, error) {
	res, err := i.client.DeleteObject(ctx, index.Name(), identifier)
	if err != nil {
		return nil, err
	}
	return task(opts, res.Wait), nil
}

type searcher Adapter

// Search implements the seal.Searcher interface. Only a single index can be searched
// at a time, and sorting needs replica indexes so it is ignored.
func (s *searcher) Search(ctx context.Context, search *seal.Search) (*seal.Result, error) {
	if err := search.Validate(); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, seal.ErrCanceled
	default:
	}

	if len(search.Indexes) != 1 {
		return nil, errors.Wrapf(seal.ErrNotImplemented, "algolia searches one index at a time, got %d", len(search.Indexes))
	}
	index := search.Indexes[0]

	if len(search.SortBys) > 0 {
		s.logger.WarnContext(ctx, "algolia sorting requires replica indexes, ignoring sort",
			"index", index.Name(), "sort", search.SortBys)
	}

	query, params, err := buildSearchParams(search)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(ctx, index.Name(), query, params...)
	if err != nil {
		if errors.IsAny(err, context.Canceled, context.DeadlineExceeded) {
			return nil, errors.WithSecondaryError(seal.ErrCanceled, err)
		}
		if errors.Is(err, seal.ErrBackendUnavailable) {
			return nil, err
		}
		return nil, errors.WithSecondaryError(seal.ErrBackendUnavailable, err)
	}

	docs := make([]seal.Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, err := hitToDocument(index, hit)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return seal.SliceResult(res.NbHits, docs), nil
}

// buildSearchParams converts a search into an Algolia query and parameters.
func buildSearchParams(search *seal.Search) (string, []interface{}, error) {
	query, filters, err := buildFilters(search.Filters)
	if err != nil {
		return "", nil, err
	}

	var params []interface{}
	if filters != "" {
		params = append(params, opt.Filters(filters))
	}

	if search.Offset > 0 || search.Limit > 0 {
		length := search.Limit
		if length == 0 || length > maxLength {
			length = maxLength
		}
		params = append(params, opt.Offset(search.Offset), opt.Length(length))
	}

	return query, params, nil
}

// hitToDocument drops Algolia metadata such as objectID and highlights by passing
// the hit through the index fields.
func hitToDocument(index *schema.Index, hit map[string]interface{}) (seal.Document, error) {
	internal, err := marshaller.Marshal(index.Fields(), hit)
	if err != nil {
		return nil, errors.WithSecondaryError(
			errors.Wrapf(seal.ErrInvalidDocument, "hit %v of index %q", hit["objectID"], index.Name()), err)
	}
	return marshaller.Unmarshal(index.Fields(), internal), nil
}

type schemaManager Adapter

func (m *schemaManager) CreateIndex(ctx context.Context, index *schema.Index, opts ...seal.WriteOption) (seal.Task, error) {
	res, err := m.client.SetSettings(ctx, index.Name(), indexSettings(index))
	if err != nil {
		return nil, err
	}
	return task(opts, res.Wait), nil
}

func (m *schemaManager) DropIndex(ctx context.Context, index *schema.Index, opts ...seal.WriteOption) (seal.Task, error) {
	res, err := m.client.DeleteIndex(ctx, index.Name())
	if err != nil {
		return nil, err
	}
	return task(opts, res.Wait), nil
}

func (m *schemaManager) ExistIndex(ctx context.Context, index *schema.Index) (bool, error) {
	return m.client.IndexExists(ctx, index.Name())
}

// indexSettings makes searchable leaf fields searchable and top-level scalar fields
// filterable.
func indexSettings(index *schema.Index) search.Settings {
	var facets []string
	for _, f := range index.Fields() {
		if sf, ok := f.(*schema.ScalarField); ok && sf != index.IdentifierField() {
			facets = append(facets, "filterOnly("+f.Name()+")")
		}
	}

	return search.Settings{
		SearchableAttributes:  opt.SearchableAttributes(searchableAttributes("", index.Fields())...),
		AttributesForFaceting: opt.AttributesForFaceting(facets...),
	}
}

func searchableAttributes(prefix string, fields []schema.Field) []string {
	var attrs []string
	seen := make(map[string]bool)
	add := func(attr string) {
		if !seen[attr] {
			seen[attr] = true
			attrs = append(attrs, attr)
		}
	}

	for _, f := range fields {
		if !f.Searchable() {
			continue
		}
		path := prefix + f.Name()

		switch field := f.(type) {
		case *schema.ScalarField:
			add(path)
		case *schema.ObjectField:
			for _, attr := range searchableAttributes(path+schema.PathSeparator, field.Fields()) {
				add(attr)
			}
		case *schema.TypedField:
			for _, tag := range slices.Sorted(maps.Keys(field.Types())) {
				variant, _ := field.Variant(tag)
				for _, attr := range searchableAttributes(path+schema.PathSeparator, variant) {
					add(attr)
				}
			}
		}
	}
	return attrs
}

// task wraps an Algolia wait function when a completion handle was requested.
func task(opts []seal.WriteOption, wait func(opts ...interface{}) error) seal.Task {
	if !seal.ApplyWriteOptions(opts).ReturnTask {
		return nil
	}
	return seal.TaskFunc(func(context.Context) error {
		if err := wait(); err != nil {
			return errors.WithSecondaryError(seal.ErrBackendUnavailable, errors.Wrap(err, "failed to wait for algolia task"))
		}
		return nil
	})
}

var _ seal.Adapter = (*Adapter)(nil)
