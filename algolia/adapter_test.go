package algolia

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/schema"
	"github.com/letmevibethatforyou/seal/sealtest"
)

// fakeIndex records the calls the adapter makes.
type fakeIndex struct {
	saved    []interface{}
	deleted  []string
	query    string
	params   []interface{}
	settings search.Settings
	dropped  bool
	exists   bool
	hits     []map[string]interface{}
	err      error
}

func (f *fakeIndex) SaveObject(object interface{}, opts ...interface{}) (search.SaveObjectRes, error) {
	f.saved = append(f.saved, object)
	return search.SaveObjectRes{}, f.err
}

func (f *fakeIndex) DeleteObject(objectID string, opts ...interface{}) (search.DeleteTaskRes, error) {
	f.deleted = append(f.deleted, objectID)
	return search.DeleteTaskRes{}, f.err
}

func (f *fakeIndex) Search(query string, opts ...interface{}) (search.QueryRes, error) {
	f.query = query
	f.params = opts
	return search.QueryRes{Hits: f.hits, NbHits: len(f.hits)}, f.err
}

func (f *fakeIndex) SetSettings(settings search.Settings, opts ...interface{}) (search.UpdateTaskRes, error) {
	f.settings = settings
	return search.UpdateTaskRes{}, f.err
}

func (f *fakeIndex) Delete(opts ...interface{}) (search.DeleteTaskRes, error) {
	f.dropped = true
	return search.DeleteTaskRes{}, f.err
}

func (f *fakeIndex) Exists() (bool, error) {
	return f.exists, f.err
}

func newFakeAdapter(index *fakeIndex) *Adapter {
	return New(newClient(func(string) (Index, error) { return index, nil }))
}

func TestSaveNormalizesDocument(t *testing.T) {
	index := &fakeIndex{}
	a := newFakeAdapter(index)

	doc := seal.Document{
		"uuid":   "abc",
		"title":  "Hello",
		"unused": "dropped",
		"header": map[string]any{"type": "image", "media": "cover.png"},
	}

	task, err := a.Indexer().Save(context.Background(), sealtest.ComplexIndex(), doc)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if task != nil {
		t.Errorf("Expected no task without completion handle, got %v", task)
	}

	want := map[string]any{
		"objectID": "abc",
		"uuid":     "abc",
		"title":    "Hello",
		"header":   map[string]any{"type": "image", "media": "cover.png"},
	}
	if len(index.saved) != 1 || !reflect.DeepEqual(index.saved[0], want) {
		t.Errorf("Expected %v, got %v", want, index.saved)
	}
}

func TestSaveInvalidDocument(t *testing.T) {
	index := &fakeIndex{}
	a := newFakeAdapter(index)

	for name, doc := range map[string]seal.Document{
		"missing identifier": {"title": "Hello"},
		"list for scalar":    {"uuid": "abc", "title": []any{"a", "b"}},
	} {
		_, err := a.Indexer().Save(context.Background(), sealtest.ComplexIndex(), doc)
		if !errors.Is(err, seal.ErrInvalidDocument) {
			t.Errorf("%s: expected ErrInvalidDocument, got %v", name, err)
		}
	}
	if len(index.saved) != 0 {
		t.Errorf("Expected nothing saved, got %v", index.saved)
	}
}

func TestDeleteReturnsTask(t *testing.T) {
	index := &fakeIndex{}
	a := newFakeAdapter(index)

	task, err := a.Indexer().Delete(context.Background(), sealtest.SimpleIndex(), "1", seal.WithCompletionHandle())
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if task == nil {
		t.Error("Expected a task with completion handle")
	}
	if !reflect.DeepEqual(index.deleted, []string{"1"}) {
		t.Errorf("Expected delete of 1, got %v", index.deleted)
	}
}

func TestBuildFilters(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		conditions  []seal.Condition
		wantQuery   string
		wantFilters string
	}{
		{
			name:        "identifier",
			conditions:  []seal.Condition{seal.Identifier("abc")},
			wantFilters: `objectID:"abc"`,
		},
		{
			name:       "full text terms are joined",
			conditions: []seal.Condition{seal.FullText("new"), seal.FullText("blog")},
			wantQuery:  "new blog",
		},
		{
			name:        "equal string and number",
			conditions:  []seal.Condition{seal.Equal("tags", "UI"), seal.Equal("rating", 3.5)},
			wantFilters: `tags:"UI" AND rating = 3.5`,
		},
		{
			name:        "not equal",
			conditions:  []seal.Condition{seal.NotEqual("tags", `say "hi"`), seal.NotEqual("commentsCount", 2)},
			wantFilters: `NOT tags:"say \"hi\"" AND commentsCount != 2`,
		},
		{
			name:        "backslashes",
			conditions:  []seal.Condition{seal.Equal("path", `C:\`), seal.NotEqual("path", `a\"b`)},
			wantFilters: `path:"C:\\" AND NOT path:"a\\\"b"`,
		},
		{
			name: "ranges",
			conditions: []seal.Condition{
				seal.GreaterThan("rating", 1),
				seal.GreaterThanEqual("rating", 1.5),
				seal.LessThan("created", created),
				seal.LessThanEqual("my field", 4),
			},
			wantFilters: `rating > 1 AND rating >= 1.5 AND created < 1704153600 AND "my field" <= 4`,
		},
		{
			name:        "boolean",
			conditions:  []seal.Condition{seal.Equal("published", true)},
			wantFilters: `published:"true"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, filters, err := buildFilters(tt.conditions)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if query != tt.wantQuery {
				t.Errorf("Expected query %q, got %q", tt.wantQuery, query)
			}
			if filters != tt.wantFilters {
				t.Errorf("Expected filters %q, got %q", tt.wantFilters, filters)
			}
		})
	}
}

func TestBuildFiltersRangeMismatch(t *testing.T) {
	_, _, err := buildFilters([]seal.Condition{seal.GreaterThan("title", "abc")})
	if !errors.Is(err, seal.ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	index := &fakeIndex{
		hits: []map[string]interface{}{
			{"objectID": "1", "id": "1", "title": "First", "_highlightResult": map[string]any{}},
			{"objectID": "2", "id": "2", "title": "Second"},
		},
	}
	a := newFakeAdapter(index)

	s := seal.NewSearch([]*schema.Index{sealtest.SimpleIndex()},
		seal.FullText("First"),
		seal.Equal("title", "First"),
		seal.WithOffset(5),
		seal.WithSort("title", seal.Asc),
	)
	res, err := a.Searcher().Search(context.Background(), s)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if index.query != "First" {
		t.Errorf("Expected query First, got %q", index.query)
	}

	var filters string
	var offset, length int
	for _, p := range index.params {
		switch p := p.(type) {
		case *opt.FiltersOption:
			filters = p.Get()
		case *opt.OffsetOption:
			offset = p.Get()
		case *opt.LengthOption:
			length = p.Get()
		}
	}
	if filters != `title:"First"` {
		t.Errorf("Expected title filter, got %q", filters)
	}
	if offset != 5 || length != maxLength {
		t.Errorf("Expected offset 5 and length %d, got %d and %d", maxLength, offset, length)
	}

	if res.Total() != 2 {
		t.Errorf("Expected total 2, got %d", res.Total())
	}
	want := []seal.Document{{"id": "1", "title": "First"}, {"id": "2", "title": "Second"}}
	if got := res.Collect(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSearchErrors(t *testing.T) {
	simple := sealtest.SimpleIndex()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name  string
		ctx   context.Context
		index *fakeIndex
		s     *seal.Search
		want  error
	}{
		{
			name:  "multiple indexes",
			ctx:   context.Background(),
			index: &fakeIndex{},
			s:     seal.NewSearch([]*schema.Index{simple, sealtest.ComplexIndex()}),
			want:  seal.ErrNotImplemented,
		},
		{
			name:  "canceled",
			ctx:   canceled,
			index: &fakeIndex{},
			s:     seal.NewSearch([]*schema.Index{simple}),
			want:  seal.ErrCanceled,
		},
		{
			name:  "backend failure",
			ctx:   context.Background(),
			index: &fakeIndex{err: errors.New("503")},
			s:     seal.NewSearch([]*schema.Index{simple}),
			want:  seal.ErrBackendUnavailable,
		},
		{
			name:  "invalid limit",
			ctx:   context.Background(),
			index: &fakeIndex{},
			s:     seal.NewSearch([]*schema.Index{simple}, seal.WithLimit(-1)),
			want:  seal.ErrInvalidOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFakeAdapter(tt.index).Searcher().Search(tt.ctx, tt.s)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClientUnavailable(t *testing.T) {
	a := New(NewClient(StaticSecrets("", "")))

	_, err := a.SchemaManager().ExistIndex(context.Background(), sealtest.SimpleIndex())
	if !errors.Is(err, seal.ErrBackendUnavailable) {
		t.Errorf("Expected ErrBackendUnavailable, got %v", err)
	}
}

func TestIndexSettings(t *testing.T) {
	settings := indexSettings(sealtest.ComplexIndex())

	wantSearchable := []string{
		"uuid", "title", "header.media", "article",
		"blocks.title", "blocks.media", "blocks.description",
		"footer.title", "created", "commentsCount", "rating",
		"comments.text", "tags", "categoryIds",
	}
	if got := settings.SearchableAttributes.Get(); !reflect.DeepEqual(got, wantSearchable) {
		t.Errorf("Expected searchable attributes %v, got %v", wantSearchable, got)
	}

	wantFacets := []string{
		"filterOnly(title)", "filterOnly(article)", "filterOnly(created)",
		"filterOnly(commentsCount)", "filterOnly(rating)", "filterOnly(tags)", "filterOnly(categoryIds)",
	}
	if got := settings.AttributesForFaceting.Get(); !reflect.DeepEqual(got, wantFacets) {
		t.Errorf("Expected facets %v, got %v", wantFacets, got)
	}
}

func TestSchemaManager(t *testing.T) {
	index := &fakeIndex{exists: true}
	m := newFakeAdapter(index).SchemaManager()
	ctx := context.Background()

	if _, err := m.CreateIndex(ctx, sealtest.SimpleIndex()); err != nil {
		t.Fatalf("CreateIndex failed: %v", err)
	}
	if got := index.settings.SearchableAttributes.Get(); !reflect.DeepEqual(got, []string{"id", "title"}) {
		t.Errorf("Expected id and title to be searchable, got %v", got)
	}

	exists, err := m.ExistIndex(ctx, sealtest.SimpleIndex())
	if err != nil || !exists {
		t.Errorf("Expected index to exist, got %v (%v)", exists, err)
	}

	if _, err := m.DropIndex(ctx, sealtest.SimpleIndex()); err != nil {
		t.Fatalf("DropIndex failed: %v", err)
	}
	if !index.dropped {
		t.Error("Expected index to be dropped")
	}
}
