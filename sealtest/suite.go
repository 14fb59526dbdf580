package sealtest

import (
	"context"
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
)

// AdapterFactory returns a fresh adapter with no indexes.
type AdapterFactory func(t *testing.T) seal.Adapter

// Setup creates the fixture schema on a fresh adapter, loads the complex documents
// and returns an engine for it.
func Setup(t *testing.T, factory AdapterFactory) (*seal.Engine, []seal.Document) {
	t.Helper()

	ctx := context.Background()
	engine := seal.NewEngine(factory(t), Schema())

	task, err := engine.CreateSchema(ctx, seal.WithCompletionHandle())
	if err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := task.Wait(ctx); err != nil {
		t.Fatalf("Failed to wait for schema: %v", err)
	}

	docs := ComplexDocuments()
	var tasks []seal.Task
	for _, doc := range docs {
		task, err := engine.SaveDocument(ctx, IndexComplex, doc, seal.WithCompletionHandle())
		if err != nil {
			t.Fatalf("Failed to save document %v: %v", doc["uuid"], err)
		}
		tasks = append(tasks, task)
	}
	if err := seal.MultiTask(tasks...).Wait(ctx); err != nil {
		t.Fatalf("Failed to wait for documents: %v", err)
	}

	return engine, docs
}

// TestSearcher runs the searcher conformance suite against adapters from factory.
// Backends are free to return unsorted matches in any order.
func TestSearcher(t *testing.T, factory AdapterFactory) {
	ctx := context.Background()

	t.Run("FindMultipleIndexes", func(t *testing.T) {
		engine, _ := Setup(t, factory)
		doc := SimpleDocuments()[0]

		task, err := engine.SaveDocument(ctx, IndexSimple, doc, seal.WithCompletionHandle())
		if err != nil {
			t.Fatalf("Failed to save document: %v", err)
		}
		if err := task.Wait(ctx); err != nil {
			t.Fatalf("Failed to wait: %v", err)
		}

		res, err := engine.Search(ctx, []string{IndexComplex, IndexSimple}, seal.Identifier("1"))
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		got := res.Collect()
		if len(got) != 1 || !reflect.DeepEqual(got[0], doc) {
			t.Errorf("Expected [%v], got %v", doc, got)
		}
	})

	t.Run("IdentifierRoundTrip", func(t *testing.T) {
		engine, docs := Setup(t, factory)

		for _, doc := range docs {
			id := doc["uuid"].(string)
			loaded, err := engine.GetDocument(ctx, IndexComplex, id)
			if err != nil {
				t.Fatalf("GetDocument(%s) failed: %v", id, err)
			}
			if !reflect.DeepEqual(loaded, doc) {
				t.Errorf("Expected %v, got %v", doc, loaded)
			}
		}
	})

	t.Run("DeleteRemoves", func(t *testing.T) {
		engine, docs := Setup(t, factory)
		id := docs[0]["uuid"].(string)

		task, err := engine.DeleteDocument(ctx, IndexComplex, id, seal.WithCompletionHandle())
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := task.Wait(ctx); err != nil {
			t.Fatalf("Failed to wait: %v", err)
		}

		res, err := engine.Search(ctx, []string{IndexComplex}, seal.Identifier(id))
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if res.Total() != 0 {
			t.Errorf("Expected total 0, got %d", res.Total())
		}
		if got := res.Collect(); len(got) != 0 {
			t.Errorf("Expected no documents, got %v", got)
		}

		if _, err := engine.GetDocument(ctx, IndexComplex, id); !errors.Is(err, seal.ErrDocumentNotFound) {
			t.Errorf("Expected ErrDocumentNotFound, got %v", err)
		}
	})

	t.Run("SearchCondition", func(t *testing.T) {
		engine, docs := Setup(t, factory)

		expectDocuments(t, engine, []seal.Document{docs[0], docs[1]}, seal.FullText("Blog"))
		expectDocuments(t, engine, []seal.Document{docs[2]}, seal.FullText("Thing"))
	})

	t.Run("NoneSearchableFields", func(t *testing.T) {
		engine, _ := Setup(t, factory)

		expectDocuments(t, engine, nil, seal.FullText("admin.nonesearchablefield@localhost"))
	})

	t.Run("LimitAndOffset", func(t *testing.T) {
		engine, docs := Setup(t, factory)

		first, err := engine.Search(ctx, []string{IndexComplex}, seal.FullText("Blog"), seal.WithLimit(1))
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		page1 := first.Collect()
		if len(page1) != 1 {
			t.Fatalf("Expected 1 document, got %d", len(page1))
		}
		if first.Total() != 2 {
			t.Errorf("Expected total 2, got %d", first.Total())
		}

		second, err := engine.Search(ctx, []string{IndexComplex}, seal.FullText("Blog"), seal.WithOffset(1), seal.WithLimit(1))
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		page2 := second.Collect()
		if len(page2) != 1 {
			t.Fatalf("Expected 1 document, got %d", len(page2))
		}

		if !sameDocuments(append(page1, page2...), []seal.Document{docs[0], docs[1]}) {
			t.Errorf("Expected both pages to hold the two blogs, got %v and %v", page1, page2)
		}
	})

	t.Run("EqualCondition", func(t *testing.T) {
		engine, docs := Setup(t, factory)

		expectDocuments(t, engine, []seal.Document{docs[0], docs[1]}, seal.Equal("tags", "UI"))
	})

	t.Run("MultiEqualCondition", func(t *testing.T) {
		engine, docs := Setup(t, factory)

		expectDocuments(t, engine, []seal.Document{docs[1]}, seal.Equal("tags", "UI"), seal.Equal("tags", "UX"))
	})

	t.Run("NotEqualCondition", func(t *testing.T) {
		engine, docs := Setup(t, factory)

		expectDocuments(t, engine, []seal.Document{docs[2], docs[3]}, seal.NotEqual("tags", "UI"))
	})

	t.Run("GreaterThanCondition", func(t *testing.T) {
		engine, _ := Setup(t, factory)
		expectRatings(t, engine, seal.GreaterThan("rating", 2.5), 1, func(r float64) bool { return r > 2.5 })
	})

	t.Run("GreaterThanEqualCondition", func(t *testing.T) {
		engine, _ := Setup(t, factory)
		expectRatings(t, engine, seal.GreaterThanEqual("rating", 2.5), 2, func(r float64) bool { return r >= 2.5 })
	})

	t.Run("LessThanCondition", func(t *testing.T) {
		engine, _ := Setup(t, factory)
		expectRatings(t, engine, seal.LessThan("rating", 3.5), 1, func(r float64) bool { return r < 3.5 })
	})

	t.Run("LessThanEqualCondition", func(t *testing.T) {
		engine, _ := Setup(t, factory)
		expectRatings(t, engine, seal.LessThanEqual("rating", 3.5), 2, func(r float64) bool { return r <= 3.5 })
	})

	t.Run("SortByAsc", func(t *testing.T) {
		engine, _ := Setup(t, factory)
		expectSorted(t, engine, seal.Asc)
	})

	t.Run("SortByDesc", func(t *testing.T) {
		engine, _ := Setup(t, factory)
		expectSorted(t, engine, seal.Desc)
	})
}

func expectDocuments(t *testing.T, engine *seal.Engine, want []seal.Document, opts ...seal.SearchOption) {
	t.Helper()

	res, err := engine.Search(context.Background(), []string{IndexComplex}, opts...)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	got := res.Collect()
	if res.Total() != len(want) {
		t.Errorf("Expected total %d, got %d", len(want), res.Total())
	}
	if !sameDocuments(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func expectRatings(t *testing.T, engine *seal.Engine, filter seal.Condition, atLeast int, ok func(float64) bool) {
	t.Helper()

	res, err := engine.Search(context.Background(), []string{IndexComplex}, filter)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	docs := res.Collect()
	if len(docs) < atLeast {
		t.Errorf("Expected at least %d documents, got %d", atLeast, len(docs))
	}
	for _, doc := range docs {
		rating, found := doc["rating"].(float64)
		if !found {
			t.Errorf("Expected only documents with rating, got %v without", doc["uuid"])
			continue
		}
		if !ok(rating) {
			t.Errorf("Unexpected rating %v for %v", rating, doc["uuid"])
		}
	}
}

func expectSorted(t *testing.T, engine *seal.Engine, dir seal.Direction) {
	t.Helper()

	res, err := engine.Search(context.Background(), []string{IndexComplex},
		seal.GreaterThan("rating", 0),
		seal.WithSort("rating", dir),
	)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	docs := res.Collect()
	if len(docs) < 2 {
		t.Fatalf("Expected at least 2 documents, got %d", len(docs))
	}

	for i := 1; i < len(docs); i++ {
		prev, _ := docs[i-1]["rating"].(float64)
		cur, _ := docs[i]["rating"].(float64)
		if dir == seal.Asc && prev > cur {
			t.Errorf("Expected ascending ratings, got %v before %v", prev, cur)
		}
		if dir == seal.Desc && prev < cur {
			t.Errorf("Expected descending ratings, got %v before %v", prev, cur)
		}
	}
}

// sameDocuments compares two document lists ignoring order.
func sameDocuments(got, want []seal.Document) bool {
	if len(got) != len(want) {
		return false
	}

	used := make([]bool, len(want))
outer:
	for _, g := range got {
		for i, w := range want {
			if !used[i] && reflect.DeepEqual(g, w) {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}
