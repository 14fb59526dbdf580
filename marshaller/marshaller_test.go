package marshaller

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal/schema"
)

func complexIndex() *schema.Index {
	return schema.MustIndex("complex",
		schema.Identifier("uuid"),
		schema.Text("title"),
		schema.Text("tags", schema.Multiple()),
		schema.Number("rating"),
		schema.Object("header", []schema.Field{
			schema.Text("headline"),
		}),
		schema.Object("comments", []schema.Field{
			schema.Text("email", schema.NotSearchable()),
			schema.Text("text"),
		}, schema.Multiple()),
		schema.Typed("blocks", map[string][]schema.Field{
			"text":  {schema.Text("title"), schema.Text("description")},
			"embed": {schema.Text("title"), schema.Text("media")},
		}, schema.Multiple()),
		schema.Typed("footer", map[string][]schema.Field{
			"text": {schema.Text("title")},
		}),
	)
}

func TestMarshal(t *testing.T) {
	idx := complexIndex()

	external := map[string]any{
		"uuid":   "23b30f01-d8fd-4dca-b36a-4710e360a965",
		"title":  "New Blog",
		"tags":   []string{"UI", "UX"},
		"rating": 3.5,
		"header": map[string]any{"headline": "Hello"},
		"comments": []any{
			map[string]any{"email": "admin@localhost", "text": "Awesome"},
		},
		"blocks": []any{
			map[string]any{"type": "text", "title": "Title", "description": "<p>Description</p>"},
			map[string]any{"type": "embed", "title": "Video", "media": "https://www.youtube.com/watch?v=iYM2zFP3Zn0"},
		},
		"footer":  map[string]any{"type": "text", "title": "Footer"},
		"unknown": "dropped",
	}

	internal, err := Marshal(idx.Fields(), external)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := map[string]any{
		"uuid":     []any{"23b30f01-d8fd-4dca-b36a-4710e360a965"},
		"title":    []any{"New Blog"},
		"tags":     []any{"UI", "UX"},
		"rating":   []any{3.5},
		"header":   []any{map[string]any{"headline": []any{"Hello"}}},
		"comments": []any{map[string]any{"email": []any{"admin@localhost"}, "text": []any{"Awesome"}}},
		"blocks": []any{
			map[string]any{"text": map[string]any{"title": []any{"Title"}, "description": []any{"<p>Description</p>"}}},
			map[string]any{"embed": map[string]any{"title": []any{"Video"}, "media": []any{"https://www.youtube.com/watch?v=iYM2zFP3Zn0"}}},
		},
		"footer": []any{map[string]any{"text": map[string]any{"title": []any{"Footer"}}}},
	}

	if !reflect.DeepEqual(internal, expected) {
		t.Errorf("Expected %#v, got %#v", expected, internal)
	}

	id, ok := Identifier(idx, internal)
	if !ok || id != "23b30f01-d8fd-4dca-b36a-4710e360a965" {
		t.Errorf("Expected identifier, got %q (%v)", id, ok)
	}
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	idx := complexIndex()

	external := map[string]any{
		"uuid":   "1",
		"title":  "Blog",
		"tags":   []any{"UI"},
		"rating": 2.5,
		"comments": []any{
			map[string]any{"email": "a@b", "text": "Nice"},
		},
		"blocks": []any{
			map[string]any{"type": "embed", "title": "Video", "media": "m"},
			map[string]any{"type": "text", "title": "Title"},
		},
		"footer": map[string]any{"type": "text", "title": "Footer"},
	}

	internal, err := Marshal(idx.Fields(), external)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := Unmarshal(idx.Fields(), internal)
	if !reflect.DeepEqual(got, external) {
		t.Errorf("Expected %#v, got %#v", external, got)
	}
}

func TestMarshal_Invalid(t *testing.T) {
	idx := complexIndex()

	tests := map[string]map[string]any{
		"multiple expects list":   {"uuid": "1", "tags": "UI"},
		"scalar expects scalar":   {"uuid": "1", "title": []any{"a", "b"}},
		"scalar rejects object":   {"uuid": "1", "title": map[string]any{"a": "b"}},
		"object expects map":      {"uuid": "1", "header": "x"},
		"typed needs known type":  {"uuid": "1", "footer": map[string]any{"type": "video"}},
		"typed needs type key":    {"uuid": "1", "footer": map[string]any{"title": "x"}},
		"nested error propagates": {"uuid": "1", "comments": []any{map[string]any{"text": []any{"x"}}}},
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Marshal(idx.Fields(), doc); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Expected ErrInvalidValue, got %v", err)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	idx := schema.MustIndex("simple", schema.Identifier("id"), schema.Text("title"))

	tests := map[string]struct {
		doc  map[string]any
		want string
		ok   bool
	}{
		"string":  {doc: map[string]any{"id": []any{"abc"}}, want: "abc", ok: true},
		"number":  {doc: map[string]any{"id": []any{42}}, want: "42", ok: true},
		"missing": {doc: map[string]any{"title": []any{"x"}}},
		"empty":   {doc: map[string]any{"id": []any{""}}},
		"no item": {doc: map[string]any{"id": []any{}}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			id, ok := Identifier(idx, tc.doc)
			if ok != tc.ok || id != tc.want {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tc.want, tc.ok, id, ok)
			}
		})
	}
}
