// Package sealtest provides fixtures and a conformance suite for seal adapters.
package sealtest

import (
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/schema"
)

const (
	IndexComplex = "complex"
	IndexSimple  = "simple"
)

// ComplexIndex uses every field kind: scalars, objects and typed fields, single and
// multiple, searchable and not.
func ComplexIndex() *schema.Index {
	return schema.MustIndex(IndexComplex,
		schema.Identifier("uuid"),
		schema.Text("title"),
		schema.Typed("header", map[string][]schema.Field{
			"image": {schema.Text("media")},
			"video": {schema.Text("media")},
		}),
		schema.Text("article"),
		schema.Typed("blocks", map[string][]schema.Field{
			"text": {
				schema.Text("title"),
				schema.Text("description"),
				schema.Text("media", schema.Multiple()),
			},
			"embed": {
				schema.Text("title"),
				schema.Text("media"),
			},
		}, schema.Multiple()),
		schema.Object("footer", []schema.Field{
			schema.Text("title"),
		}),
		schema.Date("created"),
		schema.Number("commentsCount"),
		schema.Number("rating"),
		schema.Object("comments", []schema.Field{
			schema.Text("email", schema.NotSearchable()),
			schema.Text("text"),
		}, schema.Multiple()),
		schema.Text("tags", schema.Multiple()),
		schema.Number("categoryIds", schema.Multiple()),
	)
}

// SimpleIndex has an identifier and a title.
func SimpleIndex() *schema.Index {
	return schema.MustIndex(IndexSimple,
		schema.Identifier("id"),
		schema.Text("title"),
	)
}

// Schema returns a schema holding the complex and the simple index.
func Schema() *schema.Schema {
	s, err := schema.NewSchema(ComplexIndex(), SimpleIndex())
	if err != nil {
		panic(err)
	}
	return s
}

// ComplexDocuments returns documents for the complex index in external shape.
// The first two mention "Blog" in their titles, the third "Thing" and the fourth holds
// only an identifier.
func ComplexDocuments() []seal.Document {
	return []seal.Document{
		{
			"uuid":  "23b30f01-d8fd-4dca-b36a-4710e360a965",
			"title": "New Blog",
			"header": map[string]any{
				"type":  "video",
				"media": "https://www.youtube.com/watch?v=iYM2zFP3Zn0",
			},
			"article": "<article><h2>New Subtitle</h2><p>A html field with some content</p></article>",
			"blocks": []any{
				map[string]any{
					"type":        "text",
					"title":       "Titel",
					"description": "<p>Description</p>",
					"media":       []any{"3", "4"},
				},
				map[string]any{
					"type":        "text",
					"title":       "Titel 2",
					"description": "<p>Description 2</p>",
					"media":       []any{},
				},
				map[string]any{
					"type":  "embed",
					"title": "Video",
					"media": "https://www.youtube.com/watch?v=iYM2zFP3Zn0",
				},
			},
			"footer": map[string]any{
				"title": "New Footer",
			},
			"created":       "2022-01-24T12:00:00+01:00",
			"commentsCount": 2.0,
			"rating":        3.5,
			"comments": []any{
				map[string]any{
					"email": "admin.nonesearchablefield@localhost",
					"text":  "Awesome blog!",
				},
				map[string]any{
					"email": "example.nonesearchablefield@localhost",
					"text":  "Like this blog!",
				},
			},
			"tags":        []any{"Tech", "UI"},
			"categoryIds": []any{1.0, 2.0},
		},
		{
			"uuid":  "79848403-c1a1-4420-bcc2-06ed537e0d4d",
			"title": "Other Blog",
			"header": map[string]any{
				"type":  "image",
				"media": "1",
			},
			"article":       "<article><h2>Other Subtitle</h2><p>A html field with some content</p></article>",
			"footer":        map[string]any{"title": "Other Footer"},
			"created":       "2022-12-26T12:00:00+01:00",
			"commentsCount": 0.0,
			"rating":        2.5,
			"comments":      []any{},
			"tags":          []any{"UI", "UX"},
			"categoryIds":   []any{2.0, 3.0},
		},
		{
			"uuid":          "8d90e7d9-2b56-4980-90ce-f91d020cee53",
			"title":         "Other Thing",
			"article":       "<article><h2>Other Thing</h2><p>A html field with some content</p></article>",
			"footer":        map[string]any{"title": "Other Footer"},
			"created":       "2023-02-03T12:00:00+01:00",
			"commentsCount": 0.0,
			"rating":        1.5,
			"comments":      []any{},
			"tags":          []any{"UX"},
			"categoryIds":   []any{3.0, 4.0},
		},
		{
			"uuid": "97cd3e94-c17f-4c11-a22b-d9da2e5318cd",
		},
	}
}

// SimpleDocuments returns documents for the simple index in external shape.
func SimpleDocuments() []seal.Document {
	return []seal.Document{
		{"id": "1", "title": "Simple Title"},
		{"id": "2", "title": "Other Title"},
	}
}
