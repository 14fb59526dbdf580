package memory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru"
	"github.com/letmevibethatforyou/seal/schema"
)

// projectionKey holds the index itself rather than its name, since indexes sharing a
// name through a common Storage may differ in their searchable fields.
type projectionKey struct {
	index    *schema.Index
	id       string
	revision uint64
}

// projector renders the searchable text of documents. Rendered text is cached by
// document revision, so an overwritten document is never served stale text.
type projector struct {
	cache *lru.Cache
}

func newProjector(size int) (*projector, error) {
	if size <= 0 {
		return &projector{}, nil
	}

	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create projection cache")
	}
	return &projector{cache: cache}, nil
}

func (p *projector) text(index *schema.Index, e entry) (string, error) {
	key := projectionKey{index: index, id: e.id, revision: e.revision}
	if p.cache != nil {
		if v, ok := p.cache.Get(key); ok {
			return v.(string), nil
		}
	}

	text, err := encodeProjection(project(index.Fields(), e.doc))
	if err != nil {
		return "", errors.Wrapf(err, "failed to project document %q", e.id)
	}

	if p.cache != nil {
		p.cache.Add(key, text)
	}
	return text, nil
}

// project keeps the searchable part of an internal document. Non-searchable fields
// are removed entirely; object and typed fields are replaced by the projection of
// their sub-documents.
func project(fields []schema.Field, doc map[string]any) map[string]any {
	out := make(map[string]any, len(fields))

	for _, f := range fields {
		values, ok := doc[f.Name()].([]any)
		if !ok || !f.Searchable() {
			continue
		}

		switch field := f.(type) {
		case *schema.ScalarField:
			out[f.Name()] = values

		case *schema.ObjectField:
			items := make([]any, 0, len(values))
			for _, v := range values {
				sub, _ := v.(map[string]any)
				items = append(items, project(field.Fields(), sub))
			}
			out[f.Name()] = items

		case *schema.TypedField:
			items := make([]any, 0, len(values))
			for _, v := range values {
				tagged, _ := v.(map[string]any)
				for tag, sub := range tagged {
					variant, ok := field.Variant(tag)
					if !ok {
						continue
					}
					subDoc, _ := sub.(map[string]any)
					items = append(items, map[string]any{tag: project(variant, subDoc)})
				}
			}
			out[f.Name()] = items

		default:
			panic(fmt.Sprintf("memory: unhandled field type %T", f))
		}
	}

	return out
}

// encodeProjection serializes a projection to JSON with sorted keys.
func encodeProjection(projection map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(projection); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
