package seal

import "iter"

// Document is a document in external shape: single-valued fields hold scalars,
// multiple fields hold slices and nested fields hold maps.
type Document = map[string]any

// Result is the outcome of a search.
type Result struct {
	total int
	next  func() (Document, bool)
}

// NewResult creates a Result from a producer. next is called until it reports false;
// documents are produced on demand and each is produced at most once.
func NewResult(total int, next func() (Document, bool)) *Result {
	return &Result{total: total, next: next}
}

// SliceResult creates a Result yielding the given documents.
func SliceResult(total int, docs []Document) *Result {
	i := 0
	return NewResult(total, func() (Document, bool) {
		if i >= len(docs) {
			return nil, false
		}
		doc := docs[i]
		i++
		return doc, true
	})
}

// EmptyResult creates a Result without documents.
func EmptyResult() *Result {
	return SliceResult(0, nil)
}

// Total is the number of documents matching the filters before offset and limit
// were applied, summed over all searched indexes.
func (r *Result) Total() int {
	return r.total
}

// Documents returns the paginated documents as a single-pass sequence.
// Documents already yielded, by this or an earlier sequence, are not yielded again.
func (r *Result) Documents() iter.Seq[Document] {
	return func(yield func(Document) bool) {
		for {
			doc, ok := r.next()
			if !ok || !yield(doc) {
				return
			}
		}
	}
}

// Collect drains the remaining documents into a slice.
func (r *Result) Collect() []Document {
	var docs []Document
	for doc := range r.Documents() {
		docs = append(docs, doc)
	}
	return docs
}
