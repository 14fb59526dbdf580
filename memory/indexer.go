package memory

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/marshaller"
	"github.com/letmevibethatforyou/seal/schema"
)

// Indexer implements seal.Indexer over a Storage. Writes are synchronous, so a
// requested completion handle is already resolved.
type Indexer struct {
	storage *Storage
	logger  *slog.Logger
}

// Save converts the document to internal shape and stores it under its identifier,
// overwriting any previous document with the same identifier.
func (i *Indexer) Save(ctx context.Context, index *schema.Index, doc seal.Document, opts ...seal.WriteOption) (seal.Task, error) {
	select {
	case <-ctx.Done():
		return nil, seal.ErrCanceled
	default:
	}

	internal, err := marshaller.Marshal(index.Fields(), doc)
	if err != nil {
		return nil, errors.WithSecondaryError(
			errors.Wrapf(seal.ErrInvalidDocument, "index %q", index.Name()), err)
	}

	id, ok := marshaller.Identifier(index, internal)
	if !ok {
		return nil, errors.Wrapf(seal.ErrInvalidDocument, "document for index %q has no %q identifier",
			index.Name(), index.IdentifierField().Name())
	}

	if err := i.storage.Save(index.Name(), id, internal); err != nil {
		return nil, err
	}

	i.logger.DebugContext(ctx, "saved document", "index", index.Name(), "id", id)
	return completion(opts), nil
}

// Delete removes the document with the identifier. Deleting a missing document is
// not an error.
func (i *Indexer) Delete(ctx context.Context, index *schema.Index, identifier string, opts ...seal.WriteOption) (seal.Task, error) {
	select {
	case <-ctx.Done():
		return nil, seal.ErrCanceled
	default:
	}

	removed, err := i.storage.Delete(index.Name(), identifier)
	if err != nil {
		return nil, err
	}

	i.logger.DebugContext(ctx, "deleted document", "index", index.Name(), "id", identifier, "removed", removed)
	return completion(opts), nil
}

// completion returns a resolved task when one was requested and nil otherwise.
func completion(opts []seal.WriteOption) seal.Task {
	if !seal.ApplyWriteOptions(opts).ReturnTask {
		return nil
	}
	return seal.ResolvedTask(nil)
}

var _ seal.Indexer = (*Indexer)(nil)
