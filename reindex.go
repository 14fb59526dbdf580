package seal

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
)

// ReindexProvider supplies every document of one index from a system of record.
type ReindexProvider interface {
	// Index is the name of the index the documents belong to.
	Index() string
	// Total returns the number of documents Provide will yield, or -1 if unknown.
	Total(ctx context.Context) (int, error)
	// Provide yields the documents. Iteration stops at the first error.
	Provide(ctx context.Context) iter.Seq2[Document, error]
}

// ProgressFunc is called after each reindexed document.
type ProgressFunc func(index string, count, total int)

// ReindexOptions configures Engine.Reindex.
type ReindexOptions struct {
	// Index restricts reindexing to one index. Empty means all indexes.
	Index string
	// DropIndex drops and recreates existing indexes before writing.
	DropIndex bool
	// Progress, if set, is called after each saved document.
	Progress ProgressFunc
}

// Reindex rebuilds indexes from the given providers. Providers for indexes that are not
// part of the schema are skipped. Missing indexes are created before writing.
func (e *Engine) Reindex(ctx context.Context, providers []ReindexProvider, opts ReindexOptions) error {
	var order []string
	byIndex := make(map[string][]ReindexProvider)

	for _, p := range providers {
		name := p.Index()
		if _, err := e.schema.Index(name); err != nil {
			e.logger.WarnContext(ctx, "skipping reindex provider for unknown index", "index", name)
			continue
		}
		if opts.Index != "" && opts.Index != name {
			continue
		}
		if _, seen := byIndex[name]; !seen {
			order = append(order, name)
		}
		byIndex[name] = append(byIndex[name], p)
	}

	for _, name := range order {
		if err := e.prepareIndex(ctx, name, opts.DropIndex); err != nil {
			return err
		}

		for _, p := range byIndex[name] {
			if err := e.reindexProvider(ctx, name, p, opts.Progress); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) prepareIndex(ctx context.Context, name string, drop bool) error {
	exists, err := e.ExistIndex(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "failed to check index %s", name)
	}

	if exists && drop {
		e.logger.InfoContext(ctx, "dropping index before reindex", "index", name)
		if err := e.waitFor(ctx, e.DropIndex, name); err != nil {
			return errors.Wrapf(err, "failed to drop index %s", name)
		}
		exists = false
	}

	if !exists {
		e.logger.InfoContext(ctx, "creating index", "index", name)
		if err := e.waitFor(ctx, e.CreateIndex, name); err != nil {
			return errors.Wrapf(err, "failed to create index %s", name)
		}
	}

	return nil
}

func (e *Engine) waitFor(
	ctx context.Context,
	fn func(context.Context, string, ...WriteOption) (Task, error),
	name string,
) error {
	task, err := fn(ctx, name, WithCompletionHandle())
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	return task.Wait(ctx)
}

func (e *Engine) reindexProvider(ctx context.Context, name string, p ReindexProvider, progress ProgressFunc) error {
	total, err := p.Total(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to count documents for index %s", name)
	}

	count := 0
	for doc, err := range p.Provide(ctx) {
		if err != nil {
			return errors.Wrapf(err, "failed to read document %d for index %s", count+1, name)
		}

		if _, err := e.SaveDocument(ctx, name, doc); err != nil {
			return errors.Wrapf(err, "failed to save document %d to index %s", count+1, name)
		}
		count++

		if progress != nil {
			progress(name, count, total)
		}
	}

	e.logger.InfoContext(ctx, "reindexed documents", "index", name, "count", count)
	return nil
}
