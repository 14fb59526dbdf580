package memory

import (
	"context"

	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/schema"
)

// SchemaManager implements seal.SchemaManager by allocating and discarding stores.
type SchemaManager struct {
	storage *Storage
}

func (m *SchemaManager) CreateIndex(_ context.Context, index *schema.Index, opts ...seal.WriteOption) (seal.Task, error) {
	m.storage.CreateIndex(index.Name())
	return completion(opts), nil
}

func (m *SchemaManager) DropIndex(_ context.Context, index *schema.Index, opts ...seal.WriteOption) (seal.Task, error) {
	m.storage.DropIndex(index.Name())
	return completion(opts), nil
}

func (m *SchemaManager) ExistIndex(_ context.Context, index *schema.Index) (bool, error) {
	return m.storage.HasIndex(index.Name()), nil
}

var _ seal.SchemaManager = (*SchemaManager)(nil)
