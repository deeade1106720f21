// Package store persists document batches. All implementations provide
// atomic read-modify-write via Update, which is the only way pipeline
// stages mutate a batch.
package store

import (
	"context"

	"github.com/splitscan/splitscan/internal/batch"
)

// BatchStore is the persistence contract for document batches.
type BatchStore interface {
	// Create stores a new batch. The batch ID must be unique.
	Create(ctx context.Context, b *batch.Batch) error

	// Get returns a copy of the batch, or batch.ErrNotFound.
	Get(ctx context.Context, id string) (*batch.Batch, error)

	// List returns copies of all batches, newest first.
	List(ctx context.Context) ([]*batch.Batch, error)

	// Update applies fn to the current batch under the store's write
	// exclusion and persists the result. If fn returns an error nothing
	// is persisted and the error is returned unchanged. The updated
	// copy is returned on success.
	Update(ctx context.Context, id string, fn func(*batch.Batch) error) (*batch.Batch, error)

	// Delete removes the batch, or returns batch.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases underlying resources.
	Close() error
}
