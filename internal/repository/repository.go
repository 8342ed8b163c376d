// Package repository owns entity storage for the services. Every write
// replaces one whole entity; there are no multi-entity transactions.
package repository

import (
	"context"
)

// Entity is implemented by every stored model pointer.
type Entity[T any] interface {
	EntityID() string
	Clone() T
}

// Repository stores entities of one kind keyed by id.
type Repository[T Entity[T]] interface {
	// Get returns the entity with id or an error satisfying
	// errors.Is(err, errors.NotFound).
	Get(ctx context.Context, id string) (T, error)

	// List returns every entity in insertion order.
	List(ctx context.Context) ([]T, error)

	// Save inserts or replaces the entity.
	Save(ctx context.Context, entity T) error

	// Delete removes the entity. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
