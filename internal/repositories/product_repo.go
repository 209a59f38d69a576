package repositories

import (
	"context"
	"errors"
	"fmt"

	"vitrine/internal/models"
)

// ProductRepository defines the interface for product data access.
// Products are append-only: there is no update or delete.
type ProductRepository interface {
	// GetAll returns every product in storage (insertion) order.
	GetAll(ctx context.Context) ([]models.Product, error)
	// Create assigns an ID and timestamps to product and persists it.
	Create(ctx context.Context, product *models.Product) error
}

// StorageError is returned when the underlying store cannot serve a request.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err wraps a *StorageError.
func IsStorageError(err error) bool {
	var serr *StorageError
	return errors.As(err, &serr)
}
