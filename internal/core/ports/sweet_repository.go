package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// SweetRepository defines persistence operations for sweets.
//
// DecrementQuantity and IncrementQuantity must be single atomic
// read-check-write units on one record: two concurrent purchases of the
// last units may never both pass the availability check.
type SweetRepository interface {
	// Create persists a new sweet. Returns domain.ErrSweetExists when the
	// name is already taken (unique index).
	Create(ctx context.Context, sweet *domain.Sweet) (*domain.Sweet, error)
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	List(ctx context.Context) ([]*domain.Sweet, error)
	Search(ctx context.Context, filter SearchSweetsFilter) ([]*domain.Sweet, error)
	// Update applies only the non-nil fields and returns the updated record.
	Update(ctx context.Context, id string, input UpdateSweetInput) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	// DecrementQuantity subtracts n from the sweet's quantity only if at
	// least n units are available, returning domain.ErrInsufficientStock
	// otherwise. The check and the write are one conditional update.
	DecrementQuantity(ctx context.Context, id string, n int64) (*domain.Sweet, error)
	// IncrementQuantity adds n to the sweet's quantity. No upper bound.
	IncrementQuantity(ctx context.Context, id string, n int64) (*domain.Sweet, error)
}
