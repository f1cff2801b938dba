package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// CreateSweetInput carries all data needed to create a new sweet.
type CreateSweetInput struct {
	Name     string
	Category string
	Price    float64
	Quantity int64
}

// UpdateSweetInput is a partial update: nil fields keep their current value.
type UpdateSweetInput struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
}

// IsEmpty reports whether the update carries no fields at all.
func (u UpdateSweetInput) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Price == nil && u.Quantity == nil
}

// SearchSweetsFilter holds the optional search criteria. All present
// criteria are ANDed; absent criteria impose no constraint.
type SearchSweetsFilter struct {
	Name     string   // case-insensitive substring match
	Category string   // case-insensitive substring match
	MinPrice *float64 // inclusive lower bound
	MaxPrice *float64 // inclusive upper bound
}

// PurchaseInput carries the parameters of a purchase.
type PurchaseInput struct {
	ID       string
	Quantity int64
	// IdempotencyKey is optional; a replayed key returns the current item
	// without decrementing stock again.
	IdempotencyKey string
}

// StockResult is returned by the stock-mutating operations.
type StockResult struct {
	Message string
	Sweet   *domain.Sweet
}

// SweetService defines use-case operations on the sweet inventory.
type SweetService interface {
	ListSweets(ctx context.Context) ([]*domain.Sweet, error)
	GetSweet(ctx context.Context, id string) (*domain.Sweet, error)
	SearchSweets(ctx context.Context, filter SearchSweetsFilter) ([]*domain.Sweet, error)
	CreateSweet(ctx context.Context, input CreateSweetInput) (*domain.Sweet, error)
	UpdateSweet(ctx context.Context, id string, input UpdateSweetInput) (*domain.Sweet, error)
	DeleteSweet(ctx context.Context, id string) error
	Purchase(ctx context.Context, input PurchaseInput) (*StockResult, error)
	Restock(ctx context.Context, id string, quantity int64) (*StockResult, error)
}
