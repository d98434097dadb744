package product

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines the interface for product persistence.
type Repository interface {
	// CreateProduct adds a new listing with version 1 and returns its id.
	// Returns domain.ErrProductAlreadyExists if the name is taken anywhere
	// in the catalog.
	CreateProduct(
		ctx context.Context,
		name, description string,
		price decimal.Decimal,
		quantity, sellerID int64,
	) (int64, error)

	// GetByID retrieves a product by id.
	// Returns domain.ErrProductNotFound if no such product exists.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// ListAll returns a fresh snapshot of the whole catalog in id order.
	ListAll(ctx context.Context) ([]domain.Product, error)

	// UpdateOwned applies the non-nil patch fields to the product with the
	// given id, but only if it is owned by sellerID, and bumps the version.
	// Returns domain.ErrProductNotFound when the product is absent or owned
	// by someone else; the caller cannot tell which.
	UpdateOwned(ctx context.Context, id, sellerID int64, patch domain.ProductPatch) error

	// DecrementQuantity atomically subtracts n units of stock, guarded by
	// quantity >= n. Returns domain.ErrInsufficientStock when the guard
	// fails and domain.ErrProductNotFound when the product does not exist.
	DecrementQuantity(ctx context.Context, id, n int64) error

	// AddQuantity restores n units of stock. Used to compensate a decrement
	// when the subsequent order insert fails.
	AddQuantity(ctx context.Context, id, n int64) error

	// ListIDsBySeller returns the ids of all products owned by sellerID.
	ListIDsBySeller(ctx context.Context, sellerID int64) ([]int64, error)
}
