package order

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines the interface for order persistence.
// Orders are insert-only; nothing updates or deletes them.
type Repository interface {
	// CreateOrder records a placed order and returns its assigned id.
	CreateOrder(ctx context.Context, userID, productID, quantity int64) (int64, error)

	// ListByUser returns all orders placed by the given customer, oldest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)

	// ListByProducts returns all orders against any of the given product ids,
	// oldest first. An empty id set yields an empty result.
	ListByProducts(ctx context.Context, productIDs []int64) ([]domain.Order, error)
}
