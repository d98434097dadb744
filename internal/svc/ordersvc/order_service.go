package ordersvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/repo/product"
)

// OrderService provides the customer-side ordering operations.
type OrderService struct {
	Products product.Repository
	Orders   order.Repository
	Log      logging.Logger
}

// NewOrderService creates a new OrderService over the given repositories.
func NewOrderService(products product.Repository, orders order.Repository) *OrderService {
	return &OrderService{
		Products: products,
		Orders:   orders,
		Log:      logging.GetLogger("svc.ordersvc.order_service"),
	}
}

// PlaceOrder places an order of the given quantity against the product and
// returns the new order's id. The stock check and decrement are a single
// conditional store operation, so concurrent orders against the same product
// can never drive stock negative. Returns domain.ErrInvalidQuantity when the
// quantity is not positive, domain.ErrProductNotFound when the product does
// not resolve, and domain.ErrInsufficientStock when the quantity exceeds the
// remaining stock.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	customerID, productID, quantity int64,
) (_ int64, err error) {
	log := s.Log.With(logging.Group("order",
		"customerId", customerID,
		"productId", productID,
		"quantity", quantity,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "place order failed", "error", err)
		} else {
			log.DebugContext(ctx, "order placed")
		}
	}()

	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}

	if err := s.Products.DecrementQuantity(ctx, productID, quantity); err != nil {
		return 0, fmt.Errorf("decrement quantity: %w", err)
	}

	id, err := s.Orders.CreateOrder(ctx, customerID, productID, quantity)
	if err != nil {
		// The stock is already taken; put it back before reporting failure.
		if restoreErr := s.Products.AddQuantity(ctx, productID, quantity); restoreErr != nil {
			log.ErrorContext(ctx, "restore stock failed", "error", restoreErr)
		}

		return 0, fmt.Errorf("create order: %w", err)
	}

	return id, nil
}

// OrderHistory returns all orders placed by the customer, oldest first,
// unfiltered by time and unpaginated.
func (s *OrderService) OrderHistory(ctx context.Context, customerID int64) ([]domain.Order, error) {
	orders, err := s.Orders.ListByUser(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}
