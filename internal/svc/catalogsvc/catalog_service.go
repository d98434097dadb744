package catalogsvc

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/repo/product"
)

// CatalogService provides the seller-side product operations and the
// catalog listing customers browse.
type CatalogService struct {
	Products product.Repository
	Orders   order.Repository
	Log      logging.Logger
}

// NewCatalogService creates a new CatalogService over the given repositories.
func NewCatalogService(products product.Repository, orders order.Repository) *CatalogService {
	return &CatalogService{
		Products: products,
		Orders:   orders,
		Log:      logging.GetLogger("svc.catalogsvc.catalog_service"),
	}
}

// AddProduct creates a new listing owned by sellerID with version 1.
// Returns domain.ErrMissingField when the name is empty,
// domain.ErrInvalidPrice when the price is negative,
// domain.ErrInvalidQuantity when the quantity is negative, and
// domain.ErrProductAlreadyExists when the name is taken anywhere in the
// catalog. Name uniqueness is global, not per seller: two sellers cannot
// list identically named products.
func (s *CatalogService) AddProduct(
	ctx context.Context,
	sellerID int64,
	name, description string,
	price decimal.Decimal,
	quantity int64,
) (_ int64, err error) {
	log := s.Log.With(logging.Group("product", "name", name, "sellerId", sellerID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "add product failed", "error", err)
		} else {
			log.DebugContext(ctx, "product added")
		}
	}()

	if name == "" {
		return 0, domain.ErrMissingField
	}

	if price.IsNegative() {
		return 0, domain.ErrInvalidPrice
	}

	if quantity < 0 {
		return 0, domain.ErrInvalidQuantity
	}

	id, err := s.Products.CreateProduct(ctx, name, description, price, quantity, sellerID)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}

	return id, nil
}

// UpdateProduct applies the patch to the product with the given id, provided
// it is owned by sellerID. Only non-nil patch fields are applied; an absent
// field leaves the stored value unchanged, so a seller cannot clear a field
// through this operation. Returns domain.ErrProductNotFound when the product
// is absent or owned by another seller, domain.ErrInvalidPrice and
// domain.ErrInvalidQuantity for negative values.
func (s *CatalogService) UpdateProduct(
	ctx context.Context,
	sellerID, productID int64,
	patch domain.ProductPatch,
) (err error) {
	log := s.Log.With(logging.Group("product", "id", productID, "sellerId", sellerID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update product failed", "error", err)
		} else {
			log.DebugContext(ctx, "product updated")
		}
	}()

	if patch.Price != nil && patch.Price.IsNegative() {
		return domain.ErrInvalidPrice
	}

	if patch.Quantity != nil && *patch.Quantity < 0 {
		return domain.ErrInvalidQuantity
	}

	if err := s.Products.UpdateOwned(ctx, productID, sellerID, patch); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	return nil
}

// ListProducts returns a fresh snapshot of the full catalog, unfiltered and
// unpaginated.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.Products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// ListSellerOrders returns the orders placed against any product owned by
// sellerID: orders whose product id is in the seller's product-id set.
func (s *CatalogService) ListSellerOrders(ctx context.Context, sellerID int64) ([]domain.Order, error) {
	ids, err := s.Products.ListIDsBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}

	orders, err := s.Orders.ListByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}
