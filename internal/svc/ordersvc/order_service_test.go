package ordersvc_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/repo/product"
	"github.com/mkrupp/storefront/internal/repo/storage"
	"github.com/mkrupp/storefront/internal/svc/ordersvc"
)

func setupTestService(t *testing.T) (*ordersvc.OrderService, *product.SQLiteProductRepository) {
	t.Helper()

	store, err := storage.Open(storage.SQLiteStoreConfig{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	products := product.NewSQLiteProductRepository(store)
	orders := order.NewSQLiteOrderRepository(store)

	return ordersvc.NewOrderService(products, orders), products
}

func mustCreateProduct(t *testing.T, repo *product.SQLiteProductRepository, name string, quantity int64) int64 {
	t.Helper()

	id, err := repo.CreateProduct(
		context.Background(),
		name,
		"",
		decimal.RequireFromString("9.99"),
		quantity,
		1,
	)
	if err != nil {
		t.Fatalf("CreateProduct(%q) error = %v", name, err)
	}

	return id
}

func TestOrderService_PlaceOrder(t *testing.T) {
	t.Parallel()

	svc, products := setupTestService(t)
	ctx := context.Background()

	id := mustCreateProduct(t, products, "widget", 10)

	tests := []struct {
		name      string
		productID int64
		quantity  int64
		wantErr   error
		wantStock int64
	}{
		{name: "first order", productID: id, quantity: 3, wantStock: 7},
		{name: "exceeds remaining stock", productID: id, quantity: 8, wantErr: domain.ErrInsufficientStock, wantStock: 7},
		{name: "exactly remaining stock", productID: id, quantity: 7, wantStock: 0},
		{name: "zero quantity", productID: id, quantity: 0, wantErr: domain.ErrInvalidQuantity, wantStock: 0},
		{name: "negative quantity", productID: id, quantity: -1, wantErr: domain.ErrInvalidQuantity, wantStock: 0},
		{name: "missing product", productID: id + 1000, quantity: 1, wantErr: domain.ErrProductNotFound, wantStock: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(ctx, 42, tt.productID, tt.quantity)
			if (err != nil) != (tt.wantErr != nil) {
				t.Fatalf("PlaceOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("PlaceOrder() error = %v, wantErr %v", err, tt.wantErr)
			}

			got, err := products.GetByID(ctx, id)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if got.Quantity != tt.wantStock {
				t.Errorf("stock = %d, want %d", got.Quantity, tt.wantStock)
			}
		})
	}
}

func TestOrderService_PlaceOrderRecordsHistory(t *testing.T) {
	t.Parallel()

	svc, products := setupTestService(t)
	ctx := context.Background()

	id := mustCreateProduct(t, products, "widget", 10)

	firstID, err := svc.PlaceOrder(ctx, 42, id, 3)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	secondID, err := svc.PlaceOrder(ctx, 42, id, 2)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	// A different customer's order must not appear in the history.
	if _, err := svc.PlaceOrder(ctx, 7, id, 1); err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	history, err := svc.OrderHistory(ctx, 42)
	if err != nil {
		t.Fatalf("OrderHistory() error = %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("OrderHistory() returned %d orders, want 2", len(history))
	}

	if history[0].ID != firstID || history[0].Quantity != 3 {
		t.Errorf("history[0] = %+v", history[0])
	}

	if history[1].ID != secondID || history[1].Quantity != 2 {
		t.Errorf("history[1] = %+v", history[1])
	}
}

func TestOrderService_PlaceOrderConcurrent(t *testing.T) {
	t.Parallel()

	svc, products := setupTestService(t)
	ctx := context.Background()

	const (
		stock    = 10
		quantity = 6
	)

	id := mustCreateProduct(t, products, "widget", stock)

	// Two customers race for 6 of 10 units each; at most one can win.
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)

	for customer := int64(1); customer <= 2; customer++ {
		wg.Add(1)

		go func(customerID int64) {
			defer wg.Done()

			if _, err := svc.PlaceOrder(ctx, customerID, id, quantity); err == nil {
				succeeded.Add(1)
			}
		}(customer)
	}

	wg.Wait()

	got, err := products.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Quantity < 0 {
		t.Fatalf("stock = %d, went negative", got.Quantity)
	}

	if succeeded.Load() != 1 {
		t.Errorf("successful orders = %d, want 1", succeeded.Load())
	}

	if got.Quantity != stock-quantity {
		t.Errorf("stock = %d, want %d", got.Quantity, stock-quantity)
	}
}

func TestOrderService_OrderHistoryEmpty(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	history, err := svc.OrderHistory(context.Background(), 99)
	if err != nil {
		t.Fatalf("OrderHistory() error = %v", err)
	}

	if len(history) != 0 {
		t.Errorf("OrderHistory() returned %d orders, want 0", len(history))
	}
}
