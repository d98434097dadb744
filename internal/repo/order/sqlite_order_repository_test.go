package order_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/repo/storage"
)

func setupRepo(t *testing.T) *order.SQLiteOrderRepository {
	t.Helper()

	store, err := storage.Open(storage.SQLiteStoreConfig{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return order.NewSQLiteOrderRepository(store)
}

func TestSQLiteOrderRepository_CreateAndListByUser(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	firstID, err := repo.CreateOrder(ctx, 1, 10, 3)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if _, err := repo.CreateOrder(ctx, 2, 10, 1); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	secondID, err := repo.CreateOrder(ctx, 1, 11, 2)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	orders, err := repo.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("ListByUser() returned %d orders, want 2", len(orders))
	}

	if orders[0].ID != firstID || orders[0].ProductID != 10 || orders[0].Quantity != 3 {
		t.Errorf("orders[0] = %+v", orders[0])
	}

	if orders[1].ID != secondID || orders[1].ProductID != 11 || orders[1].Quantity != 2 {
		t.Errorf("orders[1] = %+v", orders[1])
	}
}

func TestSQLiteOrderRepository_ListByProducts(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateOrder(ctx, 1, 10, 3); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if _, err := repo.CreateOrder(ctx, 2, 11, 1); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if _, err := repo.CreateOrder(ctx, 3, 12, 5); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	tests := []struct {
		name       string
		productIDs []int64
		want       int
	}{
		{name: "subset", productIDs: []int64{10, 12}, want: 2},
		{name: "single", productIDs: []int64{11}, want: 1},
		{name: "no matches", productIDs: []int64{99}, want: 0},
		{name: "empty set", productIDs: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := repo.ListByProducts(ctx, tt.productIDs)
			if err != nil {
				t.Fatalf("ListByProducts() error = %v", err)
			}

			if len(orders) != tt.want {
				t.Errorf("ListByProducts(%v) returned %d orders, want %d", tt.productIDs, len(orders), tt.want)
			}
		})
	}
}
