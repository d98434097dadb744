package order

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/storage"
)

// SQLiteOrderRepository implements Repository on the shared SQLite store.
type SQLiteOrderRepository struct {
	store *storage.Store
	log   logging.Logger
}

var _ Repository = (*SQLiteOrderRepository)(nil)

// NewSQLiteOrderRepository creates an order repository backed by the given store.
func NewSQLiteOrderRepository(store *storage.Store) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{
		store: store,
		log:   logging.GetLogger("repo.order.sqlite_order_repository"),
	}
}

// CreateOrder implements Repository.CreateOrder using SQLite.
func (r *SQLiteOrderRepository) CreateOrder(
	ctx context.Context,
	userID, productID, quantity int64,
) (int64, error) {
	unlock := r.store.LockWrites()
	defer unlock()

	res, err := r.store.DB().ExecContext(ctx,
		"INSERT INTO orders (user_id, product_id, quantity, created_at) VALUES (?, ?, ?, ?)",
		userID,
		productID,
		quantity,
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	return id, nil
}

// ListByUser implements Repository.ListByUser using SQLite.
func (r *SQLiteOrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		"SELECT id, user_id, product_id, quantity, created_at FROM orders WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	return collectOrders(rows)
}

// ListByProducts implements Repository.ListByProducts using SQLite.
func (r *SQLiteOrderRepository) ListByProducts(
	ctx context.Context,
	productIDs []int64,
) ([]domain.Order, error) {
	if len(productIDs) == 0 {
		return []domain.Order{}, nil
	}

	placeholders := strings.Repeat("?, ", len(productIDs)-1) + "?"

	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}

	rows, err := r.store.DB().QueryContext(ctx,
		"SELECT id, user_id, product_id, quantity, created_at FROM orders WHERE product_id IN ("+placeholders+") ORDER BY id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	defer rows.Close()

	orders := []domain.Order{}

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.ProductID, &order.Quantity, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}
