package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/storage"
)

// SQLiteProductRepository implements Repository on the shared SQLite store.
// Prices are stored as two-place decimal strings.
type SQLiteProductRepository struct {
	store *storage.Store
	log   logging.Logger
}

var _ Repository = (*SQLiteProductRepository)(nil)

// NewSQLiteProductRepository creates a product repository backed by the given store.
func NewSQLiteProductRepository(store *storage.Store) *SQLiteProductRepository {
	return &SQLiteProductRepository{
		store: store,
		log:   logging.GetLogger("repo.product.sqlite_product_repository"),
	}
}

// CreateProduct implements Repository.CreateProduct using SQLite.
// The UNIQUE index on name enforces catalog-wide uniqueness at the store
// boundary; a constraint violation maps to domain.ErrProductAlreadyExists.
func (r *SQLiteProductRepository) CreateProduct(
	ctx context.Context,
	name, description string,
	price decimal.Decimal,
	quantity, sellerID int64,
) (int64, error) {
	unlock := r.store.LockWrites()
	defer unlock()

	res, err := r.store.DB().ExecContext(ctx,
		`INSERT INTO products (name, description, price, quantity, seller_id, version, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)`,
		name,
		description,
		price.StringFixed(2),
		quantity,
		sellerID,
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", mapConstraintErr(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	return id, nil
}

// GetByID implements Repository.GetByID using SQLite.
func (r *SQLiteProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(r.store.DB().QueryRowContext(ctx,
		`SELECT id, name, description, price, quantity, seller_id, version, created_at
		 FROM products WHERE id = ?`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	return product, nil
}

// ListAll implements Repository.ListAll using SQLite.
func (r *SQLiteProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		`SELECT id, name, description, price, quantity, seller_id, version, created_at
		 FROM products ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// UpdateOwned implements Repository.UpdateOwned using SQLite.
// The statement filters on both id and seller_id so a seller can never touch
// another seller's listing, and the version column is bumped on every update.
func (r *SQLiteProductRepository) UpdateOwned(
	ctx context.Context,
	id, sellerID int64,
	patch domain.ProductPatch,
) error {
	if patch.Empty() {
		return nil
	}

	var (
		assignments []string
		args        []any
	)

	if patch.Name != nil {
		assignments = append(assignments, "name = ?")
		args = append(args, *patch.Name)
	}

	if patch.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *patch.Description)
	}

	if patch.Price != nil {
		assignments = append(assignments, "price = ?")
		args = append(args, patch.Price.StringFixed(2))
	}

	if patch.Quantity != nil {
		assignments = append(assignments, "quantity = ?")
		args = append(args, *patch.Quantity)
	}

	assignments = append(assignments, "version = version + 1")
	args = append(args, id, sellerID)

	unlock := r.store.LockWrites()
	defer unlock()

	res, err := r.store.DB().ExecContext(ctx,
		"UPDATE products SET "+strings.Join(assignments, ", ")+" WHERE id = ? AND seller_id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", mapConstraintErr(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// DecrementQuantity implements Repository.DecrementQuantity using SQLite.
// The check and the decrement are a single conditional statement, so
// concurrent orders against the same product can never oversell.
func (r *SQLiteProductRepository) DecrementQuantity(ctx context.Context, id, n int64) error {
	unlock := r.store.LockWrites()
	defer unlock()

	res, err := r.store.DB().ExecContext(ctx,
		"UPDATE products SET quantity = quantity - ?, version = version + 1 WHERE id = ? AND quantity >= ?",
		n,
		id,
		n,
	)
	if err != nil {
		return fmt.Errorf("decrement quantity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected > 0 {
		return nil
	}

	// The guard failed: either the product is missing or stock is short.
	var exists bool
	if err := r.store.DB().QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)",
		id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("probe product: %w", err)
	}

	if !exists {
		return domain.ErrProductNotFound
	}

	return domain.ErrInsufficientStock
}

// AddQuantity implements Repository.AddQuantity using SQLite.
func (r *SQLiteProductRepository) AddQuantity(ctx context.Context, id, n int64) error {
	unlock := r.store.LockWrites()
	defer unlock()

	res, err := r.store.DB().ExecContext(ctx,
		"UPDATE products SET quantity = quantity + ?, version = version + 1 WHERE id = ?",
		n,
		id,
	)
	if err != nil {
		return fmt.Errorf("add quantity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// ListIDsBySeller implements Repository.ListIDsBySeller using SQLite.
func (r *SQLiteProductRepository) ListIDsBySeller(ctx context.Context, sellerID int64) ([]int64, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		"SELECT id FROM products WHERE seller_id = ? ORDER BY id",
		sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query product ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product  domain.Product
		priceStr string
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&priceStr,
		&product.Quantity,
		&product.SellerID,
		&product.Version,
		&product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrProductNotFound, err)
		}

		return nil, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}

	product.Price = price

	return &product, nil
}

func mapConstraintErr(err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			fallthrough
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return errors.Join(domain.ErrProductAlreadyExists, err)
		default:
		}
	}

	return err
}
