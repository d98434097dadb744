// Package storage owns the shared SQLite database used by the user, product
// and order repositories. All three collections live in one database file so
// the conditional stock decrement and the order insert hit the same store.
package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkrupp/storefront/internal/infra/logging"
)

// SQLiteStoreConfig holds configuration for the shared SQLite store.
type SQLiteStoreConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/marketsvc.db"`
}

// Store wraps the shared database handle and the process-wide write lock.
// go-sqlite does not support concurrent writes, so every mutating statement
// must run while holding the lock.
type Store struct {
	db        *sql.DB
	log       logging.Logger
	writeLock sync.Mutex
}

// Open creates the database connection, applies pragmas and creates the
// schema if needed. Returns an error if the database cannot be initialized.
func Open(cfg SQLiteStoreConfig) (*Store, error) {
	log := logging.GetLogger("repo.storage.sqlite_store").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &Store{
		db:  db,
		log: log,
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    UNIQUE NOT NULL,
			password_hash BLOB    NOT NULL,
			email         TEXT    NOT NULL,
			role          TEXT    NOT NULL CHECK (role IN ('seller', 'customer')),
			created_at    INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT    UNIQUE NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			price       TEXT    NOT NULL,
			quantity    INTEGER NOT NULL CHECK (quantity >= 0),
			seller_id   INTEGER NOT NULL REFERENCES users(id),
			version     INTEGER NOT NULL DEFAULT 1,
			created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_products_seller ON products(seller_id);

		CREATE TABLE IF NOT EXISTS orders (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity   INTEGER NOT NULL CHECK (quantity > 0),
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_product ON orders(product_id);
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// DB returns the shared database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// LockWrites acquires the write lock and returns the unlock function.
func (s *Store) LockWrites() func() {
	s.writeLock.Lock()

	return s.writeLock.Unlock
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
