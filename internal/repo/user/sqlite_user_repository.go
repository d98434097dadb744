package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/storage"
)

// SQLiteUserRepository implements Repository on the shared SQLite store.
type SQLiteUserRepository struct {
	store *storage.Store
	log   logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// NewSQLiteUserRepository creates a user repository backed by the given store.
func NewSQLiteUserRepository(store *storage.Store) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		store: store,
		log:   logging.GetLogger("repo.user.sqlite_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser using SQLite.
// The UNIQUE index on username enforces global uniqueness at the store
// boundary; a constraint violation maps to domain.ErrUserAlreadyExists.
func (r *SQLiteUserRepository) CreateUser(
	ctx context.Context,
	username string,
	passwordHash []byte,
	email string,
	role domain.Role,
) (int64, error) {
	unlock := r.store.LockWrites()
	defer unlock()

	res, err := r.store.DB().ExecContext(ctx,
		"INSERT INTO users (username, password_hash, email, role, created_at) VALUES (?, ?, ?, ?, ?)",
		username,
		passwordHash,
		email,
		string(role),
		time.Now().Unix(),
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
				fallthrough
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			default:
			}
		}

		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	return id, nil
}

// GetByUsernameAndRole implements Repository.GetByUsernameAndRole using SQLite.
func (r *SQLiteUserRepository) GetByUsernameAndRole(
	ctx context.Context,
	username string,
	role domain.Role,
) (*domain.User, error) {
	return r.scanUser(r.store.DB().QueryRowContext(ctx,
		"SELECT id, username, password_hash, email, role, created_at FROM users WHERE username = ? AND role = ?",
		username,
		string(role),
	))
}

// GetByID implements Repository.GetByID using SQLite.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(r.store.DB().QueryRowContext(ctx,
		"SELECT id, username, password_hash, email, role, created_at FROM users WHERE id = ?",
		id,
	))
}

func (r *SQLiteUserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, fmt.Errorf("query user: %w", err)
	}

	user.Role = domain.Role(role)

	return &user, nil
}
