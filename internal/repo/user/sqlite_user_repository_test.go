package user_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/repo/storage"
	"github.com/mkrupp/storefront/internal/repo/user"
)

func setupRepo(t *testing.T) *user.SQLiteUserRepository {
	t.Helper()

	store, err := storage.Open(storage.SQLiteStoreConfig{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return user.NewSQLiteUserRepository(store)
}

func TestSQLiteUserRepository_CreateUser(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, "alice", []byte("hash"), "alice@example.com", domain.RoleSeller)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if id == 0 {
		t.Error("CreateUser() returned zero id")
	}
}

func TestSQLiteUserRepository_UsernameUniqueAcrossRoles(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, "alice", []byte("hash"), "alice@example.com", domain.RoleSeller); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tests := []struct {
		name string
		role domain.Role
	}{
		{name: "same role", role: domain.RoleSeller},
		{name: "different role", role: domain.RoleCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateUser(ctx, "alice", []byte("hash2"), "alice2@example.com", tt.role)
			if !errors.Is(err, domain.ErrUserAlreadyExists) {
				t.Errorf("CreateUser() error = %v, want ErrUserAlreadyExists", err)
			}
		})
	}
}

func TestSQLiteUserRepository_GetByUsernameAndRole(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, "bob", []byte("hash"), "bob@example.com", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := repo.GetByUsernameAndRole(ctx, "bob", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("GetByUsernameAndRole() error = %v", err)
	}

	if got.ID != id || got.Username != "bob" || got.Email != "bob@example.com" || got.Role != domain.RoleCustomer {
		t.Errorf("GetByUsernameAndRole() = %+v", got)
	}

	if string(got.PasswordHash) != "hash" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "hash")
	}

	// Same username, wrong role, must not resolve.
	if _, err := repo.GetByUsernameAndRole(ctx, "bob", domain.RoleSeller); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetByUsernameAndRole() error = %v, want ErrUserNotFound", err)
	}
}

func TestSQLiteUserRepository_GetByID(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, "carol", []byte("hash"), "carol@example.com", domain.RoleSeller)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Username != "carol" {
		t.Errorf("GetByID() username = %q, want %q", got.Username, "carol")
	}

	if _, err := repo.GetByID(ctx, id+1000); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
}
