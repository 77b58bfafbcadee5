package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the users table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'viewer',
			password_hash TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testUser(email string, role Role) *User {
	return &User{
		Email:        email,
		Name:         "Test User",
		Role:         role,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdHNhbHRzYWx0c2Fs$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		Enabled:      true,
	}
}

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("creates user and generates ID", func(t *testing.T) {
		u := testUser("alice@fleet.example", RoleOperator)

		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if u.ID == "" {
			t.Error("Create() should generate an ID")
		}

		got, err := repo.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Role != RoleOperator {
			t.Errorf("Role = %q, want %q", got.Role, RoleOperator)
		}
	})

	t.Run("stores email lowercased", func(t *testing.T) {
		u := testUser("Bob.Smith@Fleet.Example", RoleViewer)
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByEmail(ctx, "BOB.SMITH@fleet.example")
		if err != nil {
			t.Fatalf("GetByEmail() error = %v", err)
		}
		if got.Email != "bob.smith@fleet.example" {
			t.Errorf("Email = %q, want lowercase", got.Email)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		if err := repo.Create(ctx, testUser("dup@fleet.example", RoleViewer)); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}

		err := repo.Create(ctx, testUser("dup@fleet.example", RoleAdmin))
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("Create() error = %v, want ErrEmailExists", err)
		}
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		err := repo.Create(ctx, testUser("not-an-email", RoleViewer))
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Create() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		err := repo.Create(ctx, testUser("carol@fleet.example", Role("superuser")))
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Create() error = %v, want ErrForbidden", err)
		}
	})
}

func TestUserRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := testUser("alice@fleet.example", RoleViewer)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	u.Role = RoleAdmin
	u.Enabled = false
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", got.Role, RoleAdmin)
	}
	if got.Enabled {
		t.Error("Enabled = true, want false")
	}

	if err := repo.Update(ctx, &User{ID: "usr-ghost", Name: "Ghost", Role: RoleViewer}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Update() missing error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := testUser("alice@fleet.example", RoleViewer)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newHash, err := HashPassword("a-new-long-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := repo.UpdatePassword(ctx, u.ID, newHash); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PasswordHash != newHash {
		t.Error("password hash was not updated")
	}
}

func TestUserRepository_Count(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}

	if err := repo.Create(ctx, testUser("alice@fleet.example", RoleViewer)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	n, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestUserRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := testUser("alice@fleet.example", RoleViewer)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrUserNotFound", err)
	}
}
