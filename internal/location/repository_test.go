package location

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the clients and
// locations tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	schema := `
		CREATE TABLE clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			contact_name TEXT,
			contact_email TEXT,
			contact_phone TEXT,
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE locations (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT,
			city TEXT,
			timezone TEXT NOT NULL DEFAULT 'UTC',
			latitude REAL,
			longitude REAL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
		) STRICT;
		CREATE INDEX idx_locations_client ON locations(client_id);
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

func TestClientCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("creates and retrieves client", func(t *testing.T) {
		email := "ops@acme.example"
		c := &Client{ID: "cli-001", Name: "Acme Retail", ContactEmail: &email}

		if err := repo.CreateClient(ctx, c); err != nil {
			t.Fatalf("CreateClient() error = %v", err)
		}

		got, err := repo.GetClient(ctx, "cli-001")
		if err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		if got.Name != "Acme Retail" {
			t.Errorf("Name = %q, want %q", got.Name, "Acme Retail")
		}
		if got.ContactEmail == nil || *got.ContactEmail != email {
			t.Errorf("ContactEmail = %v, want %q", got.ContactEmail, email)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := repo.CreateClient(ctx, &Client{ID: "cli-bad", Name: "  "})
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("CreateClient() error = %v, want ErrInvalid", err)
		}
	})

	t.Run("updates client", func(t *testing.T) {
		c, err := repo.GetClient(ctx, "cli-001")
		if err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		c.Name = "Acme Retail Group"

		if err := repo.UpdateClient(ctx, c); err != nil {
			t.Fatalf("UpdateClient() error = %v", err)
		}

		got, err := repo.GetClient(ctx, "cli-001")
		if err != nil {
			t.Fatalf("GetClient() error = %v", err)
		}
		if got.Name != "Acme Retail Group" {
			t.Errorf("Name = %q, want %q", got.Name, "Acme Retail Group")
		}
	})

	t.Run("update of missing client returns ErrClientNotFound", func(t *testing.T) {
		err := repo.UpdateClient(ctx, &Client{ID: "cli-ghost", Name: "Ghost"})
		if !errors.Is(err, ErrClientNotFound) {
			t.Errorf("UpdateClient() error = %v, want ErrClientNotFound", err)
		}
	})

	t.Run("deletes client", func(t *testing.T) {
		if err := repo.DeleteClient(ctx, "cli-001"); err != nil {
			t.Fatalf("DeleteClient() error = %v", err)
		}
		if _, err := repo.GetClient(ctx, "cli-001"); !errors.Is(err, ErrClientNotFound) {
			t.Errorf("GetClient() after delete error = %v, want ErrClientNotFound", err)
		}
	})
}

func TestLocationCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.CreateClient(ctx, &Client{ID: "cli-001", Name: "Acme Retail"}); err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}

	t.Run("creates location with timezone default", func(t *testing.T) {
		l := &Location{ID: "loc-001", ClientID: "cli-001", Name: "Store 12"}

		if err := repo.CreateLocation(ctx, l); err != nil {
			t.Fatalf("CreateLocation() error = %v", err)
		}

		got, err := repo.GetLocation(ctx, "loc-001")
		if err != nil {
			t.Fatalf("GetLocation() error = %v", err)
		}
		if got.Timezone != "UTC" {
			t.Errorf("Timezone = %q, want UTC", got.Timezone)
		}
	})

	t.Run("requires client_id", func(t *testing.T) {
		err := repo.CreateLocation(ctx, &Location{ID: "loc-bad", Name: "Orphan"})
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("CreateLocation() error = %v, want ErrInvalid", err)
		}
	})

	t.Run("round-trips coordinates", func(t *testing.T) {
		lat, lng := 51.5074, -0.1278
		l := &Location{
			ID:       "loc-002",
			ClientID: "cli-001",
			Name:     "Store 14",
			Timezone: "Europe/London",
			Latitude: &lat, Longitude: &lng,
		}
		if err := repo.CreateLocation(ctx, l); err != nil {
			t.Fatalf("CreateLocation() error = %v", err)
		}

		got, err := repo.GetLocation(ctx, "loc-002")
		if err != nil {
			t.Fatalf("GetLocation() error = %v", err)
		}
		if got.Latitude == nil || *got.Latitude != lat {
			t.Errorf("Latitude = %v, want %v", got.Latitude, lat)
		}
		if got.Longitude == nil || *got.Longitude != lng {
			t.Errorf("Longitude = %v, want %v", got.Longitude, lng)
		}
	})

	t.Run("lists locations by client", func(t *testing.T) {
		got, err := repo.ListLocationsByClient(ctx, "cli-001")
		if err != nil {
			t.Fatalf("ListLocationsByClient() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("ListLocationsByClient() returned %d locations, want 2", len(got))
		}
	})

	t.Run("client delete cascades to locations", func(t *testing.T) {
		if err := repo.DeleteClient(ctx, "cli-001"); err != nil {
			t.Fatalf("DeleteClient() error = %v", err)
		}
		if _, err := repo.GetLocation(ctx, "loc-001"); !errors.Is(err, ErrLocationNotFound) {
			t.Errorf("GetLocation() after cascade error = %v, want ErrLocationNotFound", err)
		}
	})
}
