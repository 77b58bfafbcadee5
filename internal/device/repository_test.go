package device

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the devices table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			serial TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			family TEXT NOT NULL,
			location_id TEXT,
			firmware_version TEXT,
			status TEXT NOT NULL DEFAULT 'unknown',
			last_seen TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_devices_location ON devices(location_id);
		CREATE INDEX idx_devices_type ON devices(type);
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

// testDevice creates a device for testing.
func testDevice(id, serial string) *Device {
	return &Device{
		ID:     id,
		Serial: serial,
		Name:   "Lobby Controller",
		Type:   TypeLighting,
		Family: FamilyLighting,
		Status: StatusUnknown,
	}
}

func TestSQLiteRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("creates device successfully", func(t *testing.T) {
		d := testDevice("dev-001", "SN-0001")

		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "dev-001")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Serial != "SN-0001" {
			t.Errorf("Serial = %q, want %q", got.Serial, "SN-0001")
		}
		if got.Status != StatusUnknown {
			t.Errorf("Status = %q, want %q", got.Status, StatusUnknown)
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set")
		}
	})

	t.Run("returns ErrExists for duplicate serial", func(t *testing.T) {
		if err := repo.Create(ctx, testDevice("dev-dup-a", "SN-DUP")); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}

		err := repo.Create(ctx, testDevice("dev-dup-b", "SN-DUP"))
		if !errors.Is(err, ErrExists) {
			t.Errorf("Create() error = %v, want ErrExists", err)
		}
	})

	t.Run("round-trips optional fields", func(t *testing.T) {
		fw := "2.1.0"
		loc := "loc-123"
		d := testDevice("dev-002", "SN-0002")
		d.FirmwareVersion = &fw
		d.LocationID = &loc

		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "dev-002")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.FirmwareVersion == nil || *got.FirmwareVersion != fw {
			t.Errorf("FirmwareVersion = %v, want %q", got.FirmwareVersion, fw)
		}
		if got.LocationID == nil || *got.LocationID != loc {
			t.Errorf("LocationID = %v, want %q", got.LocationID, loc)
		}
	})
}

func TestSQLiteRepository_GetBySerial(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-001", "SN-0042")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetBySerial(ctx, "SN-0042")
	if err != nil {
		t.Fatalf("GetBySerial() error = %v", err)
	}
	if got.ID != "dev-001" {
		t.Errorf("ID = %q, want %q", got.ID, "dev-001")
	}

	if _, err := repo.GetBySerial(ctx, "SN-MISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBySerial() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	loc := "loc-a"
	devices := []*Device{
		{ID: "dev-1", Serial: "SN-1", Name: "Alpha", Type: TypeLighting, Family: FamilyLighting, LocationID: &loc},
		{ID: "dev-2", Serial: "SN-2", Name: "Bravo", Type: TypeCombo, Family: FamilyCombo},
		{ID: "dev-3", Serial: "SN-3", Name: "Charlie", Type: TypeLighting, Family: FamilyLighting},
	}
	for _, d := range devices {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create(%s) error = %v", d.ID, err)
		}
	}

	t.Run("lists all ordered by name", func(t *testing.T) {
		got, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("List() returned %d devices, want 3", len(got))
		}
		if got[0].Name != "Alpha" || got[2].Name != "Charlie" {
			t.Errorf("List() order = [%s, %s, %s]", got[0].Name, got[1].Name, got[2].Name)
		}
	})

	t.Run("filters by location", func(t *testing.T) {
		got, err := repo.ListByLocation(ctx, "loc-a")
		if err != nil {
			t.Fatalf("ListByLocation() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "dev-1" {
			t.Errorf("ListByLocation() = %v, want [dev-1]", got)
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		got, err := repo.ListByType(ctx, TypeCombo)
		if err != nil {
			t.Fatalf("ListByType() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "dev-2" {
			t.Errorf("ListByType() = %v, want [dev-2]", got)
		}
	})
}

func TestSQLiteRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-001", "SN-0001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	seen := time.Now().UTC().Truncate(time.Second)
	if err := repo.UpdateStatus(ctx, "dev-001", StatusOnline, seen); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "dev-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != StatusOnline {
		t.Errorf("Status = %q, want %q", got.Status, StatusOnline)
	}
	if got.LastSeen == nil || !got.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", got.LastSeen, seen)
	}

	if err := repo.UpdateStatus(ctx, "dev-missing", StatusOffline, seen); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	d := testDevice("dev-001", "SN-0001")
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	d.Name = "Renamed Controller"
	if err := repo.Update(ctx, d); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "dev-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Renamed Controller" {
		t.Errorf("Name = %q, want %q", got.Name, "Renamed Controller")
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testDevice("dev-001", "SN-0001")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, "dev-001"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByID(ctx, "dev-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, "dev-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() again error = %v, want ErrNotFound", err)
	}
}
