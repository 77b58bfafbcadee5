package alert

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the alerts table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE alerts (
			id TEXT PRIMARY KEY,
			device_id TEXT,
			severity TEXT NOT NULL DEFAULT 'warning',
			code TEXT NOT NULL,
			message TEXT NOT NULL,
			acknowledged INTEGER NOT NULL DEFAULT 0,
			acknowledged_by TEXT,
			acknowledged_at TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_alerts_device ON alerts(device_id);
		CREATE INDEX idx_alerts_acknowledged ON alerts(acknowledged);
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

func testAlert(id, deviceID string) *Alert {
	return &Alert{
		ID:       id,
		DeviceID: deviceID,
		Severity: SeverityWarning,
		Code:     CodeSyncTimeout,
		Message:  "device did not confirm its schedule",
	}
}

func TestAlertCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	t.Run("creates and retrieves alert", func(t *testing.T) {
		if err := repo.Create(ctx, testAlert("alr-001", "dev-42")); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(ctx, "alr-001")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Code != CodeSyncTimeout {
			t.Errorf("Code = %q, want %q", got.Code, CodeSyncTimeout)
		}
		if got.Acknowledged {
			t.Error("new alert should not be acknowledged")
		}
		if got.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set")
		}
	})

	t.Run("rejects missing device_id", func(t *testing.T) {
		a := testAlert("alr-bad", "")
		if err := repo.Create(ctx, a); !errors.Is(err, ErrInvalid) {
			t.Errorf("Create() error = %v, want ErrInvalid", err)
		}
	})

	t.Run("rejects unknown severity", func(t *testing.T) {
		a := testAlert("alr-bad", "dev-42")
		a.Severity = "catastrophic"
		if err := repo.Create(ctx, a); !errors.Is(err, ErrInvalid) {
			t.Errorf("Create() error = %v, want ErrInvalid", err)
		}
	})
}

func TestAlertList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, a := range []*Alert{
		testAlert("alr-001", "dev-1"),
		testAlert("alr-002", "dev-1"),
		testAlert("alr-003", "dev-2"),
	} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create(%s) error = %v", a.ID, err)
		}
	}
	if err := repo.Acknowledge(ctx, "alr-002", "usr-1"); err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}

	t.Run("lists all", func(t *testing.T) {
		got, err := repo.List(ctx, false)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 3 {
			t.Errorf("List() returned %d alerts, want 3", len(got))
		}
	})

	t.Run("filters unacknowledged", func(t *testing.T) {
		got, err := repo.List(ctx, true)
		if err != nil {
			t.Fatalf("List(unacknowledged) error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("List(unacknowledged) returned %d alerts, want 2", len(got))
		}
		for _, a := range got {
			if a.Acknowledged {
				t.Errorf("alert %s should not be acknowledged", a.ID)
			}
		}
	})

	t.Run("filters by device", func(t *testing.T) {
		got, err := repo.ListByDevice(ctx, "dev-2")
		if err != nil {
			t.Fatalf("ListByDevice() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "alr-003" {
			t.Errorf("ListByDevice() = %v, want [alr-003]", got)
		}
	})
}

func TestAlertAcknowledge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testAlert("alr-001", "dev-42")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Acknowledge(ctx, "alr-001", "usr-7"); err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "alr-001")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Acknowledged {
		t.Error("alert should be acknowledged")
	}
	if got.AckedBy == nil || *got.AckedBy != "usr-7" {
		t.Errorf("AckedBy = %v, want usr-7", got.AckedBy)
	}
	if got.AckedAt == nil {
		t.Error("AckedAt should be set")
	}

	// An already-acknowledged alert is not matched again.
	if err := repo.Acknowledge(ctx, "alr-001", "usr-8"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Acknowledge() twice error = %v, want ErrNotFound", err)
	}

	if err := repo.Acknowledge(ctx, "alr-ghost", "usr-7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Acknowledge() missing error = %v, want ErrNotFound", err)
	}
}
