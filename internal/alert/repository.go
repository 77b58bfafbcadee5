package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for alert persistence.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Alert, error)
	List(ctx context.Context, unacknowledgedOnly bool) ([]Alert, error)
	ListByDevice(ctx context.Context, deviceID string) ([]Alert, error)
	Create(ctx context.Context, a *Alert) error
	Acknowledge(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
}

const alertColumns = `id, device_id, severity, code, message, acknowledged, acknowledged_by, acknowledged_at, created_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves an alert by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`

	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying alert: %w", err)
	}
	return a, nil
}

// List retrieves alerts newest first, optionally only unacknowledged ones.
func (r *SQLiteRepository) List(ctx context.Context, unacknowledgedOnly bool) ([]Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	if unacknowledgedOnly {
		query += ` WHERE acknowledged = 0`
	}
	query += ` ORDER BY created_at DESC`

	return r.queryAlerts(ctx, query)
}

// ListByDevice retrieves all alerts for a device, newest first.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string) ([]Alert, error) {
	return r.queryAlerts(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE device_id = ? ORDER BY created_at DESC`, deviceID)
}

// Create inserts a new alert.
func (r *SQLiteRepository) Create(ctx context.Context, a *Alert) error {
	if a.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalid)
	}
	if !a.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalid, a.Severity)
	}
	if a.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalid)
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, device_id, severity, code, message, acknowledged, acknowledged_by, acknowledged_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.DeviceID,
		string(a.Severity),
		a.Code,
		a.Message,
		boolToInt(a.Acknowledged),
		nullableString(a.AckedBy),
		nullableTime(a.AckedAt),
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

// Acknowledge marks an alert as acknowledged by a user.
func (r *SQLiteRepository) Acknowledge(ctx context.Context, id, userID string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET acknowledged = 1, acknowledged_by = ?, acknowledged_at = ?
		WHERE id = ? AND acknowledged = 0`,
		userID, now, id)
	if err != nil {
		return fmt.Errorf("acknowledging alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an alert.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) queryAlerts(ctx context.Context, query string, args ...any) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning alert row: %w", err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alert rows: %w", err)
	}
	return alerts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(scanner rowScanner) (*Alert, error) {
	var a Alert
	var severity string
	var acknowledged int
	var ackedBy sql.NullString
	var ackedAt sql.NullString
	var createdAt string

	err := scanner.Scan(
		&a.ID,
		&a.DeviceID,
		&severity,
		&a.Code,
		&a.Message,
		&acknowledged,
		&ackedBy,
		&ackedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.Severity = Severity(severity)
	a.Acknowledged = acknowledged != 0

	if ackedBy.Valid {
		a.AckedBy = &ackedBy.String
	}
	if ackedAt.Valid {
		if t, parseErr := time.Parse(time.RFC3339, ackedAt.String); parseErr == nil {
			a.AckedAt = &t
		}
	}
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		a.CreatedAt = t
	}

	return &a, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
