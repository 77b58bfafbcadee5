package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for client and location persistence.
type Repository interface {
	// Clients
	GetClient(ctx context.Context, id string) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	CreateClient(ctx context.Context, c *Client) error
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id string) error

	// Locations
	GetLocation(ctx context.Context, id string) (*Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	ListLocationsByClient(ctx context.Context, clientID string) ([]Location, error)
	CreateLocation(ctx context.Context, l *Location) error
	UpdateLocation(ctx context.Context, l *Location) error
	DeleteLocation(ctx context.Context, id string) error
}

const clientColumns = `id, name, contact_name, contact_email, contact_phone, notes, created_at, updated_at`

const locationColumns = `id, client_id, name, address, city, timezone, latitude, longitude, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetClient retrieves a client by ID.
func (r *SQLiteRepository) GetClient(ctx context.Context, id string) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	c, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("querying client: %w", err)
	}
	return c, nil
}

// ListClients retrieves all clients ordered by name.
func (r *SQLiteRepository) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client row: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}
	return clients, nil
}

// CreateClient inserts a new client.
func (r *SQLiteRepository) CreateClient(ctx context.Context, c *Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalid)
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, contact_name, contact_email, contact_phone, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Name,
		nullableString(c.ContactName),
		nullableString(c.ContactEmail),
		nullableString(c.ContactPhone),
		nullableString(c.Notes),
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

// UpdateClient modifies an existing client.
func (r *SQLiteRepository) UpdateClient(ctx context.Context, c *Client) error {
	c.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE clients SET name = ?, contact_name = ?, contact_email = ?, contact_phone = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		c.Name,
		nullableString(c.ContactName),
		nullableString(c.ContactEmail),
		nullableString(c.ContactPhone),
		nullableString(c.Notes),
		c.UpdatedAt.Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	return requireRow(result, ErrClientNotFound)
}

// DeleteClient removes a client. Its locations cascade.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return requireRow(result, ErrClientNotFound)
}

// GetLocation retrieves a location by ID.
func (r *SQLiteRepository) GetLocation(ctx context.Context, id string) (*Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`

	l, err := scanLocation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("querying location: %w", err)
	}
	return l, nil
}

// ListLocations retrieves all locations ordered by name.
func (r *SQLiteRepository) ListLocations(ctx context.Context) ([]Location, error) {
	return r.queryLocations(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
}

// ListLocationsByClient retrieves all locations for a client.
func (r *SQLiteRepository) ListLocationsByClient(ctx context.Context, clientID string) ([]Location, error) {
	return r.queryLocations(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE client_id = ? ORDER BY name`, clientID)
}

// CreateLocation inserts a new location.
func (r *SQLiteRepository) CreateLocation(ctx context.Context, l *Location) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: location name is required", ErrInvalid)
	}
	if l.ClientID == "" {
		return fmt.Errorf("%w: client_id is required", ErrInvalid)
	}
	if l.Timezone == "" {
		l.Timezone = "UTC"
	}

	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (id, client_id, name, address, city, timezone, latitude, longitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.ClientID,
		l.Name,
		nullableString(l.Address),
		nullableString(l.City),
		l.Timezone,
		nullableFloat(l.Latitude),
		nullableFloat(l.Longitude),
		l.CreatedAt.Format(time.RFC3339),
		l.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting location: %w", err)
	}
	return nil
}

// UpdateLocation modifies an existing location.
func (r *SQLiteRepository) UpdateLocation(ctx context.Context, l *Location) error {
	l.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE locations SET client_id = ?, name = ?, address = ?, city = ?, timezone = ?, latitude = ?, longitude = ?, updated_at = ?
		WHERE id = ?`,
		l.ClientID,
		l.Name,
		nullableString(l.Address),
		nullableString(l.City),
		l.Timezone,
		nullableFloat(l.Latitude),
		nullableFloat(l.Longitude),
		l.UpdatedAt.Format(time.RFC3339),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating location: %w", err)
	}
	return requireRow(result, ErrLocationNotFound)
}

// DeleteLocation removes a location.
func (r *SQLiteRepository) DeleteLocation(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	return requireRow(result, ErrLocationNotFound)
}

func (r *SQLiteRepository) queryLocations(ctx context.Context, query string, args ...any) ([]Location, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		locations = append(locations, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}
	return locations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(scanner rowScanner) (*Client, error) {
	var c Client
	var contactName, contactEmail, contactPhone, notes sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&c.ID,
		&c.Name,
		&contactName,
		&contactEmail,
		&contactPhone,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if contactName.Valid {
		c.ContactName = &contactName.String
	}
	if contactEmail.Valid {
		c.ContactEmail = &contactEmail.String
	}
	if contactPhone.Valid {
		c.ContactPhone = &contactPhone.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}

	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		c.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		c.UpdatedAt = t
	}

	return &c, nil
}

func scanLocation(scanner rowScanner) (*Location, error) {
	var l Location
	var address, city sql.NullString
	var latitude, longitude sql.NullFloat64
	var createdAt, updatedAt string

	err := scanner.Scan(
		&l.ID,
		&l.ClientID,
		&l.Name,
		&address,
		&city,
		&l.Timezone,
		&latitude,
		&longitude,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if address.Valid {
		l.Address = &address.String
	}
	if city.Valid {
		l.City = &city.String
	}
	if latitude.Valid {
		l.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		l.Longitude = &longitude.Float64
	}

	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		l.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		l.UpdatedAt = t
	}

	return &l, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// requireRow converts a zero-rows-affected result into notFound.
func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking result: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
