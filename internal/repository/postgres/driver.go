package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, user_id, name, phone, available, scanning_range_km)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.UserID,
		driver.Name,
		driver.Phone,
		driver.Available,
		driver.ScanningRangeKm,
	)
	return err
}

const driverColumns = `
	id, user_id, name, phone, current_lat, current_lng, available,
	scanning_range_km, active_at, inactive_at
`

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, phone))
}

// UpdateLocation stores the driver's last-known position.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id string, loc domain.LatLng) error {
	query := `UPDATE drivers SET current_lat = $1, current_lng = $2 WHERE id = $3`
	return r.exec(ctx, query, loc.Lat, loc.Lng, id)
}

// SetAvailability flips the availability flag, stamping the matching
// timestamp.
func (r *DriverRepository) SetAvailability(ctx context.Context, id string, available bool, at time.Time) error {
	query := `
		UPDATE drivers
		SET available = $1,
		    active_at = CASE WHEN $1 THEN $2 ELSE active_at END,
		    inactive_at = CASE WHEN $1 THEN inactive_at ELSE $2 END
		WHERE id = $3
	`
	return r.exec(ctx, query, available, at, id)
}

// SetScanningRange updates the driver's candidate search radius.
func (r *DriverRepository) SetScanningRange(ctx context.Context, id string, radiusKm float64) error {
	return r.exec(ctx, `UPDATE drivers SET scanning_range_km = $1 WHERE id = $2`, radiusKm, id)
}

func (r *DriverRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.Driver, error) {
	var driver domain.Driver
	var lat, lng sql.NullFloat64
	var activeAt, inactiveAt sql.NullTime

	err := row.Scan(
		&driver.ID,
		&driver.UserID,
		&driver.Name,
		&driver.Phone,
		&lat,
		&lng,
		&driver.Available,
		&driver.ScanningRangeKm,
		&activeAt,
		&inactiveAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if lat.Valid && lng.Valid {
		driver.Location = &domain.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	driver.ActiveAt = timeOrZero(activeAt)
	driver.InactiveAt = timeOrZero(inactiveAt)

	return &driver, nil
}
