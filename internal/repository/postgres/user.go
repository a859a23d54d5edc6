package postgres

import (
	"context"
	"database/sql"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// PassengerRepository implements repository.PassengerRepository using PostgreSQL.
type PassengerRepository struct {
	db *sql.DB
}

// NewPassengerRepository creates a new PassengerRepository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `INSERT INTO passengers (id, name, phone) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, passenger.ID, passenger.Name, passenger.Phone)
	return err
}

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `SELECT id, name, phone, created_at FROM passengers WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a passenger by phone number.
func (r *PassengerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Passenger, error) {
	query := `SELECT id, name, phone, created_at FROM passengers WHERE phone = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, phone))
}

func (r *PassengerRepository) scan(row *sql.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
