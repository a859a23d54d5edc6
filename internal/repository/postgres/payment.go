package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// Create persists a new capture record.
func (r *PaymentRepository) Create(ctx context.Context, capture *domain.PaymentCapture) error {
	query := `
		INSERT INTO payment_captures (id, ride_id, amount, currency, intent_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		capture.ID,
		capture.RideID,
		capture.Amount,
		capture.Currency,
		capture.IntentID,
		capture.Status,
		capture.CreatedAt,
	)

	return err
}

// GetByRideID retrieves the capture for a ride. Returns nil if none exists.
func (r *PaymentRepository) GetByRideID(ctx context.Context, rideID string) (*domain.PaymentCapture, error) {
	query := `
		SELECT id, ride_id, amount, currency, intent_id, status, created_at
		FROM payment_captures WHERE ride_id = $1
	`

	var capture domain.PaymentCapture
	err := r.q.QueryRowContext(ctx, query, rideID).Scan(
		&capture.ID,
		&capture.RideID,
		&capture.Amount,
		&capture.Currency,
		&capture.IntentID,
		&capture.Status,
		&capture.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &capture, nil
}

// UpdateStatus updates the status and provider intent ID of a capture.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.CaptureStatus, intentID string) error {
	query := `UPDATE payment_captures SET status = $1, intent_id = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, status, intentID, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
