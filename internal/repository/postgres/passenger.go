package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of repository.PassengerRepository.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `INSERT INTO passengers (telegram_id, full_name, phone, rating, total_rides, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`
	_, err := r.q.ExecContext(ctx, query,
		passenger.TelegramID, passenger.FullName, passenger.Phone,
		passenger.Rating, passenger.TotalRides,
	)
	return err
}

// GetByTelegramID retrieves a passenger by telegram ID.
func (r *PassengerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Passenger, error) {
	query := `SELECT telegram_id, COALESCE(full_name, ''), COALESCE(phone, ''), rating, total_rides, created_at
		FROM passengers WHERE telegram_id = $1`

	var passenger domain.Passenger
	err := r.q.QueryRowContext(ctx, query, telegramID).Scan(
		&passenger.TelegramID, &passenger.FullName, &passenger.Phone,
		&passenger.Rating, &passenger.TotalRides, &passenger.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &passenger, nil
}
