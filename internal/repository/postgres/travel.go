package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// TravelRequestRepository is a PostgreSQL implementation of
// repository.TravelRequestRepository. Each variant has its own table;
// locations are stored as JSONB in the bot wire shape.
type TravelRequestRepository struct {
	q Querier
}

// NewTravelRequestRepository creates a new PostgreSQL travel request repository.
func NewTravelRequestRepository(db *sql.DB) *TravelRequestRepository {
	return &TravelRequestRepository{q: db}
}

// NewTravelRequestRepositoryWithTx creates a travel request repository using a
// transaction.
func NewTravelRequestRepositoryWithTx(tx *sql.Tx) *TravelRequestRepository {
	return &TravelRequestRepository{q: tx}
}

// CreateTravel persists a new travel request.
func (r *TravelRequestRepository) CreateTravel(ctx context.Context, travel *domain.Travel) error {
	from, to, err := marshalLocations(travel.From, travel.To)
	if err != nil {
		return err
	}

	query := `INSERT INTO passenger_travels
		(id, user_id, from_location, to_location, price, destination, start_time, travel_class, passenger_count, has_woman, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`
	_, err = r.q.ExecContext(ctx, query,
		travel.ID, travel.UserID, from, to, travel.Price, travel.Destination,
		nullTime(travel.StartTime), travel.TravelClass, travel.PassengerCount,
		travel.HasWoman, travel.Rate,
	)
	return err
}

// CreateDelivery persists a new delivery request.
func (r *TravelRequestRepository) CreateDelivery(ctx context.Context, delivery *domain.Delivery) error {
	from, to, err := marshalLocations(delivery.From, delivery.To)
	if err != nil {
		return err
	}

	query := `INSERT INTO passenger_deliveries
		(id, user_id, from_location, to_location, price, destination, start_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`
	_, err = r.q.ExecContext(ctx, query,
		delivery.ID, delivery.UserID, from, to, delivery.Price,
		delivery.Destination, nullTime(delivery.StartTime),
	)
	return err
}

// GetTravel retrieves a travel request by ID.
func (r *TravelRequestRepository) GetTravel(ctx context.Context, id string) (*domain.Travel, error) {
	query := `SELECT id, user_id, from_location, to_location, price, COALESCE(destination, ''),
		COALESCE(start_time, 'epoch'::timestamptz), travel_class, passenger_count, has_woman, rate, created_at, updated_at
		FROM passenger_travels WHERE id = $1`

	var (
		travel   domain.Travel
		from, to []byte
	)
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&travel.ID, &travel.UserID, &from, &to, &travel.Price, &travel.Destination,
		&travel.StartTime, &travel.TravelClass, &travel.PassengerCount,
		&travel.HasWoman, &travel.Rate, &travel.CreatedAt, &travel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := unmarshalLocations(from, to, &travel.From, &travel.To); err != nil {
		return nil, err
	}

	return &travel, nil
}

// GetDelivery retrieves a delivery request by ID.
func (r *TravelRequestRepository) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	query := `SELECT id, user_id, from_location, to_location, price, COALESCE(destination, ''),
		COALESCE(start_time, 'epoch'::timestamptz), created_at, updated_at
		FROM passenger_deliveries WHERE id = $1`

	var (
		delivery domain.Delivery
		from, to []byte
	)
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&delivery.ID, &delivery.UserID, &from, &to, &delivery.Price,
		&delivery.Destination, &delivery.StartTime, &delivery.CreatedAt, &delivery.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := unmarshalLocations(from, to, &delivery.From, &delivery.To); err != nil {
		return nil, err
	}

	return &delivery, nil
}

// GetByRef resolves a polymorphic reference to its concrete variant.
func (r *TravelRequestRepository) GetByRef(ctx context.Context, kind domain.TravelRequestKind, id string) (domain.TravelRequest, error) {
	switch kind {
	case domain.KindTravel:
		return r.GetTravel(ctx, id)
	case domain.KindDelivery:
		return r.GetDelivery(ctx, id)
	default:
		return nil, fmt.Errorf("unknown travel request kind %q", kind)
	}
}

// UpdateTravel updates the mutable fields of a travel request.
func (r *TravelRequestRepository) UpdateTravel(ctx context.Context, travel *domain.Travel) error {
	query := `UPDATE passenger_travels
		SET travel_class = $1, passenger_count = $2, has_woman = $3, rate = $4, price = $5, updated_at = NOW()
		WHERE id = $6`

	result, err := r.q.ExecContext(ctx, query,
		travel.TravelClass, travel.PassengerCount, travel.HasWoman,
		travel.Rate, travel.Price, travel.ID,
	)
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

// ListByUser retrieves a user's requests of the given kind, newest first.
func (r *TravelRequestRepository) ListByUser(ctx context.Context, kind domain.TravelRequestKind, userID int64) ([]domain.TravelRequest, error) {
	var table string
	switch kind {
	case domain.KindTravel:
		table = "passenger_travels"
	case domain.KindDelivery:
		table = "passenger_deliveries"
	default:
		return nil, fmt.Errorf("unknown travel request kind %q", kind)
	}

	query := `SELECT id FROM ` + table + ` WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	requests := make([]domain.TravelRequest, 0, len(ids))
	for _, id := range ids {
		req, err := r.GetByRef(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func marshalLocations(from, to domain.Location) ([]byte, []byte, error) {
	fromJSON, err := json.Marshal(from)
	if err != nil {
		return nil, nil, err
	}
	toJSON, err := json.Marshal(to)
	if err != nil {
		return nil, nil, err
	}
	return fromJSON, toJSON, nil
}

func unmarshalLocations(fromJSON, toJSON []byte, from, to *domain.Location) error {
	if err := json.Unmarshal(fromJSON, from); err != nil {
		return err
	}
	return json.Unmarshal(toJSON, to)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
