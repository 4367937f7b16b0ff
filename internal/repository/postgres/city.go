package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// CityRepository is a PostgreSQL implementation of repository.CityRepository.
type CityRepository struct {
	q Querier
}

// NewCityRepository creates a new PostgreSQL city repository.
func NewCityRepository(db *sql.DB) *CityRepository {
	return &CityRepository{q: db}
}

const cityColumns = `id, title, COALESCE(latitude, 0), COALESCE(longitude, 0), is_allowed,
	price_economy, price_standard, price_comfort, price_delivery, created_at, updated_at`

// Create adds a new city.
func (r *CityRepository) Create(ctx context.Context, city *domain.City) error {
	query := `INSERT INTO cities (id, title, latitude, longitude, is_allowed, price_economy, price_standard, price_comfort, price_delivery, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`
	_, err := r.q.ExecContext(ctx, query,
		city.ID, city.Title, city.Latitude, city.Longitude, city.IsAllowed,
		city.Prices.Economy, city.Prices.Standard, city.Prices.Comfort, city.Prices.Delivery,
	)
	return err
}

// GetByTitle retrieves a city by title (case-insensitive).
func (r *CityRepository) GetByTitle(ctx context.Context, title string) (*domain.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE LOWER(title) = LOWER($1)`

	var city domain.City
	err := r.q.QueryRowContext(ctx, query, title).Scan(
		&city.ID, &city.Title, &city.Latitude, &city.Longitude, &city.IsAllowed,
		&city.Prices.Economy, &city.Prices.Standard, &city.Prices.Comfort,
		&city.Prices.Delivery, &city.CreatedAt, &city.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &city, nil
}

// ListAllowed retrieves all cities open for dispatch.
func (r *CityRepository) ListAllowed(ctx context.Context) ([]*domain.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities WHERE is_allowed ORDER BY title`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []*domain.City
	for rows.Next() {
		var city domain.City
		if err := rows.Scan(
			&city.ID, &city.Title, &city.Latitude, &city.Longitude, &city.IsAllowed,
			&city.Prices.Economy, &city.Prices.Standard, &city.Prices.Comfort,
			&city.Prices.Delivery, &city.CreatedAt, &city.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cities = append(cities, &city)
	}
	return cities, rows.Err()
}
