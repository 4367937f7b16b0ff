package repository

import (
	"context"

	"dispatch/internal/domain"
)

// PassengerRepository defines the persistence operations for passengers.
type PassengerRepository interface {
	// Create adds a new passenger.
	Create(ctx context.Context, passenger *domain.Passenger) error

	// GetByTelegramID retrieves a passenger by telegram ID.
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Passenger, error)
}

// CityRepository defines the persistence operations for cities.
type CityRepository interface {
	// Create adds a new city.
	Create(ctx context.Context, city *domain.City) error

	// GetByTitle retrieves a city by title (case-insensitive).
	GetByTitle(ctx context.Context, title string) (*domain.City, error)

	// ListAllowed retrieves all cities open for dispatch.
	ListAllowed(ctx context.Context) ([]*domain.City, error)
}
