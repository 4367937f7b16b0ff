package repository

import (
	"context"

	"dispatch/internal/domain"
)

// TravelRequestRepository defines the persistence operations for the two
// travel request variants.
type TravelRequestRepository interface {
	// CreateTravel persists a new travel request.
	CreateTravel(ctx context.Context, travel *domain.Travel) error

	// CreateDelivery persists a new delivery request.
	CreateDelivery(ctx context.Context, delivery *domain.Delivery) error

	// GetTravel retrieves a travel request by ID.
	GetTravel(ctx context.Context, id string) (*domain.Travel, error)

	// GetDelivery retrieves a delivery request by ID.
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)

	// GetByRef resolves a polymorphic reference to its concrete variant.
	GetByRef(ctx context.Context, kind domain.TravelRequestKind, id string) (domain.TravelRequest, error)

	// UpdateTravel updates the mutable fields of a travel request.
	UpdateTravel(ctx context.Context, travel *domain.Travel) error

	// ListByUser retrieves a user's requests of the given kind, newest first.
	ListByUser(ctx context.Context, kind domain.TravelRequestKind, userID int64) ([]domain.TravelRequest, error)
}
