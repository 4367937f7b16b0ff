package repository

import (
	"context"

	"dispatch/internal/domain"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Statuses []domain.OrderStatus
	Types    []domain.OrderType
	UserID   int64
}

// OrderRepository defines the persistence operations for orders.
type OrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByIDForUpdate retrieves an order by ID with a row lock. Only valid
	// inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error)

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)

	// Update updates an existing order.
	Update(ctx context.Context, order *domain.Order) error
}
