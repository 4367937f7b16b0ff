package repository

import (
	"context"

	"dispatch/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// DeductAmount atomically subtracts amount from the driver's balance and
	// returns the resulting balance. Returns ErrNotFound if the driver does
	// not exist.
	DeductAmount(ctx context.Context, id string, amount int64) (int64, error)
}

// DriverTransactionRepository records balance mutations.
type DriverTransactionRepository interface {
	// Create appends a ledger entry.
	Create(ctx context.Context, tx *domain.DriverTransaction) error

	// ListByDriver retrieves a driver's ledger entries, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.DriverTransaction, error)
}
