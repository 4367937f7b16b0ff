package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
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

const driverColumns = `id, telegram_id, COALESCE(full_name, ''), COALESCE(phone, ''), rating, total_rides,
	COALESCE(from_city, ''), COALESCE(to_city, ''), status, amount, created_at, updated_at`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `INSERT INTO drivers (id, telegram_id, full_name, phone, rating, total_rides, from_city, to_city, status, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.TelegramID, driver.FullName, driver.Phone,
		driver.Rating, driver.TotalRides, driver.FromCity, driver.ToCity,
		driver.Status, driver.Amount,
	)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID, &driver.TelegramID, &driver.FullName, &driver.Phone,
		&driver.Rating, &driver.TotalRides, &driver.FromCity, &driver.ToCity,
		&driver.Status, &driver.Amount, &driver.CreatedAt, &driver.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := rows.Scan(
			&driver.ID, &driver.TelegramID, &driver.FullName, &driver.Phone,
			&driver.Rating, &driver.TotalRides, &driver.FromCity, &driver.ToCity,
			&driver.Status, &driver.Amount, &driver.CreatedAt, &driver.UpdatedAt,
		); err != nil {
			return nil, err
		}
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
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

// DeductAmount atomically subtracts amount from the driver's balance. The
// single UPDATE prevents lost updates under concurrent settlements for the
// same driver.
func (r *DriverRepository) DeductAmount(ctx context.Context, id string, amount int64) (int64, error) {
	query := `UPDATE drivers SET amount = amount - $1, updated_at = NOW() WHERE id = $2 RETURNING amount`

	var balance int64
	err := r.q.QueryRowContext(ctx, query, amount, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return balance, nil
}

// DriverTransactionRepository is a PostgreSQL implementation of
// repository.DriverTransactionRepository.
type DriverTransactionRepository struct {
	q Querier
}

// NewDriverTransactionRepository creates a new ledger repository.
func NewDriverTransactionRepository(db *sql.DB) *DriverTransactionRepository {
	return &DriverTransactionRepository{q: db}
}

// Create appends a ledger entry.
func (r *DriverTransactionRepository) Create(ctx context.Context, tx *domain.DriverTransaction) error {
	query := `INSERT INTO driver_transactions (id, driver_id, order_id, amount, reason, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NOW())`
	_, err := r.q.ExecContext(ctx, query, tx.ID, tx.DriverID, tx.OrderID, tx.Amount, tx.Reason)
	return err
}

// ListByDriver retrieves a driver's ledger entries, newest first.
func (r *DriverTransactionRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DriverTransaction, error) {
	query := `SELECT id, driver_id, COALESCE(order_id, ''), amount, COALESCE(reason, ''), created_at
		FROM driver_transactions WHERE driver_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.DriverTransaction
	for rows.Next() {
		var tx domain.DriverTransaction
		if err := rows.Scan(&tx.ID, &tx.DriverID, &tx.OrderID, &tx.Amount, &tx.Reason, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}
