package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	"dispatch/internal/repository"
)

// DriverService handles driver registration, availability and balance stats.
type DriverService struct {
	driverRepo repository.DriverRepository
	ledgerRepo repository.DriverTransactionRepository
	log        logger.Logger
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	ledgerRepo repository.DriverTransactionRepository,
	log logger.Logger,
) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		ledgerRepo: ledgerRepo,
		log:        log,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	TelegramID int64
	FullName   string
	Phone      string
	FromCity   string
	ToCity     string
	Amount     int64
}

// RegisterDriver registers a new driver. A zero Amount starts the driver at
// the default balance.
func (s *DriverService) RegisterDriver(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.TelegramID == 0 {
		return nil, ErrInvalidUserID
	}

	amount := req.Amount
	if amount == 0 {
		amount = domain.DefaultDriverAmount
	}

	driver := &domain.Driver{
		ID:         uuid.New().String(),
		TelegramID: req.TelegramID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		FromCity:   req.FromCity,
		ToCity:     req.ToCity,
		Status:     domain.DriverStatusOffline,
		Amount:     amount,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	s.log.Info("driver registered",
		logger.String("driver_id", driver.ID),
		logger.Int64("telegram_id", driver.TelegramID),
	)

	return driver, nil
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	return driver, nil
}

// GetAllDrivers retrieves all drivers.
func (s *DriverService) GetAllDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// SetDriverOnline marks a driver as available.
func (s *DriverService) SetDriverOnline(ctx context.Context, driverID string) error {
	return s.setStatus(ctx, driverID, domain.DriverStatusOnline)
}

// SetDriverOffline marks a driver as unavailable.
func (s *DriverService) SetDriverOffline(ctx context.Context, driverID string) error {
	return s.setStatus(ctx, driverID, domain.DriverStatusOffline)
}

func (s *DriverService) setStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	err := s.driverRepo.UpdateStatus(ctx, driverID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDriverNotFound
	}
	return err
}

// DriverStats summarizes a driver's balance and ledger history.
type DriverStats struct {
	DriverID        string
	Balance         int64
	TotalCharged    int64
	TransactionsNum int
}

// GetDriverStats aggregates a driver's ledger into a stats summary.
func (s *DriverService) GetDriverStats(ctx context.Context, driverID string) (*DriverStats, error) {
	driver, err := s.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	stats := &DriverStats{
		DriverID: driver.ID,
		Balance:  driver.Amount,
	}
	for _, e := range entries {
		stats.TransactionsNum++
		if e.Amount < 0 {
			stats.TotalCharged += -e.Amount
		}
	}

	return stats, nil
}

// ListDriverTransactions retrieves a driver's ledger entries.
func (s *DriverService) ListDriverTransactions(ctx context.Context, driverID string) ([]*domain.DriverTransaction, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.ledgerRepo.ListByDriver(ctx, driverID)
}
