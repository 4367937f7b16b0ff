package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	"dispatch/internal/repository"
)

// DefaultCommissionPercent is the platform commission charged against the
// request price when a driver claims an order.
const DefaultCommissionPercent int64 = 5

// Ledger entry reasons.
const (
	ReasonCommission       = "commission"
	ReasonManualAdjustment = "manual_adjustment"
)

// SettlementService charges drivers the platform commission and handles
// administrative balance adjustments. It subscribes to order transitions and
// settles exactly once, on the transition that first moves an order into
// ASSIGNED with a driver present.
type SettlementService struct {
	orderRepo         repository.OrderRepository
	driverRepo        repository.DriverRepository
	ledgerRepo        repository.DriverTransactionRepository
	travelRepo        repository.TravelRequestRepository
	log               logger.Logger
	commissionPercent int64
}

// NewSettlementService creates a new SettlementService. A commissionPercent
// of zero falls back to DefaultCommissionPercent.
func NewSettlementService(
	orderRepo repository.OrderRepository,
	driverRepo repository.DriverRepository,
	ledgerRepo repository.DriverTransactionRepository,
	travelRepo repository.TravelRequestRepository,
	log logger.Logger,
	commissionPercent int64,
) *SettlementService {
	if commissionPercent <= 0 {
		commissionPercent = DefaultCommissionPercent
	}

	return &SettlementService{
		orderRepo:         orderRepo,
		driverRepo:        driverRepo,
		ledgerRepo:        ledgerRepo,
		travelRepo:        travelRepo,
		log:               log,
		commissionPercent: commissionPercent,
	}
}

// OnOrderTransitioned settles the commission for a freshly claimed order.
// Re-submits of an already assigned order arrive with OldStatus ASSIGNED and
// are skipped, so a driver is never charged twice for the same order.
func (s *SettlementService) OnOrderTransitioned(ctx context.Context, event domain.OrderTransitioned) {
	if event.NewStatus != domain.OrderStatusAssigned ||
		event.OldStatus == domain.OrderStatusAssigned ||
		event.DriverID == "" {
		return
	}

	order, err := s.orderRepo.GetByID(ctx, event.OrderID)
	if err != nil {
		s.log.Error("settlement: load order",
			logger.String("order_id", event.OrderID),
			logger.Error(err),
		)
		return
	}

	request, err := s.travelRepo.GetByRef(ctx, order.RequestKind, order.RequestID)
	if err != nil {
		s.log.Error("settlement: load request",
			logger.String("order_id", order.ID),
			logger.String("request_id", order.RequestID),
			logger.Error(err),
		)
		return
	}

	price := request.RequestPrice()
	if price <= 0 {
		s.log.Info("settlement: order has no price, nothing to charge",
			logger.String("order_id", order.ID),
		)
		return
	}

	commission := price * s.commissionPercent / 100
	if commission == 0 {
		return
	}

	balance, err := s.driverRepo.DeductAmount(ctx, event.DriverID, commission)
	if err != nil {
		s.log.Error("settlement: deduct commission",
			logger.String("order_id", order.ID),
			logger.String("driver_id", event.DriverID),
			logger.Int64("commission", commission),
			logger.Error(err),
		)
		return
	}

	s.recordEntry(ctx, &domain.DriverTransaction{
		ID:        uuid.New().String(),
		DriverID:  event.DriverID,
		OrderID:   order.ID,
		Amount:    -commission,
		Reason:    ReasonCommission,
		CreatedAt: time.Now(),
	})

	s.log.Info("commission settled",
		logger.String("order_id", order.ID),
		logger.String("driver_id", event.DriverID),
		logger.Int64("price", price),
		logger.Int64("commission", commission),
		logger.Int64("balance", balance),
	)
}

// ApplyManualAdjustment deducts amount from a driver's balance outside the
// normal settlement flow and returns the resulting balance.
func (s *SettlementService) ApplyManualAdjustment(ctx context.Context, driverID string, amount int64) (int64, error) {
	if driverID == "" {
		return 0, ErrInvalidDriverID
	}

	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := s.driverRepo.DeductAmount(ctx, driverID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrDriverNotFound
		}
		return 0, err
	}

	s.recordEntry(ctx, &domain.DriverTransaction{
		ID:        uuid.New().String(),
		DriverID:  driverID,
		Amount:    -amount,
		Reason:    ReasonManualAdjustment,
		CreatedAt: time.Now(),
	})

	s.log.Info("manual adjustment applied",
		logger.String("driver_id", driverID),
		logger.Int64("amount", amount),
		logger.Int64("balance", balance),
	)

	return balance, nil
}

// recordEntry appends a ledger entry. The balance mutation already happened,
// so a failed write here only loses audit detail.
func (s *SettlementService) recordEntry(ctx context.Context, entry *domain.DriverTransaction) {
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		s.log.Error("settlement: record ledger entry",
			logger.String("driver_id", entry.DriverID),
			logger.String("reason", entry.Reason),
			logger.Error(err),
		)
	}
}
