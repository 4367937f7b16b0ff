package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	"dispatch/internal/repository"
	"dispatch/internal/repository/postgres"
)

// TransitionSubscriber receives order transition events after the owning
// transaction has committed.
type TransitionSubscriber interface {
	OnOrderTransitioned(ctx context.Context, event domain.OrderTransitioned)
}

// OrderService handles the order lifecycle: creation, status submits and the
// driver assignment guard.
type OrderService struct {
	db          *sql.DB
	orderRepo   repository.OrderRepository
	driverRepo  repository.DriverRepository
	travelRepo  repository.TravelRequestRepository
	log         logger.Logger
	strict      bool
	subscribers []TransitionSubscriber
}

// NewOrderService creates a new OrderService. strict controls whether a
// conflicting driver reference on an already assigned order fails the submit
// or is silently dropped in favor of the stored driver.
func NewOrderService(
	db *sql.DB,
	orderRepo repository.OrderRepository,
	driverRepo repository.DriverRepository,
	travelRepo repository.TravelRequestRepository,
	log logger.Logger,
	strict bool,
) *OrderService {
	return &OrderService{
		db:         db,
		orderRepo:  orderRepo,
		driverRepo: driverRepo,
		travelRepo: travelRepo,
		log:        log,
		strict:     strict,
	}
}

// Subscribe registers a post-commit transition subscriber.
func (s *OrderService) Subscribe(sub TransitionSubscriber) {
	s.subscribers = append(s.subscribers, sub)
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	UserID      int64
	OrderType   domain.OrderType
	RequestKind domain.TravelRequestKind
	RequestID   string
}

// CreateOrder creates a new order in CREATED state against an existing travel
// or delivery request.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if req.UserID == 0 {
		return nil, ErrInvalidUserID
	}

	if !req.OrderType.Valid() {
		return nil, ErrInvalidOrderType
	}

	kind := req.RequestKind
	if kind == "" {
		kind = req.OrderType.RequestKind()
	}

	if kind != req.OrderType.RequestKind() {
		return nil, ErrRequestKindMismatch
	}

	// The referenced request must exist before an order can point at it.
	if _, err := s.travelRepo.GetByRef(ctx, kind, req.RequestID); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &domain.Order{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Status:      domain.OrderStatusCreated,
		OrderType:   req.OrderType,
		RequestKind: kind,
		RequestID:   req.RequestID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		logger.String("order_id", order.ID),
		logger.Int64("user_id", order.UserID),
		logger.String("order_type", string(order.OrderType)),
	)

	return order, nil
}

// SubmitTransitionRequest contains the parameters for an order submit. An
// empty NewStatus keeps the current status, an empty DriverID leaves the
// driver reference untouched.
type SubmitTransitionRequest struct {
	OrderID   string
	NewStatus domain.OrderStatus
	DriverID  string
}

// SubmitTransition applies a status and driver write to an order under a row
// lock, commits, and then fans the resulting transition event out to the
// registered subscribers.
func (s *OrderService) SubmitTransition(ctx context.Context, req SubmitTransitionRequest) (*domain.Order, error) {
	if req.OrderID == "" {
		return nil, ErrInvalidOrderID
	}

	if req.NewStatus != "" && !req.NewStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	if req.DriverID != "" {
		if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrDriverNotFound
			}
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txOrderRepo := postgres.NewOrderRepositoryWithTx(tx)

	var order *domain.Order
	order, err = txOrderRepo.GetByIDForUpdate(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	var event domain.OrderTransitioned
	event, err = order.ApplyTransition(req.NewStatus, req.DriverID, s.strict)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDriverChangeDenied):
			err = ErrDriverReassignmentDenied
		case errors.Is(err, domain.ErrUnknownOrderStatus):
			err = ErrInvalidStatus
		}
		return nil, err
	}

	order.UpdatedAt = time.Now()
	if err = txOrderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("order transitioned",
		logger.String("order_id", order.ID),
		logger.String("old_status", string(event.OldStatus)),
		logger.String("new_status", string(event.NewStatus)),
		logger.String("driver_id", event.DriverID),
	)

	s.publish(ctx, event)

	return order, nil
}

// CancelOrder rejects an order. The rejection reaches the driver, if any,
// through the usual notification path.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.SubmitTransition(ctx, SubmitTransitionRequest{
		OrderID:   orderID,
		NewStatus: domain.OrderStatusRejected,
	})
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	return s.orderRepo.GetByID(ctx, orderID)
}

// ListOrders retrieves orders matching the given filter.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	return s.orderRepo.List(ctx, filter)
}

// publish delivers the event to subscribers in registration order. Subscriber
// failures are their own to log; the submit already committed.
func (s *OrderService) publish(ctx context.Context, event domain.OrderTransitioned) {
	for _, sub := range s.subscribers {
		sub.OnOrderTransitioned(ctx, event)
	}
}
