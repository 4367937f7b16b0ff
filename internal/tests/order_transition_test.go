package tests

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// ORDER TRANSITION RULES
// ──────────────────────────────────────────────

func newOrder(status domain.OrderStatus, driverID string) *domain.Order {
	return &domain.Order{
		ID:          "order-1",
		UserID:      100,
		DriverID:    driverID,
		Status:      status,
		OrderType:   domain.OrderTypeTravel,
		RequestKind: domain.KindTravel,
		RequestID:   "travel-1",
	}
}

func TestTransition_DriverClaimForcesAssigned(t *testing.T) {
	t.Parallel()

	order := newOrder(domain.OrderStatusCreated, "")

	event, err := order.ApplyTransition("", "driver-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != domain.OrderStatusAssigned {
		t.Errorf("expected status %s, got %s", domain.OrderStatusAssigned, order.Status)
	}
	if order.DriverID != "driver-1" {
		t.Errorf("expected driver driver-1, got %q", order.DriverID)
	}
	if event.OldStatus != domain.OrderStatusCreated || event.NewStatus != domain.OrderStatusAssigned {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestTransition_DriverClaimWithCreatedStatusForcesAssigned(t *testing.T) {
	t.Parallel()

	order := newOrder(domain.OrderStatusCreated, "")

	event, err := order.ApplyTransition(domain.OrderStatusCreated, "driver-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.NewStatus != domain.OrderStatusAssigned {
		t.Errorf("expected forced ASSIGNED, got %s", event.NewStatus)
	}
}

func TestTransition_ConflictingDriverSilentlyKeepsStored(t *testing.T) {
	t.Parallel()

	order := newOrder(domain.OrderStatusAssigned, "driver-1")

	event, err := order.ApplyTransition(domain.OrderStatusAssigned, "driver-2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.DriverID != "driver-1" {
		t.Errorf("stored driver must win, got %q", order.DriverID)
	}
	if event.DriverID != "driver-1" {
		t.Errorf("event must carry the stored driver, got %q", event.DriverID)
	}
}

func TestTransition_ConflictingDriverDeniedInStrictMode(t *testing.T) {
	t.Parallel()

	order := newOrder(domain.OrderStatusAssigned, "driver-1")

	_, err := order.ApplyTransition(domain.OrderStatusAssigned, "driver-2", true)
	if !errors.Is(err, domain.ErrDriverChangeDenied) {
		t.Fatalf("expected ErrDriverChangeDenied, got %v", err)
	}

	if order.DriverID != "driver-1" {
		t.Errorf("driver must be untouched after denial, got %q", order.DriverID)
	}
	if order.Status != domain.OrderStatusAssigned {
		t.Errorf("status must be untouched after denial, got %s", order.Status)
	}
}

func TestTransition_SameDriverResubmitKeepsAssigned(t *testing.T) {
	t.Parallel()

	order := newOrder(domain.OrderStatusAssigned, "driver-1")

	event, err := order.ApplyTransition(domain.OrderStatusAssigned, "driver-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.OldStatus != domain.OrderStatusAssigned {
		t.Errorf("resubmit must report an ASSIGNED old status, got %s", event.OldStatus)
	}
	if order.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %q", order.DriverID)
	}
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	t.Parallel()

	order := newOrder(domain.OrderStatusCreated, "")

	_, err := order.ApplyTransition("flying", "", false)
	if !errors.Is(err, domain.ErrUnknownOrderStatus) {
		t.Fatalf("expected ErrUnknownOrderStatus, got %v", err)
	}
}

func TestTransition_RejectedReachableFromNonTerminalStates(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusCreated,
		domain.OrderStatusAssigned,
		domain.OrderStatusArrived,
		domain.OrderStatusStarted,
	} {
		order := newOrder(status, "driver-1")

		event, err := order.ApplyTransition(domain.OrderStatusRejected, "", false)
		if err != nil {
			t.Fatalf("reject from %s: unexpected error: %v", status, err)
		}
		if event.NewStatus != domain.OrderStatusRejected {
			t.Errorf("reject from %s: got %s", status, event.NewStatus)
		}
	}
}

// TestTransition_DriverNeverChangesOnceSet drives random submit sequences
// through an order and checks that the first driver to claim it sticks, in
// both guard modes.
func TestTransition_DriverNeverChangesOnceSet(t *testing.T) {
	t.Parallel()

	statuses := []domain.OrderStatus{
		"", domain.OrderStatusCreated, domain.OrderStatusAssigned,
		domain.OrderStatusArrived, domain.OrderStatusStarted,
		domain.OrderStatusEnded, domain.OrderStatusRejected,
	}
	drivers := []string{"", "driver-1", "driver-2", "driver-3"}

	for _, strict := range []bool{false, true} {
		rng := rand.New(rand.NewSource(42))
		for run := 0; run < 100; run++ {
			order := newOrder(domain.OrderStatusCreated, "")

			var claimed string
			for step := 0; step < 20; step++ {
				status := statuses[rng.Intn(len(statuses))]
				driver := drivers[rng.Intn(len(drivers))]

				_, err := order.ApplyTransition(status, driver, strict)
				if err != nil && !errors.Is(err, domain.ErrDriverChangeDenied) {
					t.Fatalf("unexpected error: %v", err)
				}

				if claimed == "" {
					claimed = order.DriverID
				} else if order.DriverID != claimed {
					t.Fatalf("strict=%v run=%d: driver changed from %q to %q", strict, run, claimed, order.DriverID)
				}
			}
		}
	}
}

// ──────────────────────────────────────────────
// ORDER SERVICE
// ──────────────────────────────────────────────

func TestOrderService_CreateOrderValidatesKindPairing(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	driverRepo := NewMockDriverRepository()
	travelRepo := NewMockTravelRepository()
	travelRepo.AddTravel(&domain.Travel{ID: "travel-1", UserID: 100})

	svc := service.NewOrderService(nil, orderRepo, driverRepo, travelRepo, logger.NewNop(), false)

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		UserID:      100,
		OrderType:   domain.OrderTypeTravel,
		RequestKind: domain.KindDelivery,
		RequestID:   "travel-1",
	})
	if !errors.Is(err, service.ErrRequestKindMismatch) {
		t.Fatalf("expected ErrRequestKindMismatch, got %v", err)
	}
}

func TestOrderService_CreateOrderDefaultsKindFromType(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	driverRepo := NewMockDriverRepository()
	travelRepo := NewMockTravelRepository()
	travelRepo.AddDelivery(&domain.Delivery{ID: "post-1", UserID: 100})

	svc := service.NewOrderService(nil, orderRepo, driverRepo, travelRepo, logger.NewNop(), false)

	order, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		UserID:    100,
		OrderType: domain.OrderTypeDelivery,
		RequestID: "post-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != domain.OrderStatusCreated {
		t.Errorf("expected CREATED, got %s", order.Status)
	}
	if order.RequestKind != domain.KindDelivery {
		t.Errorf("expected kind %s, got %s", domain.KindDelivery, order.RequestKind)
	}
	if orderRepo.GetOrder(order.ID) == nil {
		t.Error("order not persisted")
	}
}

func TestOrderService_CreateOrderRequiresExistingRequest(t *testing.T) {
	t.Parallel()

	svc := service.NewOrderService(
		nil, NewMockOrderRepository(), NewMockDriverRepository(), NewMockTravelRepository(),
		logger.NewNop(), false,
	)

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		UserID:    100,
		OrderType: domain.OrderTypeTravel,
		RequestID: "missing",
	})
	if err == nil {
		t.Fatal("expected error for missing request")
	}
}

func TestOrderService_SubmitRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	svc := service.NewOrderService(
		nil, NewMockOrderRepository(), NewMockDriverRepository(), NewMockTravelRepository(),
		logger.NewNop(), false,
	)

	_, err := svc.SubmitTransition(context.Background(), service.SubmitTransitionRequest{
		OrderID:   "order-1",
		NewStatus: domain.OrderStatusAssigned,
		DriverID:  "ghost",
	})
	if !errors.Is(err, service.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestOrderService_SubmitRejectsInvalidStatusBeforeTouchingStorage(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	svc := service.NewOrderService(
		nil, orderRepo, NewMockDriverRepository(), NewMockTravelRepository(),
		logger.NewNop(), false,
	)

	_, err := svc.SubmitTransition(context.Background(), service.SubmitTransitionRequest{
		OrderID:   "order-1",
		NewStatus: "teleported",
	})
	if !errors.Is(err, service.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if orderRepo.UpdateCallCount != 0 {
		t.Error("storage must not be touched for an invalid status")
	}
}
