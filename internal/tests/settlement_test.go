package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// COMMISSION SETTLEMENT
// ──────────────────────────────────────────────

type settlementFixture struct {
	orderRepo  *MockOrderRepository
	driverRepo *MockDriverRepository
	ledger     *MockLedgerRepository
	travelRepo *MockTravelRepository
	svc        *service.SettlementService
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	f := &settlementFixture{
		orderRepo:  NewMockOrderRepository(),
		driverRepo: NewMockDriverRepository(),
		ledger:     NewMockLedgerRepository(),
		travelRepo: NewMockTravelRepository(),
	}
	f.svc = service.NewSettlementService(
		f.orderRepo, f.driverRepo, f.ledger, f.travelRepo, logger.NewNop(), 0,
	)
	return f
}

func (f *settlementFixture) addAssignedTravelOrder(price int64) {
	f.travelRepo.AddTravel(&domain.Travel{ID: "travel-1", UserID: 100, Price: price})
	f.orderRepo.AddOrder(&domain.Order{
		ID:          "order-1",
		UserID:      100,
		DriverID:    "driver-1",
		Status:      domain.OrderStatusAssigned,
		OrderType:   domain.OrderTypeTravel,
		RequestKind: domain.KindTravel,
		RequestID:   "travel-1",
	})
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Amount: domain.DefaultDriverAmount})
}

func TestSettlement_CommissionDeductedOnFirstClaim(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.addAssignedTravelOrder(500000)

	f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
		OrderID:   "order-1",
		OldStatus: domain.OrderStatusCreated,
		NewStatus: domain.OrderStatusAssigned,
		DriverID:  "driver-1",
	})

	driver := f.driverRepo.GetDriver("driver-1")
	if driver.Amount != 125000 {
		t.Errorf("expected balance 125000, got %d", driver.Amount)
	}

	entries := f.ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Amount != -25000 {
		t.Errorf("expected ledger amount -25000, got %d", entries[0].Amount)
	}
	if entries[0].Reason != service.ReasonCommission {
		t.Errorf("expected reason %q, got %q", service.ReasonCommission, entries[0].Reason)
	}
	if entries[0].OrderID != "order-1" {
		t.Errorf("expected ledger order reference, got %q", entries[0].OrderID)
	}
}

func TestSettlement_ResubmitDoesNotDoubleCharge(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.addAssignedTravelOrder(500000)

	// The first claim moves the order out of CREATED; a resubmit of the same
	// driver arrives with OldStatus already ASSIGNED.
	f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
		OrderID:   "order-1",
		OldStatus: domain.OrderStatusCreated,
		NewStatus: domain.OrderStatusAssigned,
		DriverID:  "driver-1",
	})
	f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
		OrderID:   "order-1",
		OldStatus: domain.OrderStatusAssigned,
		NewStatus: domain.OrderStatusAssigned,
		DriverID:  "driver-1",
	})

	driver := f.driverRepo.GetDriver("driver-1")
	if driver.Amount != 125000 {
		t.Errorf("expected balance 125000 after resubmit, got %d", driver.Amount)
	}
	if got := len(f.ledger.Entries()); got != 1 {
		t.Errorf("expected 1 ledger entry, got %d", got)
	}
}

func TestSettlement_NoDriverNoCharge(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.addAssignedTravelOrder(500000)

	f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
		OrderID:   "order-1",
		OldStatus: domain.OrderStatusCreated,
		NewStatus: domain.OrderStatusAssigned,
	})

	if f.driverRepo.DeductCallCount != 0 {
		t.Error("no deduction expected without a driver")
	}
}

func TestSettlement_NonAssignedTransitionsDoNotCharge(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.addAssignedTravelOrder(500000)

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusArrived, domain.OrderStatusStarted,
		domain.OrderStatusEnded, domain.OrderStatusRejected,
	} {
		f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
			OrderID:   "order-1",
			OldStatus: domain.OrderStatusAssigned,
			NewStatus: status,
			DriverID:  "driver-1",
		})
	}

	if f.driverRepo.DeductCallCount != 0 {
		t.Error("only the claim transition settles")
	}
}

func TestSettlement_UnpricedOrderSkipped(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.addAssignedTravelOrder(0)

	f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
		OrderID:   "order-1",
		OldStatus: domain.OrderStatusCreated,
		NewStatus: domain.OrderStatusAssigned,
		DriverID:  "driver-1",
	})

	if f.driverRepo.DeductCallCount != 0 {
		t.Error("unpriced order must not charge")
	}
	if driver := f.driverRepo.GetDriver("driver-1"); driver.Amount != domain.DefaultDriverAmount {
		t.Errorf("balance changed on unpriced order: %d", driver.Amount)
	}
}

func TestSettlement_CommissionRoundsDown(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.addAssignedTravelOrder(999)

	f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
		OrderID:   "order-1",
		OldStatus: domain.OrderStatusCreated,
		NewStatus: domain.OrderStatusAssigned,
		DriverID:  "driver-1",
	})

	// 999 * 5 / 100 == 49 in integer arithmetic.
	driver := f.driverRepo.GetDriver("driver-1")
	if want := domain.DefaultDriverAmount - 49; driver.Amount != want {
		t.Errorf("expected balance %d, got %d", want, driver.Amount)
	}
}

func TestSettlement_DeliveryOrderCharged(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.travelRepo.AddDelivery(&domain.Delivery{ID: "post-1", UserID: 100, Price: 100000})
	f.orderRepo.AddOrder(&domain.Order{
		ID:          "order-2",
		UserID:      100,
		DriverID:    "driver-1",
		Status:      domain.OrderStatusAssigned,
		OrderType:   domain.OrderTypeDelivery,
		RequestKind: domain.KindDelivery,
		RequestID:   "post-1",
	})
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Amount: domain.DefaultDriverAmount})

	f.svc.OnOrderTransitioned(context.Background(), domain.OrderTransitioned{
		OrderID:   "order-2",
		OldStatus: domain.OrderStatusCreated,
		NewStatus: domain.OrderStatusAssigned,
		DriverID:  "driver-1",
	})

	driver := f.driverRepo.GetDriver("driver-1")
	if want := domain.DefaultDriverAmount - 5000; driver.Amount != want {
		t.Errorf("expected balance %d, got %d", want, driver.Amount)
	}
}

// ──────────────────────────────────────────────
// MANUAL ADJUSTMENT
// ──────────────────────────────────────────────

func TestSettlement_ManualAdjustment(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Amount: 50000})

	balance, err := f.svc.ApplyManualAdjustment(context.Background(), "driver-1", 20000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 30000 {
		t.Errorf("expected balance 30000, got %d", balance)
	}

	entries := f.ledger.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Reason != service.ReasonManualAdjustment {
		t.Errorf("expected reason %q, got %q", service.ReasonManualAdjustment, entries[0].Reason)
	}
	if entries[0].Amount != -20000 {
		t.Errorf("expected amount -20000, got %d", entries[0].Amount)
	}
}

func TestSettlement_ManualAdjustmentUnknownDriver(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)

	_, err := f.svc.ApplyManualAdjustment(context.Background(), "ghost", 1000)
	if !errors.Is(err, service.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestSettlement_ManualAdjustmentRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture(t)
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Amount: 50000})

	for _, amount := range []int64{0, -100} {
		if _, err := f.svc.ApplyManualAdjustment(context.Background(), "driver-1", amount); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}
