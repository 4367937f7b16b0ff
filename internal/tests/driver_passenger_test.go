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
// DRIVER REGISTRATION AND STATS
// ──────────────────────────────────────────────

func TestDriver_RegisterStartsAtDefaultBalance(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := service.NewDriverService(driverRepo, NewMockLedgerRepository(), logger.NewNop())

	driver, err := svc.RegisterDriver(context.Background(), service.RegisterDriverRequest{
		TelegramID: 555,
		FullName:   "Test Driver",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.Amount != domain.DefaultDriverAmount {
		t.Errorf("expected default amount %d, got %d", domain.DefaultDriverAmount, driver.Amount)
	}
	if driver.Status != domain.DriverStatusOffline {
		t.Errorf("expected offline status, got %s", driver.Status)
	}
	if driver.ID == "" {
		t.Error("expected generated driver id")
	}
}

func TestDriver_RegisterKeepsExplicitAmount(t *testing.T) {
	t.Parallel()

	svc := service.NewDriverService(NewMockDriverRepository(), NewMockLedgerRepository(), logger.NewNop())

	driver, err := svc.RegisterDriver(context.Background(), service.RegisterDriverRequest{
		TelegramID: 555,
		Amount:     999999,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.Amount != 999999 {
		t.Errorf("expected explicit amount kept, got %d", driver.Amount)
	}
}

func TestDriver_StatusTransitions(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOffline})
	svc := service.NewDriverService(driverRepo, NewMockLedgerRepository(), logger.NewNop())

	if err := svc.SetDriverOnline(context.Background(), "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := driverRepo.GetDriver("driver-1").Status; got != domain.DriverStatusOnline {
		t.Errorf("expected online, got %s", got)
	}

	if err := svc.SetDriverOffline(context.Background(), "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := driverRepo.GetDriver("driver-1").Status; got != domain.DriverStatusOffline {
		t.Errorf("expected offline, got %s", got)
	}

	if err := svc.SetDriverOnline(context.Background(), "ghost"); !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestDriver_StatsAggregateLedger(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Amount: 100000})
	ledger := NewMockLedgerRepository()
	_ = ledger.Create(context.Background(), &domain.DriverTransaction{
		ID: "tx-1", DriverID: "driver-1", Amount: -25000, Reason: service.ReasonCommission,
	})
	_ = ledger.Create(context.Background(), &domain.DriverTransaction{
		ID: "tx-2", DriverID: "driver-1", Amount: -5000, Reason: service.ReasonManualAdjustment,
	})
	_ = ledger.Create(context.Background(), &domain.DriverTransaction{
		ID: "tx-3", DriverID: "other", Amount: -100, Reason: service.ReasonCommission,
	})

	svc := service.NewDriverService(driverRepo, ledger, logger.NewNop())

	stats, err := svc.GetDriverStats(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Balance != 100000 {
		t.Errorf("expected balance 100000, got %d", stats.Balance)
	}
	if stats.TotalCharged != 30000 {
		t.Errorf("expected total charged 30000, got %d", stats.TotalCharged)
	}
	if stats.TransactionsNum != 2 {
		t.Errorf("expected 2 transactions, got %d", stats.TransactionsNum)
	}
}

// ──────────────────────────────────────────────
// PASSENGER REGISTRATION
// ──────────────────────────────────────────────

func TestPassenger_RegisterIsIdempotent(t *testing.T) {
	t.Parallel()

	passengerRepo := NewMockPassengerRepository()
	svc := service.NewPassengerService(passengerRepo, logger.NewNop())

	first, err := svc.RegisterPassenger(context.Background(), service.RegisterPassengerRequest{
		TelegramID: 100,
		FullName:   "First Name",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.RegisterPassenger(context.Background(), service.RegisterPassengerRequest{
		TelegramID: 100,
		FullName:   "Changed Name",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.FullName != first.FullName {
		t.Errorf("re-registration must return the stored passenger, got %q", second.FullName)
	}
}

func TestPassenger_GetUnknown(t *testing.T) {
	t.Parallel()

	svc := service.NewPassengerService(NewMockPassengerRepository(), logger.NewNop())

	_, err := svc.GetPassenger(context.Background(), 404)
	if !errors.Is(err, service.ErrPassengerNotFound) {
		t.Fatalf("expected ErrPassengerNotFound, got %v", err)
	}
}
