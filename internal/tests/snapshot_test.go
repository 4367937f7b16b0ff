package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/notify"
	"dispatch/internal/repository"
)

func newSnapshotFixture() (*notify.SnapshotBuilder, *MockOrderRepository, *MockDriverRepository, *MockPassengerRepository, *MockTravelRepository) {
	orderRepo := NewMockOrderRepository()
	driverRepo := NewMockDriverRepository()
	passengerRepo := NewMockPassengerRepository()
	travelRepo := NewMockTravelRepository()
	builder := notify.NewSnapshotBuilder(orderRepo, driverRepo, passengerRepo, travelRepo)
	return builder, orderRepo, driverRepo, passengerRepo, travelRepo
}

func TestSnapshotBuild_FullyResolvedOrder(t *testing.T) {
	t.Parallel()

	builder, orderRepo, driverRepo, passengerRepo, travelRepo := newSnapshotFixture()

	passengerRepo.AddPassenger(&domain.Passenger{TelegramID: 42, FullName: "Aziz Karimov", Phone: "+998901234567", Rating: 5})
	driverRepo.AddDriver(&domain.Driver{ID: "drv-1", TelegramID: 99, FullName: "Bobur T.", Status: domain.DriverStatusOnline, Amount: 120000})
	travelRepo.AddTravel(&domain.Travel{ID: "trv-1", UserID: 42, From: domain.Location{City: "Tashkent"}, To: domain.Location{City: "Samarkand"}, TravelClass: domain.TravelClassStandard, PassengerCount: 2, Price: 500000})
	orderRepo.AddOrder(&domain.Order{
		ID:          "ord-1",
		UserID:      42,
		DriverID:    "drv-1",
		Status:      domain.OrderStatusAssigned,
		OrderType:   domain.OrderTypeTravel,
		RequestKind: domain.KindTravel,
		RequestID:   "trv-1",
	})

	snapshot, err := builder.Build(context.Background(), "ord-1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.ID != "ord-1" || snapshot.User != 42 || snapshot.Driver != "drv-1" {
		t.Fatalf("unexpected identity fields: %+v", snapshot)
	}
	if snapshot.Seq != 7 {
		t.Errorf("expected seq 7, got %d", snapshot.Seq)
	}
	if snapshot.Creator == nil || snapshot.Creator.FullName != "Aziz Karimov" {
		t.Errorf("expected resolved creator, got %+v", snapshot.Creator)
	}
	if snapshot.DriverDetails == nil || snapshot.DriverDetails.TelegramID != 99 {
		t.Errorf("expected resolved driver details, got %+v", snapshot.DriverDetails)
	}
	if snapshot.ContentObject == nil || snapshot.ContentObject.Type != "passengertravel" {
		t.Errorf("expected travel content object, got %+v", snapshot.ContentObject)
	}
}

func TestSnapshotBuild_MissingCreatorDegrades(t *testing.T) {
	t.Parallel()

	builder, orderRepo, _, _, travelRepo := newSnapshotFixture()

	travelRepo.AddTravel(&domain.Travel{ID: "trv-1", UserID: 42})
	orderRepo.AddOrder(&domain.Order{ID: "ord-1", UserID: 42, Status: domain.OrderStatusCreated, OrderType: domain.OrderTypeTravel, RequestKind: domain.KindTravel, RequestID: "trv-1"})

	snapshot, err := builder.Build(context.Background(), "ord-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Creator != nil {
		t.Errorf("expected absent creator, got %+v", snapshot.Creator)
	}
}

func TestSnapshotBuild_MissingDriverRecordDegrades(t *testing.T) {
	t.Parallel()

	builder, orderRepo, _, _, travelRepo := newSnapshotFixture()

	travelRepo.AddTravel(&domain.Travel{ID: "trv-1", UserID: 42})
	orderRepo.AddOrder(&domain.Order{ID: "ord-1", UserID: 42, DriverID: "ghost", Status: domain.OrderStatusAssigned, OrderType: domain.OrderTypeTravel, RequestKind: domain.KindTravel, RequestID: "trv-1"})

	snapshot, err := builder.Build(context.Background(), "ord-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Driver != "ghost" {
		t.Errorf("raw driver reference should survive, got %q", snapshot.Driver)
	}
	if snapshot.DriverDetails != nil {
		t.Errorf("expected absent driver details, got %+v", snapshot.DriverDetails)
	}
}

func TestSnapshotBuild_MissingOrderFails(t *testing.T) {
	t.Parallel()

	builder, _, _, _, _ := newSnapshotFixture()

	_, err := builder.Build(context.Background(), "missing", 1)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
