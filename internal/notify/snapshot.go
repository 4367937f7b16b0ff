package notify

import (
	"context"
	"errors"
	"strconv"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// Snapshot is the order payload delivered to the bot services.
type Snapshot struct {
	ID            string         `json:"id"`
	User          int64          `json:"user"`
	Creator       *CreatorInfo   `json:"creator,omitempty"`
	Driver        string         `json:"driver,omitempty"`
	DriverDetails *DriverInfo    `json:"driver_details,omitempty"`
	Status        string         `json:"status"`
	OrderType     string         `json:"order_type"`
	ContentObject *ContentObject `json:"content_object"`
	Seq           int64          `json:"seq,omitempty"`
}

// CreatorInfo is the resolved passenger who created the order.
type CreatorInfo struct {
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Rating     int    `json:"rating"`
	TotalRides int    `json:"total_rides"`
}

// DriverInfo is the resolved driver referenced by the order.
type DriverInfo struct {
	ID         string `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Rating     int    `json:"rating"`
	FromCity   string `json:"from_location,omitempty"`
	ToCity     string `json:"to_location,omitempty"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
}

// ContentObject is the discriminated rendering of the order's travel request.
type ContentObject struct {
	Type         string          `json:"type"`
	ID           string          `json:"id"`
	FromLocation domain.Location `json:"from_location"`
	ToLocation   domain.Location `json:"to_location"`
	TravelClass  string          `json:"travel_class"`
	Rate         *int            `json:"rate,omitempty"`
	Passenger    *int            `json:"passenger,omitempty"`
	HasWoman     *bool           `json:"has_woman,omitempty"`
	Price        *string         `json:"price"`
	CreatedAt    *string         `json:"created_at"`
}

// RenderContentObject serializes a travel request variant into the wire
// shape. Delivery requests always report travel_class "delivery".
func RenderContentObject(req domain.TravelRequest) *ContentObject {
	switch v := req.(type) {
	case *domain.Travel:
		return &ContentObject{
			Type:         string(domain.KindTravel),
			ID:           v.ID,
			FromLocation: v.From,
			ToLocation:   v.To,
			TravelClass:  string(v.TravelClass),
			Rate:         &v.Rate,
			Passenger:    &v.PassengerCount,
			HasWoman:     &v.HasWoman,
			Price:        renderPrice(v.Price),
			CreatedAt:    renderTime(v.CreatedAt),
		}
	case *domain.Delivery:
		return &ContentObject{
			Type:         string(domain.KindDelivery),
			ID:           v.ID,
			FromLocation: v.From,
			ToLocation:   v.To,
			TravelClass:  "delivery",
			Price:        renderPrice(v.Price),
			CreatedAt:    renderTime(v.CreatedAt),
		}
	default:
		return nil
	}
}

// SnapshotBuilder assembles order snapshots from persistence.
type SnapshotBuilder struct {
	orderRepo     repository.OrderRepository
	driverRepo    repository.DriverRepository
	passengerRepo repository.PassengerRepository
	travelRepo    repository.TravelRequestRepository
}

// NewSnapshotBuilder creates a new SnapshotBuilder.
func NewSnapshotBuilder(
	orderRepo repository.OrderRepository,
	driverRepo repository.DriverRepository,
	passengerRepo repository.PassengerRepository,
	travelRepo repository.TravelRequestRepository,
) *SnapshotBuilder {
	return &SnapshotBuilder{
		orderRepo:     orderRepo,
		driverRepo:    driverRepo,
		passengerRepo: passengerRepo,
		travelRepo:    travelRepo,
	}
}

// Build assembles the snapshot for an order. A missing creator or driver
// record degrades to an absent field rather than failing the delivery; a
// missing order fails it.
func (b *SnapshotBuilder) Build(ctx context.Context, orderID string, seq int64) (*Snapshot, error) {
	order, err := b.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		ID:        order.ID,
		User:      order.UserID,
		Driver:    order.DriverID,
		Status:    string(order.Status),
		OrderType: string(order.OrderType),
		Seq:       seq,
	}

	if creator, err := b.passengerRepo.GetByTelegramID(ctx, order.UserID); err == nil {
		snapshot.Creator = &CreatorInfo{
			TelegramID: creator.TelegramID,
			FullName:   creator.FullName,
			Phone:      creator.Phone,
			Rating:     creator.Rating,
			TotalRides: creator.TotalRides,
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if order.DriverID != "" {
		driver, err := b.driverRepo.GetByID(ctx, order.DriverID)
		if err == nil {
			snapshot.DriverDetails = &DriverInfo{
				ID:         driver.ID,
				TelegramID: driver.TelegramID,
				FullName:   driver.FullName,
				Phone:      driver.Phone,
				Rating:     driver.Rating,
				FromCity:   driver.FromCity,
				ToCity:     driver.ToCity,
				Status:     string(driver.Status),
				Amount:     driver.Amount,
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	req, err := b.travelRepo.GetByRef(ctx, order.RequestKind, order.RequestID)
	if err == nil {
		snapshot.ContentObject = RenderContentObject(req)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return snapshot, nil
}

func renderPrice(price int64) *string {
	if price == 0 {
		return nil
	}
	s := strconv.FormatInt(price, 10)
	return &s
}

func renderTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
