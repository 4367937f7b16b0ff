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

// TravelService handles travel and delivery requests and city-based pricing.
type TravelService struct {
	travelRepo repository.TravelRequestRepository
	cityRepo   repository.CityRepository
	log        logger.Logger
}

// NewTravelService creates a new TravelService.
func NewTravelService(
	travelRepo repository.TravelRequestRepository,
	cityRepo repository.CityRepository,
	log logger.Logger,
) *TravelService {
	return &TravelService{
		travelRepo: travelRepo,
		cityRepo:   cityRepo,
		log:        log,
	}
}

// CreateTravelRequest contains the parameters for creating a travel request.
// A zero Price is filled in from the departure city's fare table when the
// city is known.
type CreateTravelRequest struct {
	UserID         int64
	From           domain.Location
	To             domain.Location
	Price          int64
	Destination    string
	StartTime      time.Time
	TravelClass    domain.TravelClass
	PassengerCount int
	HasWoman       bool
}

// CreateTravel creates a new travel request.
func (s *TravelService) CreateTravel(ctx context.Context, req CreateTravelRequest) (*domain.Travel, error) {
	if req.UserID == 0 {
		return nil, ErrInvalidUserID
	}

	if req.From.City == "" || req.To.City == "" {
		return nil, ErrInvalidLocation
	}

	class := req.TravelClass
	if class == "" {
		class = domain.TravelClassStandard
	}
	if !class.Valid() {
		return nil, ErrInvalidClass
	}

	passengers := req.PassengerCount
	if passengers < 1 {
		passengers = 1
	}

	price := req.Price
	if price == 0 {
		price = s.cityPrice(ctx, req.From.City, class)
	}

	now := time.Now()
	travel := &domain.Travel{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		From:           req.From,
		To:             req.To,
		Price:          price,
		Destination:    req.Destination,
		StartTime:      req.StartTime,
		TravelClass:    class,
		PassengerCount: passengers,
		HasWoman:       req.HasWoman,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.travelRepo.CreateTravel(ctx, travel); err != nil {
		return nil, err
	}

	return travel, nil
}

// CreateDeliveryRequest contains the parameters for creating a delivery
// request.
type CreateDeliveryRequest struct {
	UserID      int64
	From        domain.Location
	To          domain.Location
	Price       int64
	Destination string
	StartTime   time.Time
}

// CreateDelivery creates a new delivery request.
func (s *TravelService) CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*domain.Delivery, error) {
	if req.UserID == 0 {
		return nil, ErrInvalidUserID
	}

	if req.From.City == "" || req.To.City == "" {
		return nil, ErrInvalidLocation
	}

	price := req.Price
	if price == 0 {
		price = s.deliveryPrice(ctx, req.From.City)
	}

	now := time.Now()
	delivery := &domain.Delivery{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		From:        req.From,
		To:          req.To,
		Price:       price,
		Destination: req.Destination,
		StartTime:   req.StartTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.travelRepo.CreateDelivery(ctx, delivery); err != nil {
		return nil, err
	}

	return delivery, nil
}

// UpdateTravelRequest contains the mutable travel fields. Nil pointers leave
// the stored value untouched.
type UpdateTravelRequest struct {
	TravelID       string
	TravelClass    *domain.TravelClass
	PassengerCount *int
	HasWoman       *bool
	Price          *int64
	Rate           *int
}

// UpdateTravel applies a partial update to a travel request.
func (s *TravelService) UpdateTravel(ctx context.Context, req UpdateTravelRequest) (*domain.Travel, error) {
	if req.TravelID == "" {
		return nil, ErrInvalidOrderID
	}

	travel, err := s.travelRepo.GetTravel(ctx, req.TravelID)
	if err != nil {
		return nil, err
	}

	if req.TravelClass != nil {
		if !req.TravelClass.Valid() {
			return nil, ErrInvalidClass
		}
		travel.TravelClass = *req.TravelClass
	}

	if req.PassengerCount != nil {
		if *req.PassengerCount < 1 {
			return nil, ErrInvalidAmount
		}
		travel.PassengerCount = *req.PassengerCount
	}

	if req.HasWoman != nil {
		travel.HasWoman = *req.HasWoman
	}

	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrInvalidAmount
		}
		travel.Price = *req.Price
	}

	if req.Rate != nil {
		travel.Rate = *req.Rate
	}

	travel.UpdatedAt = time.Now()
	if err := s.travelRepo.UpdateTravel(ctx, travel); err != nil {
		return nil, err
	}

	return travel, nil
}

// GetTravel retrieves a travel request by ID.
func (s *TravelService) GetTravel(ctx context.Context, id string) (*domain.Travel, error) {
	return s.travelRepo.GetTravel(ctx, id)
}

// GetDelivery retrieves a delivery request by ID.
func (s *TravelService) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	return s.travelRepo.GetDelivery(ctx, id)
}

// ListByUser retrieves a user's requests of the given kind.
func (s *TravelService) ListByUser(ctx context.Context, kind domain.TravelRequestKind, userID int64) ([]domain.TravelRequest, error) {
	if !kind.Valid() {
		return nil, ErrRequestKindMismatch
	}
	if userID == 0 {
		return nil, ErrInvalidUserID
	}

	return s.travelRepo.ListByUser(ctx, kind, userID)
}

// CityFares returns the full fare table for a city.
func (s *TravelService) CityFares(ctx context.Context, city string) (*domain.CityPrices, error) {
	if city == "" {
		return nil, ErrInvalidLocation
	}

	c, err := s.cityRepo.GetByTitle(ctx, city)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}

	return &c.Prices, nil
}

func (s *TravelService) cityPrice(ctx context.Context, city string, class domain.TravelClass) int64 {
	c, err := s.cityRepo.GetByTitle(ctx, city)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("load city fares", logger.String("city", city), logger.Error(err))
		}
		return 0
	}
	return c.Prices.PriceFor(class)
}

func (s *TravelService) deliveryPrice(ctx context.Context, city string) int64 {
	c, err := s.cityRepo.GetByTitle(ctx, city)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("load city fares", logger.String("city", city), logger.Error(err))
		}
		return 0
	}
	return c.Prices.Delivery
}
