package service

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	"dispatch/internal/repository"
)

// PassengerService handles passenger registration and lookup.
type PassengerService struct {
	passengerRepo repository.PassengerRepository
	log           logger.Logger
}

// NewPassengerService creates a new PassengerService.
func NewPassengerService(passengerRepo repository.PassengerRepository, log logger.Logger) *PassengerService {
	return &PassengerService{passengerRepo: passengerRepo, log: log}
}

// RegisterPassengerRequest contains the parameters for registering a
// passenger.
type RegisterPassengerRequest struct {
	TelegramID int64
	FullName   string
	Phone      string
}

// RegisterPassenger registers a new passenger. Registering an already known
// telegram id returns the stored passenger unchanged.
func (s *PassengerService) RegisterPassenger(ctx context.Context, req RegisterPassengerRequest) (*domain.Passenger, error) {
	if req.TelegramID == 0 {
		return nil, ErrInvalidUserID
	}

	existing, err := s.passengerRepo.GetByTelegramID(ctx, req.TelegramID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	passenger := &domain.Passenger{
		TelegramID: req.TelegramID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		CreatedAt:  time.Now(),
	}

	if err := s.passengerRepo.Create(ctx, passenger); err != nil {
		return nil, err
	}

	s.log.Info("passenger registered", logger.Int64("telegram_id", passenger.TelegramID))

	return passenger, nil
}

// GetPassenger retrieves a passenger by telegram ID.
func (s *PassengerService) GetPassenger(ctx context.Context, telegramID int64) (*domain.Passenger, error) {
	if telegramID == 0 {
		return nil, ErrInvalidUserID
	}

	passenger, err := s.passengerRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPassengerNotFound
		}
		return nil, err
	}

	return passenger, nil
}
