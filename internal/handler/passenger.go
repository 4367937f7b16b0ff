package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	passengerService *service.PassengerService
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(passengerService *service.PassengerService) *PassengerHandler {
	return &PassengerHandler{passengerService: passengerService}
}

// RegisterPassengerRequest is the HTTP request body for registering a
// passenger.
type RegisterPassengerRequest struct {
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
}

// PassengerResponse is the HTTP representation of a passenger.
type PassengerResponse struct {
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Rating     int    `json:"rating"`
	TotalRides int    `json:"total_rides"`
}

func toPassengerResponse(p *domain.Passenger) PassengerResponse {
	return PassengerResponse{
		TelegramID: p.TelegramID,
		FullName:   p.FullName,
		Phone:      p.Phone,
		Rating:     p.Rating,
		TotalRides: p.TotalRides,
	}
}

// RegisterPassenger handles POST /v1/passengers
func (h *PassengerHandler) RegisterPassenger(c *gin.Context) {
	var req RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	passenger, err := h.passengerService.RegisterPassenger(c.Request.Context(), service.RegisterPassengerRequest{
		TelegramID: req.TelegramID,
		FullName:   req.FullName,
		Phone:      req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPassengerResponse(passenger))
}

// GetPassenger handles GET /v1/passengers/:telegram_id
func (h *PassengerHandler) GetPassenger(c *gin.Context) {
	passenger, err := h.passengerService.GetPassenger(c.Request.Context(), cast.ToInt64(c.Param("telegram_id")))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPassengerResponse(passenger))
}
