package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// TravelHandler handles HTTP requests for travel and delivery requests.
type TravelHandler struct {
	travelService *service.TravelService
}

// NewTravelHandler creates a new TravelHandler.
func NewTravelHandler(travelService *service.TravelService) *TravelHandler {
	return &TravelHandler{travelService: travelService}
}

// CreateTravelRequest is the HTTP request body for creating a travel request.
type CreateTravelRequest struct {
	UserID         int64           `json:"user"`
	From           domain.Location `json:"from_location"`
	To             domain.Location `json:"to_location"`
	Price          int64           `json:"price,omitempty"`
	Destination    string          `json:"destination,omitempty"`
	StartTime      string          `json:"start_time,omitempty"`
	TravelClass    string          `json:"travel_class,omitempty"`
	PassengerCount int             `json:"passenger_count,omitempty"`
	HasWoman       bool            `json:"has_woman,omitempty"`
}

// CreateDeliveryRequest is the HTTP request body for creating a delivery
// request.
type CreateDeliveryRequest struct {
	UserID      int64           `json:"user"`
	From        domain.Location `json:"from_location"`
	To          domain.Location `json:"to_location"`
	Price       int64           `json:"price,omitempty"`
	Destination string          `json:"destination,omitempty"`
	StartTime   string          `json:"start_time,omitempty"`
}

// UpdateTravelRequest is the HTTP request body for a partial travel update.
type UpdateTravelRequest struct {
	TravelClass    *string `json:"travel_class,omitempty"`
	PassengerCount *int    `json:"passenger_count,omitempty"`
	HasWoman       *bool   `json:"has_woman,omitempty"`
	Price          *int64  `json:"price,omitempty"`
	Rate           *int    `json:"rate,omitempty"`
}

// TravelResponse is the HTTP representation of a travel request.
type TravelResponse struct {
	ID             string          `json:"id"`
	UserID         int64           `json:"user"`
	From           domain.Location `json:"from_location"`
	To             domain.Location `json:"to_location"`
	Price          int64           `json:"price"`
	Destination    string          `json:"destination,omitempty"`
	StartTime      string          `json:"start_time,omitempty"`
	TravelClass    string          `json:"travel_class"`
	PassengerCount int             `json:"passenger_count"`
	HasWoman       bool            `json:"has_woman"`
	Rate           int             `json:"rate,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

// DeliveryResponse is the HTTP representation of a delivery request.
type DeliveryResponse struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"user"`
	From        domain.Location `json:"from_location"`
	To          domain.Location `json:"to_location"`
	Price       int64           `json:"price"`
	Destination string          `json:"destination,omitempty"`
	StartTime   string          `json:"start_time,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func toTravelResponse(t *domain.Travel) TravelResponse {
	return TravelResponse{
		ID:             t.ID,
		UserID:         t.UserID,
		From:           t.From,
		To:             t.To,
		Price:          t.Price,
		Destination:    t.Destination,
		StartTime:      formatTime(t.StartTime),
		TravelClass:    string(t.TravelClass),
		PassengerCount: t.PassengerCount,
		HasWoman:       t.HasWoman,
		Rate:           t.Rate,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
}

func toDeliveryResponse(d *domain.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		From:        d.From,
		To:          d.To,
		Price:       d.Price,
		Destination: d.Destination,
		StartTime:   formatTime(d.StartTime),
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreateTravel handles POST /v1/travels
func (h *TravelHandler) CreateTravel(c *gin.Context) {
	var req CreateTravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	travel, err := h.travelService.CreateTravel(c.Request.Context(), service.CreateTravelRequest{
		UserID:         req.UserID,
		From:           req.From,
		To:             req.To,
		Price:          req.Price,
		Destination:    req.Destination,
		StartTime:      parseTime(req.StartTime),
		TravelClass:    domain.TravelClass(req.TravelClass),
		PassengerCount: req.PassengerCount,
		HasWoman:       req.HasWoman,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTravelResponse(travel))
}

// CreateDelivery handles POST /v1/deliveries
func (h *TravelHandler) CreateDelivery(c *gin.Context) {
	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivery, err := h.travelService.CreateDelivery(c.Request.Context(), service.CreateDeliveryRequest{
		UserID:      req.UserID,
		From:        req.From,
		To:          req.To,
		Price:       req.Price,
		Destination: req.Destination,
		StartTime:   parseTime(req.StartTime),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDeliveryResponse(delivery))
}

// UpdateTravel handles PATCH /v1/travels/:id
func (h *TravelHandler) UpdateTravel(c *gin.Context) {
	var req UpdateTravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	update := service.UpdateTravelRequest{
		TravelID:       c.Param("id"),
		PassengerCount: req.PassengerCount,
		HasWoman:       req.HasWoman,
		Price:          req.Price,
		Rate:           req.Rate,
	}
	if req.TravelClass != nil {
		class := domain.TravelClass(*req.TravelClass)
		update.TravelClass = &class
	}

	travel, err := h.travelService.UpdateTravel(c.Request.Context(), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTravelResponse(travel))
}

// GetTravel handles GET /v1/travels/:id
func (h *TravelHandler) GetTravel(c *gin.Context) {
	travel, err := h.travelService.GetTravel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTravelResponse(travel))
}

// GetDelivery handles GET /v1/deliveries/:id
func (h *TravelHandler) GetDelivery(c *gin.Context) {
	delivery, err := h.travelService.GetDelivery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// ListTravels handles GET /v1/travels
func (h *TravelHandler) ListTravels(c *gin.Context) {
	h.listByUser(c, domain.KindTravel)
}

// ListDeliveries handles GET /v1/deliveries
func (h *TravelHandler) ListDeliveries(c *gin.Context) {
	h.listByUser(c, domain.KindDelivery)
}

func (h *TravelHandler) listByUser(c *gin.Context, kind domain.TravelRequestKind) {
	userID := cast.ToInt64(c.Query("user"))

	requests, err := h.travelService.ListByUser(c.Request.Context(), kind, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]any, 0, len(requests))
	for _, r := range requests {
		switch v := r.(type) {
		case *domain.Travel:
			resp = append(resp, toTravelResponse(v))
		case *domain.Delivery:
			resp = append(resp, toDeliveryResponse(v))
		}
	}

	respondJSON(c, http.StatusOK, resp)
}

// CityFares handles GET /v1/cities/:title/fares
func (h *TravelHandler) CityFares(c *gin.Context) {
	fares, err := h.travelService.CityFares(c.Request.Context(), c.Param("title"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"economy":  fares.Economy,
		"standard": fares.Standard,
		"comfort":  fares.Comfort,
		"delivery": fares.Delivery,
	})
}
