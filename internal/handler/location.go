package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/service"
)

// LocationHandler handles HTTP requests for location checks.
type LocationHandler struct {
	locationService *service.LocationService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// ValidateLocationRequest is the HTTP request body for a city location check.
type ValidateLocationRequest struct {
	City          string  `json:"city"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	MaxDistanceKm float64 `json:"max_distance_km,omitempty"`
}

// ValidateLocationResponse is the HTTP response for a city location check.
type ValidateLocationResponse struct {
	Valid         bool    `json:"valid"`
	DistanceKm    float64 `json:"distance_km"`
	MaxDistanceKm float64 `json:"max_distance_km"`
	CityLatitude  float64 `json:"city_latitude,omitempty"`
	CityLongitude float64 `json:"city_longitude,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// ValidateLocation handles POST /v1/locations/validate
func (h *LocationHandler) ValidateLocation(c *gin.Context) {
	var req ValidateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.locationService.ValidateCityLocation(c.Request.Context(), service.ValidateCityLocationRequest{
		City:          req.City,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		MaxDistanceKm: req.MaxDistanceKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ValidateLocationResponse{
		Valid:         result.Valid,
		DistanceKm:    result.DistanceKm,
		MaxDistanceKm: result.MaxDistanceKm,
		CityLatitude:  result.CityLatitude,
		CityLongitude: result.CityLongitude,
		Message:       result.Message,
	})
}

// NearestCityRequest is the HTTP request body for a nearest city lookup.
type NearestCityRequest struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	MaxDistanceKm float64 `json:"max_distance_km,omitempty"`
}

// NearestCity handles POST /v1/locations/nearest-city
func (h *LocationHandler) NearestCity(c *gin.Context) {
	var req NearestCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	city, dist, err := h.locationService.NearestAllowedCity(c.Request.Context(), req.Latitude, req.Longitude, req.MaxDistanceKm)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"city":        city.Title,
		"latitude":    city.Latitude,
		"longitude":   city.Longitude,
		"distance_km": dist,
	})
}
