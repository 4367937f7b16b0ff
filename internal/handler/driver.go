package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService     *service.DriverService
	settlementService *service.SettlementService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, settlementService *service.SettlementService) *DriverHandler {
	return &DriverHandler{
		driverService:     driverService,
		settlementService: settlementService,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	FromCity   string `json:"from_city,omitempty"`
	ToCity     string `json:"to_city,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
}

// SeparationAmountRequest is the HTTP request body for a manual balance
// deduction.
type SeparationAmountRequest struct {
	Amount int64 `json:"amount"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID         string `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Rating     int    `json:"rating"`
	TotalRides int    `json:"total_rides"`
	FromCity   string `json:"from_city,omitempty"`
	ToCity     string `json:"to_city,omitempty"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
}

// TransactionResponse is the HTTP representation of a ledger entry.
type TransactionResponse struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id,omitempty"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:         d.ID,
		TelegramID: d.TelegramID,
		FullName:   d.FullName,
		Phone:      d.Phone,
		Rating:     d.Rating,
		TotalRides: d.TotalRides,
		FromCity:   d.FromCity,
		ToCity:     d.ToCity,
		Status:     string(d.Status),
		Amount:     d.Amount,
	}
}

// RegisterDriver handles POST /v1/drivers
func (h *DriverHandler) RegisterDriver(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), service.RegisterDriverRequest{
		TelegramID: req.TelegramID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		FromCity:   req.FromCity,
		ToCity:     req.ToCity,
		Amount:     req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAllDrivers handles GET /v1/drivers
func (h *DriverHandler) GetAllDrivers(c *gin.Context) {
	drivers, err := h.driverService.GetAllDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		resp = append(resp, toDriverResponse(d))
	}

	respondJSON(c, http.StatusOK, resp)
}

// SetDriverOnline handles POST /v1/drivers/:id/online
func (h *DriverHandler) SetDriverOnline(c *gin.Context) {
	if err := h.driverService.SetDriverOnline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": string(domain.DriverStatusOnline)})
}

// SetDriverOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) SetDriverOffline(c *gin.Context) {
	if err := h.driverService.SetDriverOffline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": string(domain.DriverStatusOffline)})
}

// SeparationAmount handles POST /v1/drivers/:id/separation-amount
func (h *DriverHandler) SeparationAmount(c *gin.Context) {
	var req SeparationAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	balance, err := h.settlementService.ApplyManualAdjustment(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"amount": balance})
}

// GetDriverStats handles GET /v1/drivers/:id/stats
func (h *DriverHandler) GetDriverStats(c *gin.Context) {
	stats, err := h.driverService.GetDriverStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"driver_id":     stats.DriverID,
		"amount":        stats.Balance,
		"total_charged": stats.TotalCharged,
		"transactions":  stats.TransactionsNum,
	})
}

// ListDriverTransactions handles GET /v1/drivers/:id/transactions
func (h *DriverHandler) ListDriverTransactions(c *gin.Context) {
	entries, err := h.driverService.ListDriverTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]TransactionResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, TransactionResponse{
			ID:        e.ID,
			OrderID:   e.OrderID,
			Amount:    e.Amount,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, resp)
}
