package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	UserID      int64  `json:"user"`
	OrderType   string `json:"order_type"`
	RequestKind string `json:"request_kind,omitempty"`
	RequestID   string `json:"request_id"`
}

// SubmitOrderRequest is the HTTP request body for an order submit. Driver is
// a pointer so the body can omit it or send null without touching the stored
// reference.
type SubmitOrderRequest struct {
	Status string  `json:"status,omitempty"`
	Driver *string `json:"driver,omitempty"`
}

// OrderResponse is the HTTP representation of an order.
type OrderResponse struct {
	ID          string `json:"id"`
	UserID      int64  `json:"user"`
	Driver      string `json:"driver,omitempty"`
	Status      string `json:"status"`
	OrderType   string `json:"order_type"`
	RequestKind string `json:"request_kind"`
	RequestID   string `json:"request_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		Driver:      order.DriverID,
		Status:      string(order.Status),
		OrderType:   string(order.OrderType),
		RequestKind: string(order.RequestKind),
		RequestID:   order.RequestID,
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   order.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), service.CreateOrderRequest{
		UserID:      req.UserID,
		OrderType:   domain.OrderType(req.OrderType),
		RequestKind: domain.TravelRequestKind(req.RequestKind),
		RequestID:   req.RequestID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toOrderResponse(order))
}

// SubmitOrder handles PATCH /v1/orders/:id
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var driverID string
	if req.Driver != nil {
		driverID = *req.Driver
	}

	order, err := h.orderService.SubmitTransition(c.Request.Context(), service.SubmitTransitionRequest{
		OrderID:   c.Param("id"),
		NewStatus: domain.OrderStatus(req.Status),
		DriverID:  driverID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// CancelOrder handles POST /v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	order, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toOrderResponse(order))
}

// ListOrders handles GET /v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		UserID: cast.ToInt64(c.Query("user")),
	}
	for _, s := range c.QueryArray("status") {
		filter.Statuses = append(filter.Statuses, domain.OrderStatus(s))
	}
	for _, t := range c.QueryArray("order_type") {
		filter.Types = append(filter.Types, domain.OrderType(t))
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}

	respondJSON(c, http.StatusOK, resp)
}
