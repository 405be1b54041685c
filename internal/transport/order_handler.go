package transport

import (
	"errors"
	"net/http"
	"time"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/middleware"
	"novaforge-store/internal/repository"
	"novaforge-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderLineResponse represents one line of an order
type OrderLineResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderResponse represents order data
type OrderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Total     float64             `json:"total"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	Lines     []OrderLineResponse `json:"lines,omitempty"`
}

// AdminOrderResponse represents order data enriched with buyer details
type AdminOrderResponse struct {
	OrderResponse
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}

// OrderListResponse represents a page of orders with buyer details
type OrderListResponse struct {
	Orders   []AdminOrderResponse `json:"orders"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

func toOrderResponse(order *domain.Order, lines []*domain.OrderLine) OrderResponse {
	resp := OrderResponse{
		ID:        order.ID.String(),
		UserID:    order.UserID.String(),
		Total:     order.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return resp
}

// OrderHandler handles HTTP requests for order queries
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/mine", h.ListMyOrders)
			r.Get("/{id}", h.GetOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Get("/", h.ListOrders)
		})
	})
}

// ListOrders handles listing all orders with buyer details (admin only)
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	orders, total, err := h.orderService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	out := make([]AdminOrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, AdminOrderResponse{
			OrderResponse: toOrderResponse(&order.Order, nil),
			BuyerName:     order.BuyerName,
			BuyerEmail:    order.BuyerEmail,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Orders:   out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// ListMyOrders handles listing the authenticated user's orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list user orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order, nil))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetOrder handles getting an order with its lines. Regular users can
// only read their own orders, admins can read any.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, lines, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	role, _ := middleware.GetUserRole(r.Context())
	if order.UserID != userID && role != "admin" {
		middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order, lines))
}
