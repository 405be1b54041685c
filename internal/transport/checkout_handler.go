package transport

import (
	"errors"
	"io"
	"net/http"

	"novaforge-store/internal/middleware"
	"novaforge-store/internal/payment"
	"novaforge-store/internal/repository"
	"novaforge-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Webhook payloads are small JSON documents; anything larger is abuse.
const maxWebhookBodySize = 1 << 16

// CheckoutItemRequest represents one position of a checkout request
type CheckoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest represents the checkout request payload
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CheckoutResponse represents the checkout response
type CheckoutResponse struct {
	OrderID    string  `json:"order_id"`
	Total      float64 `json:"total"`
	PaymentURL string  `json:"payment_url"`
}

// CheckoutHandler handles checkout sessions and payment provider webhooks
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers the checkout and webhook routes. The webhook
// endpoint is public; it authenticates via the provider's signature.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/checkout", h.CreateCheckout)
	})
	r.Post("/api/webhooks/stripe", h.HandleWebhook)
}

// CreateCheckout opens a hosted payment session for the requested items
// and records the provisional order
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.CheckoutLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		lines = append(lines, service.CheckoutLine{ProductID: productID, Quantity: item.Quantity})
	}

	result, err := h.checkoutService.CreateSession(r.Context(), userID, lines)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			middleware.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		if errors.Is(err, payment.ErrGateway) {
			h.logger.Error("Payment provider rejected checkout", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadGateway, "payment provider unavailable")
			return
		}
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	h.logger.Info("Checkout session created",
		zap.String("order_id", result.OrderID.String()),
		zap.Float64("total", result.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, CheckoutResponse{
		OrderID:    result.OrderID.String(),
		Total:      result.Total,
		PaymentURL: result.PaymentURL,
	})
}

// HandleWebhook processes payment provider callbacks. Once the signature
// checks out the provider always gets a success response; internal
// reconciliation failures are logged and never surfaced, as the provider
// would otherwise retry an event we cannot act on.
func (h *CheckoutHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.checkoutService.HandleWebhook(r.Context(), payload, signature); err != nil {
		if errors.Is(err, payment.ErrSignatureInvalid) {
			h.logger.Warn("Webhook signature verification failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		h.logger.Error("Webhook processing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
