package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/payment"
	"novaforge-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Metadata keys tying a checkout session back to the local order.
const (
	metadataUserID  = "user_id"
	metadataOrderID = "order_id"
)

// CheckoutLine is one requested position of a checkout.
type CheckoutLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutResult is returned to the caller of CreateSession.
type CheckoutResult struct {
	OrderID    uuid.UUID `json:"order_id"`
	Total      float64   `json:"total"`
	PaymentURL string    `json:"payment_url"`
}

// CheckoutService is the order fulfillment workflow. Two entry protocols
// converge on the same persisted shape:
//
// CreateSession (flow A) validates stock, persists a provisional order
// with its lines and opens a hosted payment session. Stock is NOT
// decremented yet.
//
// HandleWebhook (flow B) trusts the verified provider event, re-derives
// the order contents from the provider's line items and completes the
// provisional order in one transaction, decrementing stock.
type CheckoutService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, lines []CheckoutLine) (*CheckoutResult, error)
	// HandleWebhook verifies and processes a provider callback. It returns
	// an error only when the signature fails; reconciliation failures are
	// rolled back and logged, and the caller still reports success to the
	// provider (there is no retry path).
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

type checkoutService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     payment.Gateway
	successURL  string
	cancelURL   string
	logger      *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	gateway payment.Gateway,
	successURL, cancelURL string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		successURL:  successURL,
		cancelURL:   cancelURL,
		logger:      logger,
	}
}

// CreateSession implements flow A. The order it writes is provisional:
// status pending, stock untouched, completed later by the webhook.
func (s *checkoutService) CreateSession(ctx context.Context, userID uuid.UUID, lines []CheckoutLine) (*CheckoutResult, error) {
	orderID := uuid.New()

	var total float64
	sessionLines := make([]payment.SessionLine, 0, len(lines))
	orderLines := make([]*domain.OrderLine, 0, len(lines))

	for _, line := range lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s", repository.ErrInsufficientStock, product.Name)
		}

		total += product.Price * float64(line.Quantity)
		sessionLines = append(sessionLines, payment.SessionLine{
			PriceID:  product.StripePriceID,
			Quantity: int64(line.Quantity),
		})
		orderLines = append(orderLines, &domain.OrderLine{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
	}

	order := &domain.Order{
		ID:        orderID,
		UserID:    userID,
		Total:     total,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.orderRepo.CreateWithLines(ctx, order, orderLines); err != nil {
		return nil, fmt.Errorf("failed to persist provisional order: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, sessionLines, s.successURL, s.cancelURL, map[string]string{
		metadataUserID:  userID.String(),
		metadataOrderID: orderID.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.AttachSession(ctx, orderID, session.ID); err != nil {
		return nil, fmt.Errorf("failed to record session on order: %w", err)
	}

	return &CheckoutResult{
		OrderID:    orderID,
		Total:      total,
		PaymentURL: session.URL,
	}, nil
}

// HandleWebhook implements flow B.
func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		return err
	}

	if event.Type != payment.EventCheckoutCompleted {
		s.logger.Debug("Ignoring webhook event", zap.String("type", event.Type))
		return nil
	}

	if err := s.completeOrder(ctx, event); err != nil {
		// The provider has already been paid; the failure is local. Log
		// and report success upstream, there is no retry path.
		s.logger.Error("Failed to reconcile completed checkout",
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}

	return nil
}

// completeOrder resolves the provider-reported line items against the
// local catalog and completes the provisional order referenced by the
// session metadata.
func (s *checkoutService) completeOrder(ctx context.Context, event *payment.Event) error {
	orderID, err := uuid.Parse(event.Metadata[metadataOrderID])
	if err != nil {
		return fmt.Errorf("session metadata carries no valid order id: %w", err)
	}

	purchased, err := s.gateway.ListLineItems(ctx, event.SessionID)
	if err != nil {
		return err
	}

	var total float64
	lines := make([]*domain.OrderLine, 0, len(purchased))

	for _, item := range purchased {
		product, err := s.productRepo.FindByStripePriceID(ctx, item.PriceID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				// An unknown price reference skips only this line; the
				// rest of the event is still processed.
				s.logger.Error("No local product for purchased price",
					zap.String("price_id", item.PriceID),
					zap.String("session_id", event.SessionID),
				)
				continue
			}
			return err
		}

		total += item.Amount
		lines = append(lines, &domain.OrderLine{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  int(item.Quantity),
			UnitPrice: product.Price,
		})
	}

	err = s.orderRepo.Complete(ctx, orderID, total, lines)
	if errors.Is(err, repository.ErrOrderAlreadyCompleted) {
		// Replayed event; exactly one completed order per session.
		s.logger.Info("Checkout event already processed",
			zap.String("order_id", orderID.String()),
			zap.String("session_id", event.SessionID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("Order completed",
		zap.String("order_id", orderID.String()),
		zap.String("session_id", event.SessionID),
		zap.Float64("total", total),
	)

	return nil
}
