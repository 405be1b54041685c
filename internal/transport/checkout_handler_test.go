package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"novaforge-store/internal/middleware"
	"novaforge-store/internal/payment"
	"novaforge-store/internal/service"
	"novaforge-store/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stub checkout service for handler testing
type stubCheckoutService struct {
	result       *service.CheckoutResult
	sessionErr   error
	webhookErr   error
	lastUserID   uuid.UUID
	lastLines    []service.CheckoutLine
	webhookCalls int
}

func (s *stubCheckoutService) CreateSession(ctx context.Context, userID uuid.UUID, lines []service.CheckoutLine) (*service.CheckoutResult, error) {
	s.lastUserID = userID
	s.lastLines = lines
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	return s.result, nil
}

func (s *stubCheckoutService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	s.webhookCalls++
	return s.webhookErr
}

func newCheckoutRouter(stub *stubCheckoutService) (chi.Router, *token.Service) {
	tokens := token.NewService("test-secret", 60, 30)
	logger := zap.NewNop()
	handler := NewCheckoutHandler(stub, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, middleware.AuthMiddleware(tokens, logger))
	return router, tokens
}

func TestCheckoutRequiresAuthentication(t *testing.T) {
	router, _ := newCheckoutRouter(&stubCheckoutService{})

	body := bytes.NewBufferString(`{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`)
	req := httptest.NewRequest("POST", "/api/checkout", body)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", w.Code)
	}
}

func TestCheckoutReturnsPaymentURL(t *testing.T) {
	orderID := uuid.New()
	stub := &stubCheckoutService{
		result: &service.CheckoutResult{
			OrderID:    orderID,
			Total:      49.98,
			PaymentURL: "https://checkout.example.com/session",
		},
	}
	router, tokens := newCheckoutRouter(stub)

	userID := uuid.New()
	sessionToken, err := tokens.IssueSession(userID, "buyer@example.com", "user")
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}

	productID := uuid.New()
	body := bytes.NewBufferString(`{"items":[{"product_id":"` + productID.String() + `","quantity":2}]}`)
	req := httptest.NewRequest("POST", "/api/checkout", body)
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp CheckoutResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if resp.OrderID != orderID.String() || resp.PaymentURL == "" {
		t.Errorf("Response mismatch: %+v", resp)
	}

	if stub.lastUserID != userID {
		t.Errorf("Handler passed wrong user id to the service")
	}
	if len(stub.lastLines) != 1 || stub.lastLines[0].ProductID != productID || stub.lastLines[0].Quantity != 2 {
		t.Errorf("Handler passed wrong lines: %+v", stub.lastLines)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	stub := &stubCheckoutService{}
	router, tokens := newCheckoutRouter(stub)

	sessionToken, _ := tokens.IssueSession(uuid.New(), "buyer@example.com", "user")

	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty cart, got %d", w.Code)
	}
}

func TestWebhookRespondsSuccessWithoutAuth(t *testing.T) {
	stub := &stubCheckoutService{}
	router, _ := newCheckoutRouter(stub)

	req := httptest.NewRequest("POST", "/api/webhooks/stripe", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if resp["status"] != "success" {
		t.Errorf("Expected success status, got %v", resp)
	}
	if stub.webhookCalls != 1 {
		t.Errorf("Webhook should reach the service exactly once, got %d", stub.webhookCalls)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	stub := &stubCheckoutService{webhookErr: payment.ErrSignatureInvalid}
	router, _ := newCheckoutRouter(stub)

	req := httptest.NewRequest("POST", "/api/webhooks/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "garbage")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad signature, got %d", w.Code)
	}
}
