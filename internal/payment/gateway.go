package payment

import (
	"context"
	"errors"
)

var (
	// ErrSignatureInvalid is returned when an inbound webhook payload does
	// not verify against the shared secret.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	// ErrGateway masks provider-specific failures behind a single kind.
	ErrGateway = errors.New("payment gateway error")
)

// EventCheckoutCompleted is the provider event reporting a finished
// hosted-checkout payment.
const EventCheckoutCompleted = "checkout.session.completed"

// SessionLine is one line of a checkout session request, referencing a
// price record in the provider's catalog.
type SessionLine struct {
	PriceID  string
	Quantity int64
}

// Session is a hosted checkout session handle.
type Session struct {
	ID  string
	URL string
}

// Event is a verified, parsed webhook event.
type Event struct {
	Type      string
	SessionID string
	Metadata  map[string]string
}

// PurchasedLine is one line of a completed session as reported by the
// provider. Amount is the total for the line in the base currency unit.
type PurchasedLine struct {
	PriceID  string
	Quantity int64
	Amount   float64
}

// Gateway wraps the external payment provider. It is a thin pass-through:
// no retries, provider errors surface as ErrGateway.
type Gateway interface {
	// CreateProduct provisions a product record in the provider catalog
	// and returns its external id.
	CreateProduct(ctx context.Context, name, description, imageURL string) (string, error)
	// CreatePrice provisions a price for an external product id and
	// returns the external price id.
	CreatePrice(ctx context.Context, productID string, amount float64) (string, error)
	// CreateCheckoutSession opens a hosted checkout page for the given
	// lines. Metadata is echoed back on the completion webhook.
	CreateCheckoutSession(ctx context.Context, lines []SessionLine, successURL, cancelURL string, metadata map[string]string) (*Session, error)
	// VerifyWebhook checks the payload signature and parses the event.
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
	// ListLineItems fetches the purchased lines of a session from the
	// provider. This is the authoritative source for fulfillment.
	ListLineItems(ctx context.Context, sessionID string) ([]PurchasedLine, error)
}
