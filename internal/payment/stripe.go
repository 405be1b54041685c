package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"novaforge-store/internal/config"
)

// stripeGateway implements Gateway against the Stripe API. One instance
// per process; the API client is safe for concurrent use.
type stripeGateway struct {
	api           *client.API
	webhookSecret string
	currency      string
}

// NewStripeGateway creates a Gateway backed by Stripe. Credentials come
// from the config struct, not from globals.
func NewStripeGateway(cfg config.StripeConfig) Gateway {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)

	return &stripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
	}
}

func (g *stripeGateway) CreateProduct(ctx context.Context, name, description, imageURL string) (string, error) {
	params := &stripe.ProductParams{
		Params: stripe.Params{Context: ctx},
		Name:   stripe.String(name),
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	if imageURL != "" {
		params.Images = stripe.StringSlice([]string{imageURL})
	}

	product, err := g.api.Products.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create product: %v", ErrGateway, err)
	}

	return product.ID, nil
}

func (g *stripeGateway) CreatePrice(ctx context.Context, productID string, amount float64) (string, error) {
	params := &stripe.PriceParams{
		Params:     stripe.Params{Context: ctx},
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(toCents(amount)),
		Currency:   stripe.String(g.currency),
	}

	price, err := g.api.Prices.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create price: %v", ErrGateway, err)
	}

	return price.ID, nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, lines []SessionLine, successURL, cancelURL string, metadata map[string]string) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(line.PriceID),
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create checkout session: %v", ErrGateway, err)
	}

	return &Session{ID: session.ID, URL: session.URL}, nil
}

func (g *stripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, ErrSignatureInvalid
	}

	parsed := &Event{Type: string(event.Type)}

	if parsed.Type == EventCheckoutCompleted {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: failed to parse session payload: %v", ErrGateway, err)
		}
		parsed.SessionID = session.ID
		parsed.Metadata = session.Metadata
	}

	return parsed, nil
}

func (g *stripeGateway) ListLineItems(ctx context.Context, sessionID string) ([]PurchasedLine, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx

	lines := []PurchasedLine{}
	iter := g.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		item := iter.LineItem()
		line := PurchasedLine{
			Quantity: item.Quantity,
			Amount:   float64(item.AmountTotal) / 100,
		}
		if item.Price != nil {
			line.PriceID = item.Price.ID
		}
		lines = append(lines, line)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list session line items: %v", ErrGateway, err)
	}

	return lines, nil
}

// toCents converts a base-currency amount to the provider's integer
// minor-unit representation.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
