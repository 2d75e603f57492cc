package service

import (
	"context"
	"encoding/json"
	"fmt"

	"gemstore/internal/config"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

const orderIDMetadataKey = "order_id"

// stripeCheckoutClient implements CheckoutClient against Stripe's
// hosted checkout sessions.
type stripeCheckoutClient struct{}

// NewStripeCheckoutClient configures the Stripe SDK and returns a
// CheckoutClient backed by it.
func NewStripeCheckoutClient(cfg config.StripeConfig) CheckoutClient {
	stripe.Key = cfg.SecretKey
	return &stripeCheckoutClient{}
}

func (c *stripeCheckoutClient) CreateSession(ctx context.Context, req *SessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(req.Quantity),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(orderIDMetadataKey, req.OrderID.String())

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// stripeEventVerifier implements EventVerifier with Stripe's signed
// webhook scheme.
type stripeEventVerifier struct {
	secret string
}

// NewStripeEventVerifier returns an EventVerifier that checks the
// Stripe-Signature header against the webhook signing secret.
func NewStripeEventVerifier(cfg config.StripeConfig) EventVerifier {
	return &stripeEventVerifier{secret: cfg.WebhookSecret}
}

func (v *stripeEventVerifier) Verify(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, v.secret)
	if err != nil {
		return nil, err
	}

	result := &PaymentEvent{Type: string(event.Type)}

	if result.Type != CheckoutSessionCompleted {
		return result, nil
	}

	var checkoutSession stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	orderID, err := uuid.Parse(checkoutSession.Metadata[orderIDMetadataKey])
	if err != nil {
		return nil, fmt.Errorf("missing or invalid order id in session metadata: %w", err)
	}

	result.SessionID = checkoutSession.ID
	result.OrderID = orderID
	return result, nil
}
