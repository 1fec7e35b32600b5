package payment

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeClient adapts the Stripe API to StripeProvider and
// CompletionVerifier.
type StripeClient struct {
	api *client.API
}

// NewStripeClient builds a client for the given secret key.
func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

// CreateCheckoutSession creates a hosted checkout session for a
// one-time payment of the given minor-unit amount.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, amountMinorUnits int64, currency, name, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
					UnitAmount: stripe.Int64(amountMinorUnits),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}

	return session.ID, nil
}

// VerifyCompletion retrieves the checkout session and reports whether
// it was actually paid, so a replayed success URL cannot unlock
// content.
func (c *StripeClient) VerifyCompletion(ctx context.Context, sessionID string) (bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return false, err
	}

	return session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
