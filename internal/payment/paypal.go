package payment

import (
	"context"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

// PayPalClient adapts the PayPal REST API to PayPalProvider.
type PayPalClient struct {
	client *paypal.Client
}

// NewPayPalClient builds a client against the sandbox or live API.
func NewPayPalClient(clientID, secret string, live bool) (*PayPalClient, error) {
	base := paypal.APIBaseSandBox
	if live {
		base = paypal.APIBaseLive
	}

	client, err := paypal.NewClient(clientID, secret, base)
	if err != nil {
		return nil, err
	}

	return &PayPalClient{client: client}, nil
}

// CreateOrder creates a capture-intent order for the given amount and
// description.
func (c *PayPalClient) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, description string) (string, error) {
	order, err := c.client.CreateOrder(ctx, paypal.OrderIntentCapture, []paypal.PurchaseUnitRequest{
		{
			Description: description,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    amount.StringFixed(2),
			},
		},
	}, nil, nil)
	if err != nil {
		return "", err
	}

	return order.ID, nil
}

// CaptureOrder captures funds for an approved order and returns the
// transaction id plus payer details when the provider supplies them.
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (*PayPalCapture, error) {
	resp, err := c.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, err
	}

	capture := &PayPalCapture{TransactionID: resp.ID}
	if resp.Payer != nil {
		capture.PayerEmail = resp.Payer.EmailAddress
		if resp.Payer.Name != nil {
			capture.PayerName = resp.Payer.Name.GivenName
		}
	}

	return capture, nil
}
