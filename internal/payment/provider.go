package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/edjordao11/site/internal/models"
)

// PayPalCapture is the result of capturing an approved PayPal order.
type PayPalCapture struct {
	TransactionID string
	PayerEmail    string
	PayerName     string
}

// PayPalProvider is the order create/capture surface of PayPal.
type PayPalProvider interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, description string) (orderID string, err error)
	CaptureOrder(ctx context.Context, orderID string) (*PayPalCapture, error)
}

// StripeProvider creates hosted checkout sessions.
type StripeProvider interface {
	CreateCheckoutSession(ctx context.Context, amountMinorUnits int64, currency, name, successURL, cancelURL string) (sessionID string, err error)
}

// CompletionVerifier confirms with the provider that a transaction
// reference was actually paid before a purchase is finalized. The
// redirect-based path otherwise trusts a query parameter, which a
// buyer could replay.
type CompletionVerifier interface {
	VerifyCompletion(ctx context.Context, reference string) (bool, error)
}

// NopVerifier accepts every reference. Used for provider paths that
// are already server-verified (PayPal captures).
type NopVerifier struct{}

func (NopVerifier) VerifyCompletion(context.Context, string) (bool, error) { return true, nil }

// PurchaseStore is the durable entitlement surface the orchestrator
// writes to. *database.PurchaseRepo satisfies it.
type PurchaseStore interface {
	Create(p *models.Purchase) (*models.Purchase, error)
	HasPurchased(buyerID string, videoID int64) (bool, error)
}

// Notifier delivers the post-purchase confirmation. Delivery is
// best-effort; the orchestrator never propagates its errors.
type Notifier interface {
	SendPurchaseConfirmation(buyerEmail, buyerName, transactionID, seller string) (messageID string, err error)
}
