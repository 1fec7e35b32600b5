package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProvider identifies the checkout path a purchase went through.
type PaymentProvider string

const (
	ProviderPayPal       PaymentProvider = "paypal"
	ProviderStripe       PaymentProvider = "stripe"
	ProviderCryptoManual PaymentProvider = "crypto-manual"
)

// Purchase is the durable entitlement record written when a checkout
// completes. TransactionID is unique per provider transaction, which
// makes completion idempotent under double-fired provider callbacks.
type Purchase struct {
	ID            int64           `json:"id"`
	BuyerID       string          `json:"buyer_id"` // user id or guest-<uuid>
	VideoID       int64           `json:"video_id"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Provider      PaymentProvider `json:"provider"`
	TransactionID string          `json:"transaction_id"`
	DisplayName   string          `json:"display_name"` // generic name shown to the provider
	CompletedAt   time.Time       `json:"completed_at"`
}

// Wallet is one manual-crypto payment destination.
type Wallet struct {
	Currency string `json:"currency"`
	Address  string `json:"address"`
}
