package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edjordao11/site/internal/models"
)

// State is the lifecycle of one purchase attempt.
type State string

const (
	StateIdle            State = "idle"
	StateInitiated       State = "initiated"
	StateProviderPending State = "provider-pending"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
	StateCanceled        State = "canceled"
)

var (
	// ErrCanceled is returned when the buyer aborts the pre-redirect
	// countdown. No provider call has been made at that point.
	ErrCanceled = errors.New("payment canceled")

	// ErrProvider wraps failures reported by a payment provider.
	ErrProvider = errors.New("payment provider error")

	// ErrNotVerified is returned when a completion reference cannot
	// be confirmed as paid.
	ErrNotVerified = errors.New("payment not verified")
)

// preRedirectCountdown is the window the buyer has to cancel before
// the browser is sent to the hosted checkout page.
const preRedirectCountdown = 10 * time.Second

// Attempt is one short-lived purchase attempt. Attempts are not
// persisted; only their completion is, as a purchase row.
type Attempt struct {
	ID          string
	BuyerID     string
	Video       *models.Video
	Provider    models.PaymentProvider
	Currency    string
	DisplayName string
	State       State

	// Set once the provider acknowledges.
	OrderID       string
	TransactionID string
}

// Orchestrator drives the three payment paths and owns the
// session-scoped unlock flags plus the per-transaction completion
// guard that keeps double-fired provider callbacks idempotent.
type Orchestrator struct {
	paypal    PayPalProvider
	stripe    StripeProvider
	verifier  CompletionVerifier
	purchases PurchaseStore
	notifier  Notifier
	wallets   *WalletBook

	countdown time.Duration
	now       func() time.Time

	mu        sync.Mutex
	completed map[string]bool            // provider transaction id -> done
	unlocked  map[string]map[int64]bool  // buyer id -> video id -> unlocked
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithCountdown overrides the pre-redirect countdown, used by tests.
func WithCountdown(d time.Duration) Option {
	return func(o *Orchestrator) { o.countdown = d }
}

// WithClock overrides the clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires the payment paths together. Any provider may
// be nil when not configured; starting an attempt on a nil provider
// fails with ErrProvider.
func NewOrchestrator(pp PayPalProvider, sp StripeProvider, verifier CompletionVerifier, purchases PurchaseStore, notifier Notifier, wallets *WalletBook, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		paypal:    pp,
		stripe:    sp,
		verifier:  verifier,
		purchases: purchases,
		notifier:  notifier,
		wallets:   wallets,
		countdown: preRedirectCountdown,
		now:       time.Now,
		completed: make(map[string]bool),
		unlocked:  make(map[string]map[int64]bool),
	}
	if o.verifier == nil {
		o.verifier = NopVerifier{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewAttempt starts a purchase attempt for the video. An empty
// buyerID gets a generated guest identity. The provider-facing
// display name is drawn from the generic pool and is never the real
// title.
func (o *Orchestrator) NewAttempt(buyerID string, video *models.Video, provider models.PaymentProvider) *Attempt {
	if buyerID == "" {
		buyerID = "guest-" + uuid.NewString()
	}
	return &Attempt{
		ID:          uuid.NewString(),
		BuyerID:     buyerID,
		Video:       video,
		Provider:    provider,
		Currency:    "USD",
		DisplayName: RandomProductName(),
		State:       StateInitiated,
	}
}

// CreatePayPalOrder asks PayPal for an order carrying the generic
// description and the real price.
func (o *Orchestrator) CreatePayPalOrder(ctx context.Context, a *Attempt) (string, error) {
	if o.paypal == nil {
		return "", fmt.Errorf("%w: paypal not configured", ErrProvider)
	}

	orderID, err := o.paypal.CreateOrder(ctx, a.Video.Price, a.Currency, a.DisplayName)
	if err != nil {
		a.State = StateFailed
		return "", fmt.Errorf("%w: create order: %v", ErrProvider, err)
	}

	a.OrderID = orderID
	a.State = StateProviderPending
	return orderID, nil
}

// ApprovePayPal captures an approved order and finalizes the
// purchase. Capture failures surface to the caller and are never
// silently retried. Approving the same order twice completes exactly
// one purchase and sends exactly one confirmation.
func (o *Orchestrator) ApprovePayPal(ctx context.Context, a *Attempt, orderID string) error {
	if o.paypal == nil {
		return fmt.Errorf("%w: paypal not configured", ErrProvider)
	}

	capture, err := o.paypal.CaptureOrder(ctx, orderID)
	if err != nil {
		a.State = StateFailed
		return fmt.Errorf("%w: capture order: %v", ErrProvider, err)
	}

	o.complete(a, capture.TransactionID, capture.PayerEmail, capture.PayerName)
	return nil
}

// StartStripe runs the cancellable pre-redirect countdown, then
// creates a hosted checkout session for the rounded minor-unit amount
// and returns its id for the browser redirect. Canceling the context
// during the countdown aborts before any provider call.
func (o *Orchestrator) StartStripe(ctx context.Context, a *Attempt, successURL, cancelURL string) (string, error) {
	if o.stripe == nil {
		return "", fmt.Errorf("%w: stripe not configured", ErrProvider)
	}

	if o.countdown > 0 {
		timer := time.NewTimer(o.countdown)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			a.State = StateCanceled
			return "", ErrCanceled
		case <-timer.C:
		}
	}

	sessionID, err := o.stripe.CreateCheckoutSession(ctx, MinorUnits(a.Video.Price), a.Currency, a.DisplayName, successURL, cancelURL)
	if err != nil {
		a.State = StateFailed
		return "", fmt.Errorf("%w: create checkout session: %v", ErrProvider, err)
	}

	a.OrderID = sessionID
	a.State = StateProviderPending
	return sessionID, nil
}

// CompleteStripe finalizes a purchase after the buyer returned via
// the success URL. The reference is verified with the provider first;
// the redirect alone is not trusted.
func (o *Orchestrator) CompleteStripe(ctx context.Context, a *Attempt, reference string) error {
	ok, err := o.verifier.VerifyCompletion(ctx, reference)
	if err != nil {
		return fmt.Errorf("%w: verify completion: %v", ErrProvider, err)
	}
	if !ok {
		a.State = StateFailed
		return ErrNotVerified
	}

	o.complete(a, reference, "", "")
	return nil
}

// CreateCheckoutSession creates a hosted checkout session outside any
// tracked attempt, for callers that already hold a minor-unit amount
// and their own redirect URLs. The description is always drawn from
// the generic pool.
func (o *Orchestrator) CreateCheckoutSession(ctx context.Context, amountMinor int64, currency, successURL, cancelURL string) (string, error) {
	if o.stripe == nil {
		return "", fmt.Errorf("%w: stripe not configured", ErrProvider)
	}
	return o.stripe.CreateCheckoutSession(ctx, amountMinor, currency, RandomProductName(), successURL, cancelURL)
}

// Wallets returns the manual-crypto wallet list. That path never
// completes programmatically; buyers are routed to support.
func (o *Orchestrator) Wallets() []models.Wallet {
	if o.wallets == nil {
		return nil
	}
	return o.wallets.List()
}

// HasUnlocked reports whether the buyer can access the video, from
// either the session-scoped flag or a durable purchase row.
func (o *Orchestrator) HasUnlocked(buyerID string, videoID int64) bool {
	o.mu.Lock()
	flagged := o.unlocked[buyerID][videoID]
	o.mu.Unlock()
	if flagged {
		return true
	}

	owned, err := o.purchases.HasPurchased(buyerID, videoID)
	if err != nil {
		log.Printf("purchase lookup failed: %v", err)
		return false
	}
	return owned
}

// complete transitions the attempt to completed, records the durable
// purchase at most once per provider transaction, unlocks the content
// for the browsing session and notifies best-effort. Notification
// failure never unwinds completion.
func (o *Orchestrator) complete(a *Attempt, transactionID, payerEmail, payerName string) {
	a.TransactionID = transactionID
	a.State = StateCompleted

	o.mu.Lock()
	first := !o.completed[transactionID]
	o.completed[transactionID] = true
	if o.unlocked[a.BuyerID] == nil {
		o.unlocked[a.BuyerID] = make(map[int64]bool)
	}
	o.unlocked[a.BuyerID][a.Video.ID] = true
	o.mu.Unlock()

	if !first {
		return
	}

	if _, err := o.purchases.Create(&models.Purchase{
		BuyerID:       a.BuyerID,
		VideoID:       a.Video.ID,
		Price:         a.Video.Price,
		Currency:      a.Currency,
		Provider:      a.Provider,
		TransactionID: transactionID,
		DisplayName:   a.DisplayName,
		CompletedAt:   o.now(),
	}); err != nil {
		log.Printf("purchase record failed for %s: %v", transactionID, err)
	}

	if o.notifier != nil && payerEmail != "" {
		if _, err := o.notifier.SendPurchaseConfirmation(payerEmail, payerName, transactionID, ""); err != nil {
			log.Printf("purchase confirmation failed for %s: %v", transactionID, err)
		}
	}
}

// MinorUnits converts a decimal price to the integer minor-unit
// amount providers expect: 9.99 -> 999.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
