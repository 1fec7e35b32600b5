package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/edjordao11/site/internal/database"
	"github.com/edjordao11/site/internal/models"
	"github.com/edjordao11/site/internal/notify"
	"github.com/edjordao11/site/internal/payment"
)

// Attempts live across two HTTP calls (create then capture/complete),
// keyed by the provider's order or session id.
var (
	attemptMu sync.Mutex
	attempts  = make(map[string]*payment.Attempt)
)

func rememberAttempt(key string, a *payment.Attempt) {
	attemptMu.Lock()
	attempts[key] = a
	attemptMu.Unlock()
}

func recallAttempt(key string) *payment.Attempt {
	attemptMu.Lock()
	defer attemptMu.Unlock()
	return attempts[key]
}

func forgetAttempt(key string) {
	attemptMu.Lock()
	delete(attempts, key)
	attemptMu.Unlock()
}

func loadVideo(c echo.Context) (*models.Video, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid video id")
	}
	video, err := videoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "video not found")
		}
		return nil, err
	}
	return video, nil
}

// createPayPalOrderHandler handles POST /api/videos/:id/checkout/paypal
func createPayPalOrderHandler(c echo.Context) error {
	video, err := loadVideo(c)
	if err != nil {
		return err
	}

	attempt := orchestrator.NewAttempt(buyerIdentity(c), video, models.ProviderPayPal)

	orderID, err := orchestrator.CreatePayPalOrder(c.Request().Context(), attempt)
	if err != nil {
		c.Logger().Error("paypal create order error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	rememberAttempt(orderID, attempt)

	return c.JSON(http.StatusOK, map[string]string{
		"order_id":     orderID,
		"buyer_id":     attempt.BuyerID,
		"display_name": attempt.DisplayName,
	})
}

// capturePayPalOrderHandler handles
// POST /api/videos/:id/checkout/paypal/:orderId/capture
func capturePayPalOrderHandler(c echo.Context) error {
	orderID := c.Param("orderId")

	attempt := recallAttempt(orderID)
	if attempt == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "unknown order",
		})
	}

	if err := orchestrator.ApprovePayPal(c.Request().Context(), attempt, orderID); err != nil {
		c.Logger().Error("paypal capture error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	forgetAttempt(orderID)

	return c.JSON(http.StatusOK, map[string]string{
		"transaction_id": attempt.TransactionID,
		"buyer_id":       attempt.BuyerID,
		"state":          string(attempt.State),
	})
}

// startStripeCheckoutHandler handles POST /api/videos/:id/checkout/stripe.
// The pre-redirect countdown runs inside this request; aborting the
// request during the countdown cancels the purchase before any
// provider call.
func startStripeCheckoutHandler(c echo.Context) error {
	video, err := loadVideo(c)
	if err != nil {
		return err
	}

	attempt := orchestrator.NewAttempt(buyerIdentity(c), video, models.ProviderStripe)

	successURL := fmt.Sprintf("%s/video/%d?payment_success=true", baseURL, video.ID)
	cancelURL := fmt.Sprintf("%s/video/%d?payment_canceled=true", baseURL, video.ID)

	sessionID, err := orchestrator.StartStripe(c.Request().Context(), attempt, successURL, cancelURL)
	if err != nil {
		if errors.Is(err, payment.ErrCanceled) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "payment canceled",
			})
		}
		c.Logger().Error("stripe checkout error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	rememberAttempt(sessionID, attempt)

	return c.JSON(http.StatusOK, map[string]string{
		"sessionId":    sessionID,
		"buyer_id":     attempt.BuyerID,
		"display_name": attempt.DisplayName,
	})
}

// completeStripeCheckoutHandler handles
// POST /api/videos/:id/checkout/stripe/complete
func completeStripeCheckoutHandler(c echo.Context) error {
	video, err := loadVideo(c)
	if err != nil {
		return err
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind(&req); err != nil || req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "session_id is required",
		})
	}

	attempt := recallAttempt(req.SessionID)
	if attempt == nil {
		// The redirect back may land on a fresh process; rebuild the
		// attempt, verification still gates completion.
		attempt = orchestrator.NewAttempt(buyerIdentity(c), video, models.ProviderStripe)
	}

	err = orchestrator.CompleteStripe(c.Request().Context(), attempt, req.SessionID)
	if err != nil {
		if errors.Is(err, payment.ErrNotVerified) {
			return c.JSON(http.StatusPaymentRequired, map[string]string{
				"error": "payment not verified",
			})
		}
		c.Logger().Error("stripe complete error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	forgetAttempt(req.SessionID)

	return c.JSON(http.StatusOK, map[string]string{
		"transaction_id": attempt.TransactionID,
		"buyer_id":       attempt.BuyerID,
		"state":          string(attempt.State),
	})
}

// listWalletsHandler handles GET /api/wallets
func listWalletsHandler(c echo.Context) error {
	wallets := orchestrator.Wallets()
	if wallets == nil {
		wallets = []models.Wallet{}
	}
	return c.JSON(http.StatusOK, wallets)
}

// createCheckoutSessionHandler handles POST /api/create-checkout-session.
// The amount arrives already in minor units; the description sent to
// the provider is always drawn from the generic pool, whatever the
// caller supplies.
func createCheckoutSessionHandler(c echo.Context) error {
	var req struct {
		Amount     float64 `json:"amount"`
		Currency   string  `json:"currency"`
		Name       string  `json:"name"`
		SuccessURL string  `json:"success_url"`
		CancelURL  string  `json:"cancel_url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Amount == 0 || req.SuccessURL == "" || req.CancelURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Missing required parameters",
		})
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	sessionID, err := orchestrator.CreateCheckoutSession(
		c.Request().Context(),
		int64(math.Round(req.Amount)),
		req.Currency,
		req.SuccessURL,
		req.CancelURL,
	)
	if err != nil {
		c.Logger().Error("create checkout session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"sessionId": sessionID,
	})
}

// sendPayPalConfirmationHandler handles POST /api/send-paypal-confirmation
func sendPayPalConfirmationHandler(c echo.Context) error {
	var req struct {
		BuyerEmail    string `json:"buyerEmail"`
		BuyerName     string `json:"buyerName"`
		TransactionID string `json:"transactionId"`
		IsCompany     string `json:"isCompany"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.BuyerEmail == "" || req.TransactionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Required parameters missing",
		})
	}

	messageID, err := notifier.SendPurchaseConfirmation(req.BuyerEmail, req.BuyerName, req.TransactionID, req.IsCompany)
	if err != nil {
		if errors.Is(err, notify.ErrConfigurationMissing) {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Email service not configured. Please set up email credentials in the admin panel.",
			})
		}
		c.Logger().Error("send confirmation error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"messageId": messageID,
	})
}

// testEmailConfigHandler handles POST /api/test-email-config
func testEmailConfigHandler(c echo.Context) error {
	var req struct {
		TestEmail string `json:"testEmail"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.TestEmail == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Test email address is required",
		})
	}

	messageID, err := notifier.SendTestEmail(req.TestEmail)
	if err != nil {
		if errors.Is(err, notify.ErrConfigurationMissing) {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Email service not configured. Please set up email credentials in the admin panel.",
			})
		}
		c.Logger().Error("test email error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"messageId": messageID,
		"message":   "Test email sent successfully to " + req.TestEmail,
	})
}
