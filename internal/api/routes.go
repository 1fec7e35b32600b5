package api

import (
	"github.com/labstack/echo/v4"

	"github.com/edjordao11/site/internal/auth"
	"github.com/edjordao11/site/internal/config"
	"github.com/edjordao11/site/internal/database"
	"github.com/edjordao11/site/internal/notify"
	"github.com/edjordao11/site/internal/payment"
)

var (
	authService  *auth.Service
	orchestrator *payment.Orchestrator
	notifier     *notify.Notifier
	baseURL      string

	videoRepo    *database.VideoRepo
	purchaseRepo *database.PurchaseRepo

	loginLimiter = auth.DefaultRateLimiter()
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, cfg config.Config, authSvc *auth.Service, orch *payment.Orchestrator, mail *notify.Notifier) {
	authService = authSvc
	orchestrator = orch
	notifier = mail
	baseURL = cfg.BaseURL
	videoRepo = database.NewVideoRepo()
	purchaseRepo = database.NewPurchaseRepo()

	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (public - no auth required for login)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", loginHandler, loginLimiter.Middleware())
	authGroup.POST("/logout", logoutHandler)
	authGroup.GET("/session", sessionHandler)

	authProtected := authGroup.Group("")
	authProtected.Use(auth.RequireAuth(authSvc))
	authProtected.POST("/logout-all", logoutAllHandler)

	// Catalog routes; purchases may be made by guests, so auth is
	// optional and only used to resolve the buyer identity.
	videos := api.Group("/videos")
	videos.Use(auth.OptionalAuth(authSvc))
	videos.GET("", listVideosHandler)
	videos.GET("/:id", getVideoHandler)
	videos.POST("/:id/views", incrementViewsHandler)
	videos.POST("/:id/checkout/paypal", createPayPalOrderHandler)
	videos.POST("/:id/checkout/paypal/:orderId/capture", capturePayPalOrderHandler)
	videos.POST("/:id/checkout/stripe", startStripeCheckoutHandler)
	videos.POST("/:id/checkout/stripe/complete", completeStripeCheckoutHandler)

	// Manual crypto path is purely presentational
	api.GET("/wallets", listWalletsHandler)

	// Purchase history for logged-in buyers
	purchases := api.Group("/purchases")
	purchases.Use(auth.RequireAuth(authSvc))
	purchases.GET("", listPurchasesHandler)

	// Checkout/email endpoints kept under their original paths for
	// the front end
	api.POST("/create-checkout-session", createCheckoutSessionHandler)
	api.POST("/send-paypal-confirmation", sendPayPalConfirmationHandler)
	api.POST("/test-email-config", testEmailConfigHandler)
}
