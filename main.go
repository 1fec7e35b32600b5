package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/edjordao11/site/internal/api"
	"github.com/edjordao11/site/internal/auth"
	"github.com/edjordao11/site/internal/config"
	"github.com/edjordao11/site/internal/database"
	"github.com/edjordao11/site/internal/models"
	"github.com/edjordao11/site/internal/notify"
	"github.com/edjordao11/site/internal/payment"
)

func main() {
	cfg := config.Load()

	dbPath := cfg.DBPath
	if !filepath.IsAbs(dbPath) {
		cwd, _ := os.Getwd()
		dbPath = filepath.Join(cwd, dbPath)
	}

	log.Printf("Initializing database at %s", dbPath)
	if err := database.Open(database.Config{Path: dbPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := createDefaultAdminIfNeeded(); err != nil {
		log.Printf("Warning: failed to create default admin: %v", err)
	}

	sessions := auth.NewSessionManager(database.NewSessionRepo(), nil)
	authSvc := auth.NewService(database.NewUserRepo(), sessions)
	authSvc.StartAutoCheck(context.Background())

	settings := database.NewSettingsRepo()
	notifier := notify.NewNotifier(settings, cfg, nil)

	var paypalClient payment.PayPalProvider
	if cfg.PayPalClientID != "" && cfg.PayPalSecret != "" {
		client, err := payment.NewPayPalClient(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalLive)
		if err != nil {
			log.Printf("Warning: paypal client init failed: %v", err)
		} else {
			paypalClient = client
		}
	}

	var stripeClient payment.StripeProvider
	var verifier payment.CompletionVerifier
	if cfg.StripeSecretKey != "" {
		sc := payment.NewStripeClient(cfg.StripeSecretKey)
		stripeClient = sc
		verifier = sc
	}

	wallets := payment.ParseWallets(settings.GetOr(database.SettingCryptoWallets, cfg.CryptoWallets))

	orchestrator := payment.NewOrchestrator(
		paypalClient,
		stripeClient,
		verifier,
		database.NewPurchaseRepo(),
		notifier,
		wallets,
	)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.BaseURL, "http://localhost:3000"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, cfg, authSvc, orchestrator, notifier)

	log.Printf("Starting %s backend on port %s", cfg.SiteName, cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// createDefaultAdminIfNeeded creates a default admin user if no users exist
func createDefaultAdminIfNeeded() error {
	userRepo := database.NewUserRepo()

	count, err := userRepo.Count()
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Users already exist
	}

	log.Println("Creating default admin user (admin@localhost/admin) - CHANGE THIS PASSWORD!")

	passwordHash, err := auth.HashPassword("admin")
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        "admin@localhost",
		Name:         "Administrator",
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}

	return userRepo.Create(admin)
}
