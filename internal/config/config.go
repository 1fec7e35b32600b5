package config

import (
	"os"
	"strconv"
)

// Config holds runtime configuration read from the environment.
// Values stored in the settings table take precedence where noted;
// the environment is the fallback, matching the admin-panel-first
// configuration order of the site.
type Config struct {
	Port   string
	DBPath string

	SiteName string
	BaseURL  string

	PayPalClientID string
	PayPalSecret   string
	PayPalLive     bool

	StripeSecretKey string

	EmailHost   string
	EmailPort   int
	EmailSecure bool
	EmailUser   string
	EmailPass   string
	EmailFrom   string

	TelegramUsername string

	// Comma-separated CODE:address pairs, e.g. "BTC:bc1...,ETH:0x...".
	CryptoWallets string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Port:   getenv("SITE_PORT", "8080"),
		DBPath: getenv("SITE_DB_PATH", "./site.db"),

		SiteName: getenv("SITE_NAME", ""),
		BaseURL:  getenv("SITE_BASE_URL", "http://localhost:8080"),

		PayPalClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:   os.Getenv("PAYPAL_SECRET"),
		PayPalLive:     getbool("PAYPAL_LIVE"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		EmailHost:   getenv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:   getint("EMAIL_PORT", 587),
		EmailSecure: getbool("EMAIL_SECURE"),
		EmailUser:   os.Getenv("EMAIL_USER"),
		EmailPass:   os.Getenv("EMAIL_PASS"),
		EmailFrom:   os.Getenv("EMAIL_FROM"),

		TelegramUsername: os.Getenv("TELEGRAM_USERNAME"),

		CryptoWallets: os.Getenv("CRYPTO_WALLETS"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getbool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
