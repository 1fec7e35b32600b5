package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/edjordao11/site/internal/auth"
	"github.com/edjordao11/site/internal/config"
	"github.com/edjordao11/site/internal/database"
	"github.com/edjordao11/site/internal/models"
	"github.com/edjordao11/site/internal/notify"
	"github.com/edjordao11/site/internal/payment"
)

func setupAPI(t *testing.T) *echo.Echo {
	t.Helper()
	if err := database.OpenInMemory(); err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.Config{BaseURL: "http://localhost:8080"}
	sessions := auth.NewSessionManager(database.NewSessionRepo(), nil)
	authSvc := auth.NewService(database.NewUserRepo(), sessions)
	mail := notify.NewNotifier(database.NewSettingsRepo(), cfg, nil)
	orch := payment.NewOrchestrator(
		nil, nil, nil,
		database.NewPurchaseRepo(),
		mail,
		payment.ParseWallets("BTC:bc1qtest"),
		payment.WithCountdown(0),
	)

	e := echo.New()
	RegisterRoutes(e.Group("/api"), cfg, authSvc, orch, mail)
	return e
}

func doJSON(e *echo.Echo, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func seedAPIUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &models.User{Email: email, Name: "Buyer", PasswordHash: hash, Role: models.RoleCustomer}
	if err := database.NewUserRepo().Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedAPIVideo(t *testing.T) *models.Video {
	t.Helper()
	video := &models.Video{
		Title:       "Sample Video",
		Description: "desc",
		Price:       decimal.RequireFromString("9.99"),
		Duration:    120,
		ProductLink: "https://content.example.com/sample",
	}
	if err := database.NewVideoRepo().Create(video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

func TestLoginEndpoint(t *testing.T) {
	e := setupAPI(t)
	seedAPIUser(t, "buyer@example.com", "hunter2")

	rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"","password":""}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty credentials: status = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"ghost@example.com","password":"x"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: status = %d, want 404", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"buyer@example.com","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/login", `{"email":"buyer@example.com","password":"hunter2"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login response has no token")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "session_token=") {
		t.Error("session cookie not set on login")
	}

	header := http.Header{"Authorization": {"Bearer " + token}}
	rec = doJSON(e, http.MethodGet, "/api/auth/session", "", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("session: status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["authenticated"] != true {
		t.Errorf("session body = %v, want authenticated", body)
	}

	rec = doJSON(e, http.MethodGet, "/api/auth/session", "", nil)
	if body := decodeBody(t, rec); body["authenticated"] != false {
		t.Errorf("anonymous session body = %v, want unauthenticated", body)
	}
}

func loginFor(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body %s", email, rec.Code, rec.Body.String())
	}
	token, _ := decodeBody(t, rec)["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token", email)
	}
	return token
}

func sessionState(t *testing.T, e *echo.Echo, token string) bool {
	t.Helper()
	header := http.Header{"Authorization": {"Bearer " + token}}
	rec := doJSON(e, http.MethodGet, "/api/auth/session", "", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("session: status = %d", rec.Code)
	}
	authed, _ := decodeBody(t, rec)["authenticated"].(bool)
	return authed
}

func TestLogoutOnlyRevokesCallersSession(t *testing.T) {
	e := setupAPI(t)
	seedAPIUser(t, "alice@example.com", "hunter2")
	seedAPIUser(t, "bob@example.com", "hunter2")

	aliceToken := loginFor(t, e, "alice@example.com", "hunter2")
	bobToken := loginFor(t, e, "bob@example.com", "hunter2")

	// Alice logs out carrying her own bearer token.
	header := http.Header{"Authorization": {"Bearer " + aliceToken}}
	rec := doJSON(e, http.MethodPost, "/api/auth/logout", "", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}

	if sessionState(t, e, aliceToken) {
		t.Error("alice still authenticated after her own logout")
	}
	if !sessionState(t, e, bobToken) {
		t.Error("bob's session revoked by alice's logout")
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/purchases", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("purchases without token: status = %d, want 401", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/logout-all", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("logout-all without token: status = %d, want 401", rec.Code)
	}
}

func TestVideoCatalogHidesProductLink(t *testing.T) {
	e := setupAPI(t)
	video := seedAPIVideo(t)

	rec := doJSON(e, http.MethodGet, "/api/videos", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "content.example.com") {
		t.Error("catalog listing leaks the product link")
	}

	rec = doJSON(e, http.MethodGet, "/api/videos/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["purchased"] != false {
		t.Error("unpurchased video reported as purchased")
	}
	if strings.Contains(rec.Body.String(), "content.example.com") {
		t.Error("unpurchased video leaks the product link")
	}

	if _, err := database.NewPurchaseRepo().Create(&models.Purchase{
		BuyerID:       "guest-1",
		VideoID:       video.ID,
		Price:         video.Price,
		Currency:      "USD",
		Provider:      models.ProviderPayPal,
		TransactionID: "TXN-1",
		DisplayName:   "Learning Resources",
		CompletedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	rec = doJSON(e, http.MethodGet, "/api/videos/1?buyer=guest-1", "", nil)
	body = decodeBody(t, rec)
	if body["purchased"] != true {
		t.Error("owned video not reported as purchased")
	}
	if !strings.Contains(rec.Body.String(), "content.example.com") {
		t.Error("owned video missing the product link")
	}

	rec = doJSON(e, http.MethodGet, "/api/videos/404", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing video: status = %d, want 404", rec.Code)
	}
}

func TestWalletsEndpoint(t *testing.T) {
	e := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/wallets", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("wallets: status = %d", rec.Code)
	}
	var wallets []models.Wallet
	if err := json.Unmarshal(rec.Body.Bytes(), &wallets); err != nil {
		t.Fatalf("decode wallets: %v", err)
	}
	if len(wallets) != 1 || wallets[0].Currency != "BTC" {
		t.Errorf("wallets = %+v, want one BTC entry", wallets)
	}
}

func TestCreateCheckoutSessionValidation(t *testing.T) {
	e := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/create-checkout-session", `{"amount":999}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing urls: status = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/create-checkout-session", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d, want 405", rec.Code)
	}

	// Valid request shape, but no provider configured.
	rec = doJSON(e, http.MethodPost, "/api/create-checkout-session",
		`{"amount":999,"currency":"usd","success_url":"https://s","cancel_url":"https://c"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("no provider: status = %d, want 500", rec.Code)
	}
}

func TestSendPayPalConfirmationValidation(t *testing.T) {
	e := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/send-paypal-confirmation", `{"buyerName":"Ana"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields: status = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/send-paypal-confirmation", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d, want 405", rec.Code)
	}

	// No SMTP credentials anywhere.
	rec = doJSON(e, http.MethodPost, "/api/send-paypal-confirmation",
		`{"buyerEmail":"buyer@example.com","buyerName":"Ana","transactionId":"TXN-1"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unconfigured email: status = %d, want 500", rec.Code)
	}
	if body := decodeBody(t, rec); !strings.Contains(body["error"].(string), "not configured") {
		t.Errorf("error = %v, want configuration message", body["error"])
	}
}

func TestTestEmailConfigValidation(t *testing.T) {
	e := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/test-email-config", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing address: status = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/test-email-config", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d, want 405", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/test-email-config", `{"testEmail":"admin@example.com"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("unconfigured email: status = %d, want 500", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", rec.Code)
	}
}
