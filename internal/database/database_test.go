package database

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edjordao11/site/internal/models"
)

func openTestDB(t *testing.T) {
	t.Helper()
	if err := OpenInMemory(); err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "irrelevant",
		Role:         models.RoleCustomer,
	}
	if err := NewUserRepo().Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedVideo(t *testing.T, title, price string) *models.Video {
	t.Helper()
	video := &models.Video{
		Title:       title,
		Description: "desc",
		Price:       decimal.RequireFromString(price),
		Duration:    930,
		ProductLink: "https://content.example.com/" + title,
	}
	if err := NewVideoRepo().Create(video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

func TestUserRepo(t *testing.T) {
	openTestDB(t)
	repo := NewUserRepo()

	user := seedUser(t, "buyer@example.com")
	if user.ID == 0 {
		t.Fatal("user id not assigned on create")
	}

	got, err := repo.GetByEmail("buyer@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != user.ID || got.Email != user.Email {
		t.Errorf("GetByEmail = %+v, want %+v", got, user)
	}

	if _, err := repo.GetByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}

	dupe := &models.User{Email: "buyer@example.com", Name: "Dupe", PasswordHash: "x", Role: models.RoleCustomer}
	if err := repo.Create(dupe); !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("duplicate create err = %v, want ErrUserAlreadyExists", err)
	}

	if err := repo.UpdateLastLogin(user.ID); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}
	got, err = repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LastLogin.IsZero() {
		t.Error("last login not recorded")
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSessionRepoSoftRevocation(t *testing.T) {
	openTestDB(t)
	repo := NewSessionRepo()
	user := seedUser(t, "buyer@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	session := &models.Session{
		UserID:    user.ID,
		Token:     "tok-1",
		UserAgent: "agent",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if err := repo.Create(session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByToken("tok-1")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if !got.IsActive {
		t.Error("fresh session not active")
	}

	if err := repo.Deactivate(session.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	// Soft revocation: the row survives with is_active cleared.
	got, err = repo.GetByToken("tok-1")
	if err != nil {
		t.Fatalf("GetByToken after revoke: %v", err)
	}
	if got.IsActive {
		t.Error("revoked session still active")
	}

	if err := repo.Deactivate(9999); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("deactivate missing err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionRepoDeactivateAllForUser(t *testing.T) {
	openTestDB(t)
	repo := NewSessionRepo()
	user := seedUser(t, "buyer@example.com")

	now := time.Now().UTC()
	for _, tok := range []string{"tok-a", "tok-b"} {
		if err := repo.Create(&models.Session{
			UserID: user.ID, Token: tok,
			CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}); err != nil {
			t.Fatalf("Create %s: %v", tok, err)
		}
	}

	count, err := repo.CountActiveByUserID(user.ID)
	if err != nil {
		t.Fatalf("CountActiveByUserID: %v", err)
	}
	if count != 2 {
		t.Fatalf("active sessions = %d, want 2", count)
	}

	active, err := repo.GetActiveByUserID(user.ID)
	if err != nil {
		t.Fatalf("GetActiveByUserID: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("listed active sessions = %d, want 2", len(active))
	}

	if err := repo.DeactivateAllForUser(user.ID); err != nil {
		t.Fatalf("DeactivateAllForUser: %v", err)
	}
	count, err = repo.CountActiveByUserID(user.ID)
	if err != nil {
		t.Fatalf("CountActiveByUserID: %v", err)
	}
	if count != 0 {
		t.Errorf("active sessions after revoke-all = %d, want 0", count)
	}
}

func TestVideoRepoListAndSearch(t *testing.T) {
	openTestDB(t)
	repo := NewVideoRepo()

	seedVideo(t, "Alpha", "9.99")
	bravo := seedVideo(t, "Bravo", "4.99")

	videos, err := repo.List(models.SortPriceAsc, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("videos = %d, want 2", len(videos))
	}
	if videos[0].Title != "Bravo" {
		t.Errorf("price_asc first = %q, want Bravo", videos[0].Title)
	}
	if !videos[0].Price.Equal(decimal.RequireFromString("4.99")) {
		t.Errorf("price round-trip = %s, want 4.99", videos[0].Price)
	}

	videos, err = repo.List(models.SortNewest, "brav")
	if err != nil {
		t.Fatalf("List with search: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != bravo.ID {
		t.Errorf("search result = %+v, want only Bravo", videos)
	}

	if err := repo.IncrementViews(bravo.ID); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	got, err := repo.GetByID(bravo.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}

	if _, err := repo.GetByID(404); !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("missing video err = %v, want ErrVideoNotFound", err)
	}
}

func TestPurchaseRepoIdempotentCreate(t *testing.T) {
	openTestDB(t)
	repo := NewPurchaseRepo()
	video := seedVideo(t, "Alpha", "9.99")

	purchase := &models.Purchase{
		BuyerID:       "buyer-1",
		VideoID:       video.ID,
		Price:         video.Price,
		Currency:      "USD",
		Provider:      models.ProviderPayPal,
		TransactionID: "TXN-1",
		DisplayName:   "Learning Resources",
		CompletedAt:   time.Now().UTC(),
	}
	first, err := repo.Create(purchase)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same transaction again: no second row, the stored one comes back.
	second, err := repo.Create(&models.Purchase{
		BuyerID:       "buyer-1",
		VideoID:       video.ID,
		Price:         video.Price,
		Currency:      "USD",
		Provider:      models.ProviderPayPal,
		TransactionID: "TXN-1",
		DisplayName:   "Learning Resources",
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create (duplicate): %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("duplicate create returned id %d, want %d", second.ID, first.ID)
	}

	rows, err := repo.ListByBuyer("buyer-1")
	if err != nil {
		t.Fatalf("ListByBuyer: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1", len(rows))
	}

	owned, err := repo.HasPurchased("buyer-1", video.ID)
	if err != nil {
		t.Fatalf("HasPurchased: %v", err)
	}
	if !owned {
		t.Error("purchase not visible via HasPurchased")
	}

	if _, err := repo.GetByTransactionID("TXN-404"); !errors.Is(err, ErrPurchaseNotFound) {
		t.Errorf("missing txn err = %v, want ErrPurchaseNotFound", err)
	}
}

func TestSettingsRepo(t *testing.T) {
	openTestDB(t)
	repo := NewSettingsRepo()

	if got := repo.GetOr(SettingSiteName, "fallback"); got != "fallback" {
		t.Errorf("GetOr on empty store = %q, want fallback", got)
	}

	if err := repo.Set(SettingSiteName, "My Store"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(SettingSiteName, "Renamed Store"); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}
	if got := repo.GetOr(SettingSiteName, "fallback"); got != "Renamed Store" {
		t.Errorf("GetOr = %q, want Renamed Store", got)
	}

	if err := repo.Set(SettingEmailSecure, "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	secure, err := repo.GetBool(SettingEmailSecure)
	if err != nil {
		t.Fatalf("GetBool: %v", err)
	}
	if !secure {
		t.Error("GetBool = false, want true")
	}
}
