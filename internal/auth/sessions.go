package auth

import (
	"crypto/rand"
	"log"
	"sync"
	"time"

	"github.com/edjordao11/site/internal/models"
)

const (
	// SessionTTL is how long a session stays valid after login.
	SessionTTL = 24 * time.Hour

	// validationCacheTTL bounds how long a validation result is
	// served from memory before the store is consulted again.
	validationCacheTTL = 30 * time.Second

	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenLength   = 64
)

// SessionStore is the persistence surface the manager needs.
// *database.SessionRepo satisfies it.
type SessionStore interface {
	Create(session *models.Session) error
	GetByToken(token string) (*models.Session, error)
	Deactivate(id int64) error
	DeactivateAllForUser(userID int64) error
}

// TokenSlot holds the single locally stored bearer token for this
// runtime instance. One active session per client at a time.
type TokenSlot interface {
	Token() string
	Store(token string)
	Clear()
}

// MemorySlot is an in-process TokenSlot.
type MemorySlot struct {
	mu    sync.Mutex
	token string
}

func (s *MemorySlot) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemorySlot) Store(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemorySlot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

type cacheEntry struct {
	session *models.Session
	at      time.Time
}

// SessionManager owns the token -> session mapping: issuance,
// validation with a bounded-staleness cache, and revocation. The
// cache and in-flight set are instance state so tests run isolated.
type SessionManager struct {
	store SessionStore
	slot  TokenSlot
	now   func() time.Time

	mu       sync.Mutex
	cache    map[string]cacheEntry
	inFlight map[string]bool
}

// NewSessionManager creates a session manager over the given store.
func NewSessionManager(store SessionStore, slot TokenSlot) *SessionManager {
	if slot == nil {
		slot = &MemorySlot{}
	}
	return &SessionManager{
		store:    store,
		slot:     slot,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
		inFlight: make(map[string]bool),
	}
}

// CreateSession issues a fresh session for the user, persists it,
// seeds the validation cache and stores the bearer token locally.
func (m *SessionManager) CreateSession(userID int64, userAgent string) (*models.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	session := &models.Session{
		UserID:    userID,
		Token:     token,
		UserAgent: truncate(userAgent, 255),
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
		IsActive:  true,
	}

	if err := m.store.Create(session); err != nil {
		return nil, err
	}

	m.slot.Store(token)

	m.mu.Lock()
	m.cache[token] = cacheEntry{session: session, at: now}
	m.mu.Unlock()

	return session, nil
}

// ValidateSession resolves a token to a usable session, or nil when
// the token is unknown, revoked or expired. Results (including
// negative ones) are cached for validationCacheTTL. A lookup already
// in flight for the same token short-circuits concurrent callers to
// the last cached value instead of issuing a duplicate query; they
// may observe the previous value rather than block for the fresh one.
func (m *SessionManager) ValidateSession(token string) *models.Session {
	m.mu.Lock()
	if m.inFlight[token] {
		entry := m.cache[token]
		m.mu.Unlock()
		return entry.session
	}
	if entry, ok := m.cache[token]; ok && m.now().Sub(entry.at) < validationCacheTTL {
		m.mu.Unlock()
		return entry.session
	}
	m.inFlight[token] = true
	m.mu.Unlock()

	session := m.lookup(token)

	m.mu.Lock()
	m.cache[token] = cacheEntry{session: session, at: m.now()}
	delete(m.inFlight, token)
	m.mu.Unlock()

	return session
}

// lookup consults the store. Store errors fail closed.
func (m *SessionManager) lookup(token string) *models.Session {
	session, err := m.store.GetByToken(token)
	if err != nil {
		log.Printf("session validation failed: %v", err)
		return nil
	}

	if !session.IsActive {
		return nil
	}

	if !m.now().Before(session.ExpiresAt) {
		// Lazy expiry: the first validation after the deadline
		// revokes the record.
		m.DeactivateSession(session.ID)
		return nil
	}

	return session
}

// DeactivateSession soft-revokes the session, drops the local bearer
// token and invalidates the whole cache. Local cleanup happens even
// when the store write fails, so logout is always effective on this
// side; the error is returned for the caller to surface.
func (m *SessionManager) DeactivateSession(id int64) error {
	err := m.store.Deactivate(id)
	if err != nil {
		log.Printf("session deactivation failed: %v", err)
	}

	m.slot.Clear()

	m.mu.Lock()
	m.cache = make(map[string]cacheEntry)
	m.mu.Unlock()

	return err
}

// DeactivateAllSessions revokes every active session of a user
// ("log out everywhere") in one store write.
func (m *SessionManager) DeactivateAllSessions(userID int64) error {
	if err := m.store.DeactivateAllForUser(userID); err != nil {
		return err
	}

	m.slot.Clear()

	m.mu.Lock()
	m.cache = make(map[string]cacheEntry)
	m.mu.Unlock()

	return nil
}

// CurrentSession validates the locally stored bearer token, if any.
func (m *SessionManager) CurrentSession() *models.Session {
	token := m.slot.Token()
	if token == "" {
		return nil
	}
	return m.ValidateSession(token)
}

// generateToken returns a 64-character alphanumeric token drawn from
// crypto/rand.
func generateToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf), nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
