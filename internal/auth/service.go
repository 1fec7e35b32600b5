package auth

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/edjordao11/site/internal/database"
	"github.com/edjordao11/site/internal/models"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrSessionCreationFailed = errors.New("session creation failed")
	ErrSessionInvalid        = errors.New("invalid or expired session")
)

const (
	// sessionCheckInterval drives the periodic background recheck.
	sessionCheckInterval = 5 * time.Minute

	// checkDebounce collapses CheckSession calls arriving within the
	// window into the last known result.
	checkDebounce = 10 * time.Second
)

// UserStore is the identity lookup surface the service needs.
// *database.UserRepo satisfies it.
type UserStore interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id int64) (*models.User, error)
	UpdateLastLogin(id int64) error
}

// Service coordinates login, logout and session freshness on top of
// the session manager. It keeps one authenticated identity in memory,
// mirroring the single bearer slot.
type Service struct {
	users    UserStore
	sessions *SessionManager
	now      func() time.Time

	mu        sync.Mutex
	user      *models.User
	session   *models.Session
	checkedAt time.Time
}

// NewService creates a new auth service
func NewService(users UserStore, sessions *SessionManager) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
}

// Login authenticates by email and password and opens a session.
func (s *Service) Login(req models.LoginRequest, userAgent string) (*models.LoginResponse, error) {
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !VerifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.CreateSession(user.ID, userAgent)
	if err != nil {
		log.Printf("login: %v", err)
		return nil, ErrSessionCreationFailed
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		log.Printf("login: record last login: %v", err)
	}

	s.mu.Lock()
	s.user = user
	s.session = session
	s.checkedAt = s.now()
	s.mu.Unlock()

	return &models.LoginResponse{
		User:      user,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes the session behind the presented bearer token. Only
// that session is touched, so one client logging out never revokes
// another client's session. The coordinator's in-memory identity is
// cleared when it belongs to the same token, even if the remote
// revocation fails.
func (s *Service) Logout(token string) error {
	session := s.sessions.ValidateSession(token)
	if session == nil {
		// The store may be unreachable; fall back to the in-memory
		// reference so revocation stays best-effort.
		s.mu.Lock()
		if s.session != nil && s.session.Token == token {
			session = s.session
		}
		s.mu.Unlock()
	}

	var err error
	if session != nil {
		err = s.sessions.DeactivateSession(session.ID)
	}

	s.mu.Lock()
	if s.session != nil && s.session.Token == token {
		s.user = nil
		s.session = nil
		s.checkedAt = s.now()
	}
	s.mu.Unlock()

	if session == nil {
		return ErrSessionInvalid
	}
	return err
}

// CheckSession revalidates the current session and returns the
// authenticated user, or nil. Calls within the debounce window return
// the previous result untouched, so rapid UI triggers don't fan out
// into duplicate lookups.
func (s *Service) CheckSession() *models.User {
	s.mu.Lock()
	if s.now().Sub(s.checkedAt) < checkDebounce && !s.checkedAt.IsZero() {
		user := s.user
		s.mu.Unlock()
		return user
	}
	s.mu.Unlock()

	session := s.sessions.CurrentSession()
	now := s.now()

	if session == nil {
		s.mu.Lock()
		s.user = nil
		s.session = nil
		s.checkedAt = now
		s.mu.Unlock()
		return nil
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		// A session whose identity no longer resolves is an invalid
		// session: revoke it and fall back to anonymous.
		log.Printf("session check: resolve user %d: %v", session.UserID, err)
		s.sessions.DeactivateSession(session.ID)
		s.mu.Lock()
		s.user = nil
		s.session = nil
		s.checkedAt = now
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.user = user
	s.session = session
	s.checkedAt = now
	s.mu.Unlock()

	return user
}

// StartAutoCheck rechecks the session in the background while one is
// held, until the context is canceled.
func (s *Service) StartAutoCheck(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sessionCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				due := s.session != nil && s.now().Sub(s.checkedAt) > sessionCheckInterval
				s.mu.Unlock()
				if due {
					s.CheckSession()
				}
			}
		}
	}()
}

// ValidateToken validates a presented bearer token and resolves its
// user. Used by the HTTP middleware; does not touch the coordinator's
// local identity state.
func (s *Service) ValidateToken(token string) (*models.User, *models.Session, error) {
	session := s.sessions.ValidateSession(token)
	if session == nil {
		return nil, nil, ErrSessionInvalid
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		s.sessions.DeactivateSession(session.ID)
		return nil, nil, ErrSessionInvalid
	}

	return user, session, nil
}

// User returns a snapshot of the authenticated user, if any.
func (s *Service) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a user is currently logged in.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Sessions exposes the underlying session manager.
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}
