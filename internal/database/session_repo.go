package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/edjordao11/site/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepo handles session database operations. Sessions are never
// deleted: revocation flips is_active off so the row stays behind as
// an audit trail.
type SessionRepo struct{}

// NewSessionRepo creates a new session repository
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

// Create persists a new session record
func (r *SessionRepo) Create(session *models.Session) error {
	result, err := DB.Exec(`
		INSERT INTO sessions (user_id, token, user_agent, created_at, expires_at, is_active)
		VALUES (?, ?, ?, ?, ?, 1)
	`, session.UserID, session.Token, session.UserAgent, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id

	return nil
}

// GetByToken retrieves a session by its token
func (r *SessionRepo) GetByToken(token string) (*models.Session, error) {
	session := &models.Session{}

	err := DB.QueryRow(`
		SELECT id, user_id, token, user_agent, created_at, expires_at, is_active
		FROM sessions WHERE token = ?
	`, token).Scan(
		&session.ID, &session.UserID, &session.Token,
		&session.UserAgent, &session.CreatedAt, &session.ExpiresAt, &session.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetActiveByUserID retrieves all active sessions for a user
func (r *SessionRepo) GetActiveByUserID(userID int64) ([]*models.Session, error) {
	rows, err := DB.Query(`
		SELECT id, user_id, token, user_agent, created_at, expires_at, is_active
		FROM sessions WHERE user_id = ? AND is_active = 1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session := &models.Session{}
		err := rows.Scan(
			&session.ID, &session.UserID, &session.Token,
			&session.UserAgent, &session.CreatedAt, &session.ExpiresAt, &session.IsActive,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Deactivate soft-revokes a session. A deactivated session is never
// reactivated; callers issue a new one instead.
func (r *SessionRepo) Deactivate(id int64) error {
	result, err := DB.Exec("UPDATE sessions SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeactivateAllForUser soft-revokes every active session of a user
func (r *SessionRepo) DeactivateAllForUser(userID int64) error {
	_, err := DB.Exec("UPDATE sessions SET is_active = 0 WHERE user_id = ? AND is_active = 1", userID)
	return err
}

// CountActiveByUserID returns the number of usable sessions for a user
func (r *SessionRepo) CountActiveByUserID(userID int64) (int, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM sessions WHERE user_id = ? AND is_active = 1 AND expires_at > ?",
		userID, time.Now(),
	).Scan(&count)
	return count, err
}
