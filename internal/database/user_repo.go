package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/edjordao11/site/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepo handles user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

// Create creates a new user
func (r *UserRepo) Create(user *models.User) error {
	result, err := DB.Exec(`
		INSERT INTO users (email, name, password_hash, role)
		VALUES (?, ?, ?, ?)
	`, user.Email, user.Name, user.PasswordHash, user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id int64) (*models.User, error) {
	return r.get("SELECT id, email, name, password_hash, role, created_at, updated_at, last_login FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by email, the login key
func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	return r.get("SELECT id, email, name, password_hash, role, created_at, updated_at, last_login FROM users WHERE email = ?", email)
}

func (r *UserRepo) get(query string, arg any) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := DB.QueryRow(query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return user, nil
}

// UpdateLastLogin records a successful login time
func (r *UserRepo) UpdateLastLogin(id int64) error {
	_, err := DB.Exec("UPDATE users SET last_login = ? WHERE id = ?", time.Now(), id)
	return err
}

// Count returns the number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
