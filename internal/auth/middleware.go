package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edjordao11/site/internal/models"
)

// Context keys for storing user data
const (
	ContextKeyUser    = "user"
	ContextKeySession = "session"
)

// RequireAuth middleware checks for valid authentication
func RequireAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			user, session, err := authSvc.ValidateToken(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired session",
				})
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeySession, session)

			return next(c)
		}
	}
}

// OptionalAuth attempts to authenticate but doesn't require it.
// Purchases may be made by guests, so most storefront routes use this.
func OptionalAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := TokenFromRequest(c); token != "" {
				user, session, err := authSvc.ValidateToken(token)
				if err == nil {
					c.Set(ContextKeyUser, user)
					c.Set(ContextKeySession, session)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin requires an authenticated admin. Must follow RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetUserFromContext(c)
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}
			if !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "insufficient permissions",
				})
			}
			return next(c)
		}
	}
}

// TokenFromRequest extracts the session token from the request
func TokenFromRequest(c echo.Context) string {
	// Try Authorization header first (Bearer token)
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Try cookie
	cookie, err := c.Cookie("session_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetSessionFromContext retrieves the current session from the context
func GetSessionFromContext(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
