package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edjordao11/site/internal/auth"
	"github.com/edjordao11/site/internal/models"
)

// loginHandler handles POST /api/auth/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
	}

	resp, err := authService.Login(req, c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found, check your credentials",
			})
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid password, try again",
			})
		case errors.Is(err, auth.ErrSessionCreationFailed):
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "failed to create session, try again",
			})
		default:
			c.Logger().Error("login error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "authentication failed",
			})
		}
	}

	loginLimiter.RecordSuccess(c.RealIP())

	// Set token in cookie (HttpOnly for security)
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    resp.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
		Expires:  resp.ExpiresAt,
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, resp)
}

// logoutHandler handles POST /api/auth/logout. The session to revoke
// is the one behind the caller's own token; other clients' sessions
// are never touched.
func logoutHandler(c echo.Context) error {
	if token := auth.TokenFromRequest(c); token != "" {
		if err := authService.Logout(token); err != nil && !errors.Is(err, auth.ErrSessionInvalid) {
			// The cookie is cleared regardless; server-side revocation
			// is best-effort.
			c.Logger().Error("logout error: ", err)
		}
	}

	// Clear cookie
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// sessionHandler handles GET /api/auth/session
func sessionHandler(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token == "" {
		return c.JSON(http.StatusOK, map[string]any{"authenticated": false})
	}

	user, session, err := authService.ValidateToken(token)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{"authenticated": false})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
		"expires_at":    session.ExpiresAt,
	})
}

// logoutAllHandler handles POST /api/auth/logout-all
func logoutAllHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	if err := authService.Sessions().DeactivateAllSessions(user.ID); err != nil {
		c.Logger().Error("logout-all error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to revoke sessions",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "all sessions revoked",
	})
}
