package handler

import (
	"net/http"
	"time"

	"autostock/internal/middleware"
	"autostock/internal/store"
	"autostock/pkg/jwtutil"
	"autostock/pkg/logger"
	"autostock/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler serves login, logout and self-service account operations.
type AuthHandler struct {
	users *store.UserStore
	jwt   *jwtutil.JWTUtil
}

func NewAuthHandler(users *store.UserStore, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

// Login authenticates a username/password pair and issues a session token.
// The token is returned in the body for header-bearer clients and set as an
// httponly cookie for browser clients; both carriers hold the same token.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return err
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_credentials")
		return storeError(c, err)
	}

	token, err := h.jwt.Issue(user.Username, user.ID, user.Role, user.BusinessID)
	if err != nil {
		log.Error("Failed to issue token", zap.Error(err))
		prometheus.RecordAuthError("token_issue_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.jwt.TTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":          user.ID,
			"username":    user.Username,
			"role":        user.Role,
			"business_id": user.BusinessID,
		},
	})
}

// Logout clears the session cookie. Header-bearer clients simply drop the
// token.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's current record.
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, echo.Map{
		"id":          user.ID,
		"username":    user.Username,
		"role":        user.Role,
		"business_id": user.BusinessID,
		"status":      user.Status,
	})
}

// ChangePassword rotates the caller's own password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse change-password request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		log.Warn("Password change failed", zap.String("username", user.Username))
		return storeError(c, err)
	}

	log.Info("Password changed", zap.String("username", user.Username))
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
