package middleware

import (
	"errors"
	"net/http"
	"strings"

	"autostock/internal/model"
	"autostock/internal/store"
	"autostock/pkg/jwtutil"
	"autostock/pkg/logger"
	"autostock/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrier for session tokens. The same token
// is also accepted from the Authorization header; verification is identical
// for both carriers.
const SessionCookieName = "access_token"

const userContextKey = "current_user"

// ExtractToken pulls the raw session token out of the request, preferring
// the Authorization header over the cookie.
func ExtractToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], true
		}
		return "", false
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Authenticate validates the session token and re-resolves the identity's
// current database record. Role, business and status are taken from the row,
// never from token claims, so deactivating or reassigning a user takes
// effect on their next request instead of at token expiry.
func Authenticate(users *store.UserStore, jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			tokenString, ok := ExtractToken(c)
			if !ok {
				log.Warn("Missing or malformed session token")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			claims, err := jwt.Verify(tokenString)
			if err != nil {
				log.Warn("Token verification failed", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			user, err := users.FindByUsername(c.Request().Context(), claims.Username)
			if err != nil {
				// Only a missing row invalidates the session; anything else is
				// an infrastructure failure, not the caller's fault.
				if !errors.Is(err, store.ErrNotFound) {
					log.Error("Failed to resolve session user",
						zap.String("username", claims.Username), zap.Error(err))
					prometheus.RecordAuthError("resolution_failed")
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
				}
				log.Warn("Token subject no longer exists", zap.String("username", claims.Username))
				prometheus.RecordAuthError("unknown_subject")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			if user.Status != model.UserActive {
				log.Warn("Deactivated user presented a valid token", zap.String("username", user.Username))
				prometheus.RecordAuthError("inactive_user")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user's re-resolved record. Only
// valid after the Authenticate middleware has run.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

// RequireRoles authorizes the request if the current user's role is in the
// allowed set. Admins and sellers are additionally blocked unless their
// business is on an active subscription; superadmins are exempt from both
// the tenant and subscription checks.
func RequireRoles(businesses *store.BusinessStore, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			user := CurrentUser(c)
			if user == nil {
				prometheus.RecordAuthError("missing_identity")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			allowed := false
			for _, role := range roles {
				if user.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				log.Warn("Role not permitted for operation",
					zap.String("username", user.Username),
					zap.String("role", user.Role))
				prometheus.RecordAuthError("forbidden")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}

			if user.Role != model.RoleSuperAdmin {
				if user.BusinessID == nil {
					log.Warn("User has no business assignment", zap.String("username", user.Username))
					prometheus.RecordAuthError("no_business")
					return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
				}
				business, err := businesses.FindByID(c.Request().Context(), *user.BusinessID)
				if err != nil {
					log.Error("Failed to load business for authorization",
						zap.Uint("business_id", *user.BusinessID), zap.Error(err))
					prometheus.RecordAuthError("business_lookup_failed")
					return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
				}
				if business.SubscriptionStatus != model.SubscriptionActive {
					log.Warn("Subscription is not active",
						zap.Uint("business_id", business.ID),
						zap.String("status", business.SubscriptionStatus))
					prometheus.RecordAuthError("subscription_blocked")
					return c.JSON(http.StatusForbidden, echo.Map{"error": "subscription is not active"})
				}
			}

			return next(c)
		}
	}
}
