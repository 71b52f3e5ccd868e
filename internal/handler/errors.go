package handler

import (
	"errors"
	"net/http"

	"autostock/internal/store"
	"autostock/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// storeError translates a store error into the JSON error response the
// routing layer owes the caller. Unexpected errors become a 500 and are
// logged with their cause; business outcomes pass through with their own
// status and message.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, store.ErrDuplicateCode):
		return c.JSON(http.StatusConflict, echo.Map{"error": "product code already exists"})
	case errors.Is(err, store.ErrDuplicateUsername):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	case errors.Is(err, store.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient stock"})
	case errors.Is(err, store.ErrPlanNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan not found"})
	case errors.Is(err, store.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input"})
	default:
		logger.FromContext(c).Error("Unexpected store error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
