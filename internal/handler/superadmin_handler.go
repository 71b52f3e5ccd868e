package handler

import (
	"net/http"
	"strconv"

	"autostock/internal/model"
	"autostock/internal/store"
	"autostock/pkg/logger"
	"autostock/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SuperAdminHandler serves the platform operator surface: businesses, their
// admin accounts and subscription plans.
type SuperAdminHandler struct {
	businesses *store.BusinessStore
	plans      *store.PlanStore
	users      *store.UserStore
}

func NewSuperAdminHandler(businesses *store.BusinessStore, plans *store.PlanStore, users *store.UserStore) *SuperAdminHandler {
	return &SuperAdminHandler{businesses: businesses, plans: plans, users: users}
}

func pathID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CreateBusiness registers a business on a plan together with its admin
// user. The admin's temporary password is returned once and must be rotated
// through the change-password or reset flows.
func (h *SuperAdminHandler) CreateBusiness(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBusinessOperation("create")

	var req struct {
		Name          string `json:"name" validate:"required"`
		Owner         string `json:"owner" validate:"required"`
		PlanID        uint   `json:"plan_id" validate:"required"`
		AdminUsername string `json:"admin_username" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse business creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	business, admin, tempPassword, err := h.businesses.CreateWithAdmin(
		c.Request().Context(), req.Name, req.Owner, req.PlanID, req.AdminUsername)
	if err != nil {
		log.Warn("Business creation failed", zap.String("name", req.Name), zap.Error(err))
		return storeError(c, err)
	}

	log.Info("Business created",
		zap.Uint("business_id", business.ID),
		zap.String("name", business.Name),
		zap.String("admin", admin.Username))

	return c.JSON(http.StatusCreated, echo.Map{
		"business": business,
		"admin": echo.Map{
			"id":            admin.ID,
			"username":      admin.Username,
			"temp_password": tempPassword,
		},
	})
}

func (h *SuperAdminHandler) ListBusinesses(c echo.Context) error {
	businesses, err := h.businesses.List(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, businesses)
}

func (h *SuperAdminHandler) GetBusiness(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	business, err := h.businesses.FindByID(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}
	users, err := h.users.ListByBusiness(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"business": business,
		"users":    users,
	})
}

// SetBusinessStatus changes a business's subscription status; suspending or
// expiring a business locks out its users on their next request.
func (h *SuperAdminHandler) SetBusinessStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBusinessOperation("status_change")

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.businesses.SetSubscriptionStatus(c.Request().Context(), id, req.Status); err != nil {
		return storeError(c, err)
	}

	if _, active, err := h.businesses.CountByStatus(c.Request().Context()); err == nil {
		prometheus.UpdateActiveBusinesses(active)
	}

	log.Info("Business subscription status changed",
		zap.Uint("business_id", id),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}

// ResetAdminPassword issues a fresh temporary password for a business's
// admin account.
func (h *SuperAdminHandler) ResetAdminPassword(c echo.Context) error {
	log := logger.FromContext(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	tempPassword, err := h.users.ResetAdminPassword(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err)
	}

	log.Info("Business admin password reset", zap.Uint("business_id", id))
	return c.JSON(http.StatusOK, echo.Map{"temp_password": tempPassword})
}

// DeleteBusiness removes a business and everything it owns.
func (h *SuperAdminHandler) DeleteBusiness(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBusinessOperation("delete")

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	if err := h.businesses.Delete(c.Request().Context(), id); err != nil {
		return storeError(c, err)
	}

	log.Info("Business deleted", zap.Uint("business_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "business deleted"})
}

type planRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days" validate:"required,gt=0"`
}

func (h *SuperAdminHandler) CreatePlan(c echo.Context) error {
	log := logger.FromContext(c)

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	plan := model.Plan{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	}
	if err := h.plans.Create(c.Request().Context(), &plan); err != nil {
		return storeError(c, err)
	}

	log.Info("Plan created", zap.Uint("plan_id", plan.ID), zap.String("name", plan.Name))
	return c.JSON(http.StatusCreated, plan)
}

func (h *SuperAdminHandler) UpdatePlan(c echo.Context) error {
	log := logger.FromContext(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	plan, err := h.plans.Update(c.Request().Context(), id, &model.Plan{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		return storeError(c, err)
	}

	log.Info("Plan updated", zap.Uint("plan_id", plan.ID))
	return c.JSON(http.StatusOK, plan)
}

func (h *SuperAdminHandler) ListPlans(c echo.Context) error {
	plans, err := h.plans.List(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, plans)
}

// PlatformStats returns headline counts for the platform operator.
func (h *SuperAdminHandler) PlatformStats(c echo.Context) error {
	total, active, err := h.businesses.CountByStatus(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	userCount, err := h.users.Count(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}

	prometheus.UpdateActiveBusinesses(active)
	return c.JSON(http.StatusOK, echo.Map{
		"total_businesses":  total,
		"active_businesses": active,
		"total_users":       userCount,
	})
}
