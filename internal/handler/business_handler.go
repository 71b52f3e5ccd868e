package handler

import (
	"errors"
	"net/http"
	"strconv"

	"autostock/internal/middleware"
	"autostock/internal/model"
	"autostock/internal/store"
	"autostock/pkg/logger"
	"autostock/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BusinessHandler serves the business admin surface: catalog, staff, sales
// and notifications. Every operation is scoped by the caller's re-resolved
// business id.
type BusinessHandler struct {
	products      *store.ProductStore
	users         *store.UserStore
	sales         *store.SaleStore
	notifications *store.NotificationStore
}

func NewBusinessHandler(products *store.ProductStore, users *store.UserStore, sales *store.SaleStore, notifications *store.NotificationStore) *BusinessHandler {
	return &BusinessHandler{products: products, users: users, sales: sales, notifications: notifications}
}

type productRequest struct {
	Code     string          `json:"code" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Supplier string          `json:"supplier"`
}

func (h *BusinessHandler) ListProducts(c echo.Context) error {
	user := middleware.CurrentUser(c)

	products, err := h.products.ListByBusiness(c.Request().Context(), *user.BusinessID, c.QueryParam("search"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *BusinessHandler) GetProduct(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	product, err := h.products.FindByID(c.Request().Context(), *user.BusinessID, id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *BusinessHandler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	var req productRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product := model.Product{
		BusinessID: *user.BusinessID,
		Code:       req.Code,
		Name:       req.Name,
		Category:   req.Category,
		Price:      req.Price,
		Quantity:   req.Quantity,
		Supplier:   req.Supplier,
	}
	if err := h.products.Create(c.Request().Context(), &product); err != nil {
		log.Warn("Product creation failed",
			zap.String("code", req.Code),
			zap.Error(err))
		return storeError(c, err)
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("code", product.Code))
	return c.JSON(http.StatusCreated, product)
}

func (h *BusinessHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.products.Update(c.Request().Context(), *user.BusinessID, id, &model.Product{
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
		Supplier: req.Supplier,
	})
	if err != nil {
		return storeError(c, err)
	}

	log.Info("Product updated", zap.Uint("product_id", product.ID))
	return c.JSON(http.StatusOK, product)
}

func (h *BusinessHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	if err := h.products.Delete(c.Request().Context(), *user.BusinessID, id); err != nil {
		return storeError(c, err)
	}

	log.Info("Product deleted", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

func (h *BusinessHandler) ListUsers(c echo.Context) error {
	user := middleware.CurrentUser(c)

	users, err := h.users.ListByBusiness(c.Request().Context(), *user.BusinessID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateSeller adds a seller account to the caller's business. Only sellers
// can be created here; admins come from the superadmin surface.
func (h *BusinessHandler) CreateSeller(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	var req struct {
		Username string `json:"username" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	seller, tempPassword, err := h.users.CreateSeller(c.Request().Context(), *user.BusinessID, req.Username)
	if err != nil {
		log.Warn("Seller creation failed", zap.String("username", req.Username), zap.Error(err))
		return storeError(c, err)
	}

	log.Info("Seller created",
		zap.Uint("user_id", seller.ID),
		zap.String("username", seller.Username))
	return c.JSON(http.StatusCreated, echo.Map{
		"user": echo.Map{
			"id":       seller.ID,
			"username": seller.Username,
			"role":     seller.Role,
		},
		"temp_password": tempPassword,
	})
}

func (h *BusinessHandler) SetUserStatus(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
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

	if err := h.users.SetStatus(c.Request().Context(), *user.BusinessID, id, req.Status); err != nil {
		return storeError(c, err)
	}

	log.Info("User status changed", zap.Uint("user_id", id), zap.String("status", req.Status))
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}

func (h *BusinessHandler) ResetUserPassword(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	tempPassword, err := h.users.ResetPassword(c.Request().Context(), *user.BusinessID, id)
	if err != nil {
		return storeError(c, err)
	}

	log.Info("User password reset", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"temp_password": tempPassword})
}

// RecordSale records a sale on behalf of one of the business's sellers.
func (h *BusinessHandler) RecordSale(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	var req struct {
		ProductID uint `json:"product_id" validate:"required"`
		SellerID  uint `json:"seller_id" validate:"required"`
		Quantity  int  `json:"quantity" validate:"required,gt=0"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordSaleError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordSaleError("invalid_input")
		return err
	}

	sale, err := h.sales.RecordSale(c.Request().Context(), *user.BusinessID, req.ProductID, req.SellerID, req.Quantity, false)
	if err != nil {
		recordSaleFailure(err)
		log.Warn("Sale failed",
			zap.Uint("product_id", req.ProductID),
			zap.Int("quantity", req.Quantity),
			zap.Error(err))
		return storeError(c, err)
	}

	prometheus.SaleCounter.Inc()
	log.Info("Sale recorded",
		zap.Uint("sale_id", sale.ID),
		zap.Uint("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.String("total", sale.Total.String()))
	return c.JSON(http.StatusCreated, sale)
}

func (h *BusinessHandler) ListSales(c echo.Context) error {
	user := middleware.CurrentUser(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	sales, err := h.sales.ListByBusiness(c.Request().Context(), *user.BusinessID, limit)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, sales)
}

func (h *BusinessHandler) ListNotifications(c echo.Context) error {
	user := middleware.CurrentUser(c)

	unreadOnly := c.QueryParam("unread") == "true"
	notifications, err := h.notifications.ListByBusiness(c.Request().Context(), *user.BusinessID, unreadOnly)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *BusinessHandler) MarkNotificationRead(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}

	if err := h.notifications.MarkRead(c.Request().Context(), *user.BusinessID, id); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification read"})
}

func recordSaleFailure(err error) {
	switch {
	case errors.Is(err, store.ErrInsufficientStock):
		prometheus.RecordSaleError("insufficient_stock")
	case errors.Is(err, store.ErrNotFound):
		prometheus.RecordSaleError("not_found")
	case errors.Is(err, store.ErrInvalidInput):
		prometheus.RecordSaleError("invalid_input")
	default:
		prometheus.RecordSaleError("internal")
	}
}
