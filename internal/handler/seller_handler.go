package handler

import (
	"net/http"
	"strconv"

	"autostock/internal/middleware"
	"autostock/internal/store"
	"autostock/pkg/logger"
	"autostock/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SellerHandler serves the sales floor surface: catalog lookup and point of
// sale. Sellers only ever act as themselves; the seller id on every sale is
// taken from the authenticated user, never from the request body.
type SellerHandler struct {
	products *store.ProductStore
	sales    *store.SaleStore
}

func NewSellerHandler(products *store.ProductStore, sales *store.SaleStore) *SellerHandler {
	return &SellerHandler{products: products, sales: sales}
}

func (h *SellerHandler) ListProducts(c echo.Context) error {
	user := middleware.CurrentUser(c)

	products, err := h.products.ListByBusiness(c.Request().Context(), *user.BusinessID, c.QueryParam("search"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProductByCode looks up a product by its shop code, the lookup sellers
// use at the counter.
func (h *SellerHandler) GetProductByCode(c echo.Context) error {
	user := middleware.CurrentUser(c)

	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product code"})
	}

	product, err := h.products.FindByCode(c.Request().Context(), *user.BusinessID, code)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// RecordSale sells stock as the authenticated seller and notifies the
// business admins.
func (h *SellerHandler) RecordSale(c echo.Context) error {
	log := logger.FromContext(c)
	user := middleware.CurrentUser(c)

	var req struct {
		ProductID uint `json:"product_id" validate:"required"`
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

	sale, err := h.sales.RecordSale(c.Request().Context(), *user.BusinessID, req.ProductID, user.ID, req.Quantity, true)
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

// ListMySales returns the authenticated seller's own sales, newest first.
func (h *SellerHandler) ListMySales(c echo.Context) error {
	user := middleware.CurrentUser(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	sales, err := h.sales.ListBySeller(c.Request().Context(), *user.BusinessID, user.ID, limit)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, sales)
}
