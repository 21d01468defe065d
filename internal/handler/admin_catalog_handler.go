package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者によるマスタ登録のHTTP
type AdminCatalogHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{uc: uc}
}

type CreateProductRequest struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	IsFragile   bool   `json:"is_fragile"`
	BasePrice   int64  `json:"base_price"`
	ProfitPrice int64  `json:"profit_price"`
}

type CreateDiscountRequest struct {
	Code       string   `json:"code"`
	Percentage *float64 `json:"percentage"`
	Constant   *int64   `json:"constant"`
	Ceil       *int64   `json:"ceil"`
	MinValue   *int64   `json:"min_value"`
	ExpDate    *string  `json:"exp_date"`
	IsActive   bool     `json:"is_active"`
}

type CreateShippingRequest struct {
	Type  string `json:"type"`
	Price int64  `json:"price"`
}

// /admin配下はJWT + ADMINロール必須
func (h *AdminCatalogHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/products", h.createProduct)
	g.POST("/discounts", h.createDiscount)
	g.POST("/shippings", h.createShipping)
}

func (h *AdminCatalogHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid body"})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), adminID, usecase.CreateProductInput{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		IsFragile:   req.IsFragile,
		BasePrice:   req.BasePrice,
		ProfitPrice: req.ProfitPrice,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminCatalogHandler) createDiscount(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	var req CreateDiscountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid body"})
	}

	out, err := h.uc.CreateDiscount(c.Request().Context(), adminID, usecase.CreateDiscountInput{
		Code:       req.Code,
		Percentage: req.Percentage,
		Constant:   req.Constant,
		Ceil:       req.Ceil,
		MinValue:   req.MinValue,
		ExpDate:    req.ExpDate,
		IsActive:   req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminCatalogHandler) createShipping(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, MessageResponse{Message: "unauthorized"})
	}

	var req CreateShippingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, MessageResponse{Message: "invalid body"})
	}

	out, err := h.uc.CreateShipping(c.Request().Context(), adminID, usecase.CreateShippingInput{
		Type:  req.Type,
		Price: req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
