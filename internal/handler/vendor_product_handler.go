package handler

import (
	"net/http"
	"strconv"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Message string `json:"message"`
}

type ProductCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
	Unit        string `json:"unit"`
	Stock       int64  `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// /vendor/store, /vendor/products, /vendor/inventory をまとめる
type VendorProductHandler struct {
	productUC *usecase.ProductUsecase
	storeUC   *usecase.StoreUsecase
}

// DI
func NewVendorProductHandler(productUC *usecase.ProductUsecase, storeUC *usecase.StoreUsecase) *VendorProductHandler {
	return &VendorProductHandler{productUC: productUC, storeUC: storeUC}
}

func (h *VendorProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	vendor := e.Group("/vendor")

	vendor.Use(middleware.AuthJWT(cfg))
	vendor.Use(middleware.TokenVersionGuard(userRepo))
	vendor.Use(middleware.VendorRoleGuard())

	vendor.POST("/store", h.createStore)
	vendor.GET("/store", h.getStore)
	vendor.PUT("/store", h.updateStore)

	vendor.GET("/products", h.listProducts)
	vendor.POST("/products", h.createProduct)
	vendor.PUT("/products/:id", h.updateProduct)
	vendor.DELETE("/products/:id", h.deleteProduct)
	vendor.PUT("/inventory/:product_id", h.updateInventory)
}

type StoreRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *VendorProductHandler) createStore(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req StoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	s, err := h.storeUC.CreateStore(c.Request().Context(), userID, usecase.StoreInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *VendorProductHandler) getStore(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	s, err := h.storeUC.GetMyStore(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *VendorProductHandler) updateStore(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req StoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	s, err := h.storeUC.UpdateMyStore(c.Request().Context(), userID, usecase.StoreInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *VendorProductHandler) listProducts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.productUC.VendorListProducts(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *VendorProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.productUC.VendorCreateProduct(
		c.Request().Context(),
		userID,
		usecase.VendorProductInput{
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Image,
			Price:       req.Price,
			Unit:        req.Unit,
			Stock:       req.Stock,
			IsActive:    req.IsActive,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *VendorProductHandler) updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	err = h.productUC.VendorUpdateProduct(
		c.Request().Context(),
		userID,
		id,
		usecase.VendorProductInput{
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Image,
			Price:       req.Price,
			Unit:        req.Unit,
			Stock:       req.Stock,
			IsActive:    req.IsActive,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *VendorProductHandler) deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.productUC.VendorDeleteProduct(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *VendorProductHandler) updateInventory(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.productUC.VendorUpdateInventory(
		c.Request().Context(),
		userID,
		productID,
		req.Stock,
		req.Reason,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

func getUserRoleFromContext(c echo.Context) (string, bool) {
	v := c.Get("user_role")
	if v == nil {
		return "", false
	}

	role, ok := v.(string)
	if !ok {
		return "", false
	}

	return role, true
}
