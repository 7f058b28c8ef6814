package handler

import (
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者のクーポン管理
type AdminCouponHandler struct {
	uc *usecase.AdminCouponUsecase
}

func NewAdminCouponHandler(uc *usecase.AdminCouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{uc: uc}
}

type CouponRequest struct {
	Code              string `json:"code"`
	DiscountType      string `json:"discount_type"`
	DiscountValue     int64  `json:"discount_value"`
	MinOrderAmount    int64  `json:"min_order_amount"`
	MaxDiscountAmount *int64 `json:"max_discount_amount"`
	ExpiresAt         string `json:"expires_at"`
	UsageLimit        *int64 `json:"usage_limit"`
	IsActive          bool   `json:"is_active"`
	IsNewUserOnly     bool   `json:"is_new_user_only"`
}

func (h *AdminCouponHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin/coupons")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("", h.list)
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (r CouponRequest) toInput() (usecase.CouponInput, error) {
	exp, err := time.Parse(time.RFC3339, r.ExpiresAt)
	if err != nil {
		return usecase.CouponInput{}, err
	}
	return usecase.CouponInput{
		Code:              r.Code,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		MinOrderAmount:    r.MinOrderAmount,
		MaxDiscountAmount: r.MaxDiscountAmount,
		ExpiresAt:         exp,
		UsageLimit:        r.UsageLimit,
		IsActive:          r.IsActive,
		IsNewUserOnly:     r.IsNewUserOnly,
	}, nil
}

func (h *AdminCouponHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	items, total, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *AdminCouponHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid expires_at"})
	}

	coupon, err := h.uc.Create(c.Request().Context(), adminID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, coupon)
}

func (h *AdminCouponHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req CouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid expires_at"})
	}

	if err := h.uc.Update(c.Request().Context(), adminID, id, in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminCouponHandler) delete(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
