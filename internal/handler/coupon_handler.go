package handler

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// クーポンの事前判定API。注文は作らない（読み取り専用）。
type CouponHandler struct {
	uc *usecase.CouponUsecase
}

func NewCouponHandler(uc *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

type CouponPreviewRequest struct {
	Code       string `json:"code"`
	TotalPrice int64  `json:"total_price"`
}

func (h *CouponHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/coupons")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("/preview", h.preview)
}

func (h *CouponHandler) preview(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CouponPreviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.PreviewDiscount(c.Request().Context(), userID, req.Code, req.TotalPrice)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
