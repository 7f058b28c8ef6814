package handler

import (
	"net/http"
	"strconv"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 出店者の注文管理（一覧・ステータス更新・配達確認）
type VendorOrderHandler struct {
	statusUC   *usecase.OrderStatusUsecase
	deliveryUC *usecase.DeliveryUsecase
}

func NewVendorOrderHandler(statusUC *usecase.OrderStatusUsecase, deliveryUC *usecase.DeliveryUsecase) *VendorOrderHandler {
	return &VendorOrderHandler{statusUC: statusUC, deliveryUC: deliveryUC}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type ConfirmDeliveryRequest struct {
	DeliveryCode string `json:"delivery_code"`
}

func (h *VendorOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/vendor/orders")

	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.VendorRoleGuard())

	g.GET("", h.list)
	g.PATCH("/:id/status", h.updateStatus)
	g.POST("/:id/confirm-delivery", h.confirmDelivery)
}

// リクエストからActorを組み立てる
func (h *VendorOrderHandler) resolveActor(c echo.Context) (model.Actor, bool, error) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return model.Actor{}, false, nil
	}
	role, ok := getUserRoleFromContext(c)
	if !ok {
		return model.Actor{}, false, nil
	}

	actor, err := h.statusUC.ResolveActor(c.Request().Context(), userID, model.Role(role))
	if err != nil {
		return model.Actor{}, true, err
	}
	return actor, true, nil
}

func (h *VendorOrderHandler) list(c echo.Context) error {
	actor, ok, err := h.resolveActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	if err != nil {
		return writeError(c, err)
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	items, total, err := h.statusUC.ListStoreOrders(c.Request().Context(), actor, page, limit)
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

func (h *VendorOrderHandler) updateStatus(c echo.Context) error {
	actor, ok, err := h.resolveActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	if err != nil {
		return writeError(c, err)
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.statusUC.UpdateStatus(c.Request().Context(), actor, orderID, usecase.UpdateOrderStatusInput{
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *VendorOrderHandler) confirmDelivery(c echo.Context) error {
	actor, ok, err := h.resolveActor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	if err != nil {
		return writeError(c, err)
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ConfirmDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.deliveryUC.ConfirmDelivery(c.Request().Context(), actor, orderID, usecase.ConfirmDeliveryInput{
		DeliveryCode: req.DeliveryCode,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
