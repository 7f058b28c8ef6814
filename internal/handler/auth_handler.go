package handler

import (
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"
	"marketplace/internal/validator"

	"github.com/labstack/echo/v4"
)

// /auth配下のHTTP。refresh/csrfはCookieで返す。
type AuthHandler struct {
	uc           *usecase.AuthUsecase
	refreshTTL   time.Duration
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase, refreshTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		uc:           uc,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/refresh", h.refresh)
	e.POST("/auth/logout", h.logout)

	me := e.Group("/auth/me")
	me.Use(middleware.AuthJWT(cfg))
	me.Use(middleware.TokenVersionGuard(userRepo))
	me.GET("", h.me)

	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())
	admin.POST("/users/:id/force-logout", h.forceLogout)
}

// usecase/validatorのエラーをHTTPステータスへ変換
func writeAuthError(c echo.Context, err error) error {
	switch err {
	case validator.ErrInvalidInput, usecase.ErrValidation:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case validator.ErrEmailAlreadyUsed, usecase.ErrConflict:
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	case validator.ErrInvalidRefresh, usecase.ErrUnauthorized, usecase.ErrSecurityIncident:
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case usecase.ErrForbidden:
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (h *AuthHandler) register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userAgent := c.Request().Header.Get("User-Agent")
	ip := c.RealIP()

	res, err := h.uc.Login(c.Request().Context(), req, userAgent, ip)
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	return c.JSON(http.StatusOK, res.Body)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	if !checkCsrf(c) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	userAgent := c.Request().Header.Get("User-Agent")
	ip := c.RealIP()

	res, err := h.uc.Refresh(c.Request().Context(), cookie.Value, userAgent, ip)
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	return c.JSON(http.StatusOK, res.Body)
}

func (h *AuthHandler) logout(c echo.Context) error {
	if !checkCsrf(c) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	res, err := h.uc.Logout(c.Request().Context(), cookie.Value)
	if err != nil {
		return writeAuthError(c, err)
	}

	h.clearAuthCookies(c)

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	dto, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AuthHandler) forceLogout(c echo.Context) error {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), targetID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

const refreshCookieName = "refresh_token"

// CSRFはdouble submit（cookieとX-CSRF-Tokenヘッダの一致）で見る
func checkCsrf(c echo.Context) bool {
	cookie, err := c.Cookie("csrf_token")
	if err != nil || cookie.Value == "" {
		return false
	}
	header := c.Request().Header.Get("X-CSRF-Token")
	return header != "" && header == cookie.Value
}

// refreshtokenをCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.refreshTTL),
	})
}

// csrftokenをCookieにセット（JSから読めるようにHttpOnlyにしない）
func (h *AuthHandler) setCsrfCookie(c echo.Context, csrfToken string) {
	c.SetCookie(&http.Cookie{
		Name:     "csrf_token",
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.refreshTTL),
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	for _, name := range []string{refreshCookieName, "csrf_token"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: name == refreshCookieName,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
