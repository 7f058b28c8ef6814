package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがVENDORかどうかを確認します。

func VendorRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//VENDORだけ許可
			if role != "VENDOR" {
				return c.JSON(http.StatusForbidden, errorJSON("vendor only"))
			}

			return next(c)
		}
	}
}
