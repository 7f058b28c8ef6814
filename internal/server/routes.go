package server

import (
	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/repository"

	"github.com/labstack/echo/v4"
)

// ルート登録に必要なhandler一式
type Deps struct {
	UserRepo repository.UserRepository

	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	Coupon        *handler.CouponHandler
	VendorProduct *handler.VendorProductHandler
	VendorOrder   *handler.VendorOrderHandler
	AdminOrder    *handler.AdminOrderHandler
	AdminCoupon   *handler.AdminCouponHandler
}

func registerRoutes(e *echo.Echo, cfg config.Config, d Deps) {
	d.Auth.RegisterRoutes(e, cfg, d.UserRepo)
	d.Product.RegisterRoutes(e)
	d.Cart.RegisterRoutes(e, cfg, d.UserRepo)
	d.Order.RegisterRoutes(e, cfg, d.UserRepo)
	d.Coupon.RegisterRoutes(e, cfg, d.UserRepo)
	d.VendorProduct.RegisterRoutes(e, cfg, d.UserRepo)
	d.VendorOrder.RegisterRoutes(e, cfg, d.UserRepo)
	d.AdminOrder.RegisterRoutes(e, cfg, d.UserRepo)
	d.AdminCoupon.RegisterRoutes(e, cfg, d.UserRepo)
}
