package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/handler"
	"marketplace/internal/infra/db"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/notifier"
	"marketplace/internal/server"
	"marketplace/internal/usecase"
	"marketplace/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// 6桁の配達確認コード（000000-999999、ゼロ埋め）
type deliveryCodeGenerator struct{}

func (g *deliveryCodeGenerator) NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Store{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Coupon{},
		&model.CouponRedemption{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	storeRepo := infraRepo.NewStoreGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	codeGen := &deliveryCodeGenerator{}
	orderNotifier := notifier.New(cfg.NotifyWebhookURL)
	authValidator := validator.NewAuthValidator(userRepo)

	//refresh TTL
	refreshTTL := 30 * 24 * time.Hour

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, authValidator)
	productUC := usecase.NewProductUsecase(productRepo, storeRepo, inventoryRepo, auditRepo, clock)
	storeUC := usecase.NewStoreUsecase(storeRepo, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo, orderRepo, clock)
	adminCouponUC := usecase.NewAdminCouponUsecase(couponRepo, auditRepo, clock)
	orderUC := usecase.NewOrderUsecase(txManager, idGen, codeGen, clock, orderNotifier)
	orderStatusUC := usecase.NewOrderStatusUsecase(txManager, storeRepo, clock)
	deliveryUC := usecase.NewDeliveryUsecase(txManager, clock)

	//Handler生成
	cookieSecure := cfg.GoEnv != "dev"
	deps := server.Deps{
		UserRepo:      userRepo,
		Auth:          handler.NewAuthHandler(authUC, refreshTTL, cookieSecure),
		Product:       handler.NewProductHandler(productUC),
		Cart:          handler.NewCartHandler(cartUC),
		Order:         handler.NewOrderHandler(orderUC),
		Coupon:        handler.NewCouponHandler(couponUC),
		VendorProduct: handler.NewVendorProductHandler(productUC, storeUC),
		VendorOrder:   handler.NewVendorOrderHandler(orderStatusUC, deliveryUC),
		AdminOrder:    handler.NewAdminOrderHandler(orderStatusUC),
		AdminCoupon:   handler.NewAdminCouponHandler(adminCouponUC),
	}

	e := server.New(cfg, deps)

	//SIGINT/SIGTERMでgraceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	if err := server.Start(ctx, e, addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
