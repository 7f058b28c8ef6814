package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 商品の公開閲覧と、出店者による自ストア商品の管理。
type ProductUsecase struct {
	productRepo   repo.ProductRepository
	storeRepo     repo.StoreRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
	clock         Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	storeRepo repo.StoreRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		storeRepo:     storeRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		clock:         clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	StoreID  *int64
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		StoreID:  in.StoreID,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 非公開商品は存在しない扱い
	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

// 出店者の自ストアを解決。未作成なら403。
func (u *ProductUsecase) resolveStore(ctx context.Context, vendorUserID int64) (model.Store, error) {
	if vendorUserID <= 0 {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	s, err := u.storeRepo.FindByVendorUserID(ctx, vendorUserID)
	if err == repo.ErrNotFound {
		return model.Store{}, NewHTTPError(http.StatusForbidden, "store not registered")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

// 自ストア以外の商品は404扱い（存在を漏らさない）
func (u *ProductUsecase) findOwnProduct(ctx context.Context, storeID int64, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.StoreID != storeID {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

type VendorProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
	Unit        string `json:"unit"`
	Stock       int64  `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

func (in VendorProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

func (u *ProductUsecase) VendorListProducts(ctx context.Context, vendorUserID int64) ([]model.Product, error) {
	s, err := u.resolveStore(ctx, vendorUserID)
	if err != nil {
		return nil, err
	}
	items, err := u.productRepo.ListByStoreID(ctx, s.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) VendorCreateProduct(ctx context.Context, vendorUserID int64, in VendorProductInput) (model.Product, error) {
	s, err := u.resolveStore(ctx, vendorUserID)
	if err != nil {
		return model.Product{}, err
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "pc"
	}

	now := u.clock.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		StoreID:     s.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Unit:        unit,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) VendorUpdateProduct(ctx context.Context, vendorUserID int64, productID int64, in VendorProductInput) error {
	s, err := u.resolveStore(ctx, vendorUserID)
	if err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}

	p, err := u.findOwnProduct(ctx, s.ID, productID)
	if err != nil {
		return err
	}

	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = p.Unit
	}

	err = u.productRepo.Update(ctx, model.Product{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Unit:        unit,
		Stock:       p.Stock, // 在庫は在庫更新APIでのみ変える
		IsActive:    in.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   u.clock.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) VendorDeleteProduct(ctx context.Context, vendorUserID int64, productID int64) error {
	s, err := u.resolveStore(ctx, vendorUserID)
	if err != nil {
		return err
	}

	p, err := u.findOwnProduct(ctx, s.ID, productID)
	if err != nil {
		return err
	}

	err = u.productRepo.SoftDelete(ctx, p.ID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) VendorUpdateInventory(ctx context.Context, vendorUserID int64, productID int64, newStock int64, reason string) error {
	s, err := u.resolveStore(ctx, vendorUserID)
	if err != nil {
		return err
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	//変更前の在庫（before）
	p, err := u.findOwnProduct(ctx, s.ID, productID)
	if err != nil {
		return err
	}

	beforeJSON := fmt.Sprintf(`{"stock":%d}`, p.Stock)
	afterJSON := fmt.Sprintf(`{"stock":%d}`, newStock)

	//在庫の現在値を更新
	if err := u.inventoryRepo.SetStock(ctx, productID, newStock); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//履歴を作成（差分）
	now := u.clock.Now()
	adj := model.InventoryAdjustment{
		ProductID:   productID,
		ActorUserID: vendorUserID,
		Delta:       newStock - p.Stock,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   now,
	}
	if err := u.inventoryRepo.CreateAdjustment(ctx, adj); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログを作成（在庫更新）
	//「誰が」「何を」「どの対象に」「どう変えたか」を残す
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  vendorUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    now,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
