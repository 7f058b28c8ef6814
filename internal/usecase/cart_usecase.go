package usecase

import (
	"context"
	"fmt"
	"net/http"

	repo "marketplace/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 明細は商品ID単位で操作する（カート内で商品は1行だけ）。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// price/name/image/unit は追加時点のスナップショットを返す。
type CartItemResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Unit      string `json:"unit"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 既存数量＋追加数量が現在庫を超えるなら409。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// カート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	// 既存数量を調べて、加算後がライブ在庫を超えないか確認
	var existingQty int64 = 0
	existing, err := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, in.ProductID)
	if err == nil {
		existingQty = existing.Quantity
	} else if err != repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if existingQty+in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusConflict,
			fmt.Sprintf("insufficient stock for %s: %d available", p.Name, p.Stock))
	}

	// Upsert（同一商品は加算）。新規行は追加時点のスナップショット。
	snap := repo.CartItemSnapshot{
		Name:      p.Name,
		Image:     p.Image,
		Unit:      p.Unit,
		UnitPrice: p.Price,
	}
	if err := u.cartItemRepo.UpsertAdd(ctx, cart.ID, in.ProductID, in.Quantity, snap); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 数量変更（在庫チェック付き）。削除は別操作なので quantity < 1 は拒否。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, productID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "item not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if _, err := u.cartItemRepo.FindByCartAndProduct(ctx, cart.ID, productID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "item not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//ライブ在庫で再チェック
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusConflict,
			fmt.Sprintf("insufficient stock for %s: %d available", p.Name, p.Stock))
	}

	if err := u.cartItemRepo.UpdateQuantityByProduct(ctx, cart.ID, productID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "item not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除
func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "item not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByProduct(ctx, cart.ID, productID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "item not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 合計は常に Σ(price × quantity) を計算して返す（キャッシュしない）。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ProductID: it.ProductID,
			Name:      it.NameSnapshot,
			Image:     it.ImageSnapshot,
			Price:     it.UnitPriceSnapshot,
			Unit:      it.UnitSnapshot,
			Quantity:  it.Quantity,
		})

		total += it.UnitPriceSnapshot * it.Quantity
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
