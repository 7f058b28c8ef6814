package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

// 追加時点のスナップショット
type CartItemSnapshot struct {
	Name      string
	Image     string
	Unit      string
	UnitPrice int64
}

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	// 同一商品はプラス。新規行にはスナップショットを保存。
	UpsertAdd(ctx context.Context, cartID int64, productID int64, addQty int64, snap CartItemSnapshot) error
	UpdateQuantityByProduct(ctx context.Context, cartID int64, productID int64, qty int64) error
	DeleteByProduct(ctx context.Context, cartID int64, productID int64) error
}
