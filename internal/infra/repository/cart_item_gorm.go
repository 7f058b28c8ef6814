package repository

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

func (r *CartItemGormRepository) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// 同一商品は数量加算。新規行は追加時点のスナップショットで作る。
// (cart_id, product_id) のユニーク制約に乗せたupsert。
func (r *CartItemGormRepository) UpsertAdd(ctx context.Context, cartID int64, productID int64, addQty int64, snap repo.CartItemSnapshot) error {
	now := time.Now()
	item := model.CartItem{
		CartID:            cartID,
		ProductID:         productID,
		Quantity:          addQty,
		NameSnapshot:      snap.Name,
		ImageSnapshot:     snap.Image,
		UnitSnapshot:      snap.Unit,
		UnitPriceSnapshot: snap.UnitPrice,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + ?", addQty),
				"updated_at": now,
			}),
		}).
		Create(&item).Error
}

func (r *CartItemGormRepository) UpdateQuantityByProduct(ctx context.Context, cartID int64, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]interface{}{
			"quantity":   qty,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartItemGormRepository) DeleteByProduct(ctx context.Context, cartID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
