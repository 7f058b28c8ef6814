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

type CouponGormRepository struct {
	db *gorm.DB
}

// DI
func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) FindByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).First(&c, couponID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) List(ctx context.Context, q repo.CouponListQuery) ([]model.Coupon, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Coupon{}).Count(&total).Error; err != nil {
		return []model.Coupon{}, 0, err
	}

	var items []model.Coupon
	offset := (q.Page - 1) * q.Limit
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(q.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Coupon{}, 0, err
	}
	return items, total, nil
}

func (r *CouponGormRepository) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) Update(ctx context.Context, c model.Coupon) error {
	res := r.db.WithContext(ctx).Model(&model.Coupon{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"discount_type":       c.DiscountType,
		"discount_value":      c.DiscountValue,
		"min_order_amount":    c.MinOrderAmount,
		"max_discount_amount": c.MaxDiscountAmount,
		"expires_at":          c.ExpiresAt,
		"usage_limit":         c.UsageLimit,
		"is_active":           c.IsActive,
		"is_new_user_only":    c.IsNewUserOnly,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CouponGormRepository) Delete(ctx context.Context, couponID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Coupon{}, couponID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CouponGormRepository) HasRedemption(ctx context.Context, couponID int64, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CouponRedemption{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// 利用確定。カウンタはアプリ側のread-modify-writeではなく
// 「上限未満のときだけ+1」のガード付きUPDATEで競合に耐える。
// 台帳は(coupon,user)ユニークにON CONFLICT DO NOTHINGで冪等挿入。
func (r *CouponGormRepository) Redeem(ctx context.Context, couponID int64, userID int64) error {
	//台帳に挿入（既にあれば何もしない）
	red := model.CouponRedemption{
		CouponID: couponID,
		UserID:   userID,
		UsedAt:   time.Now(),
	}
	ins := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "coupon_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&red)
	if ins.Error != nil {
		return ins.Error
	}
	if ins.RowsAffected == 0 {
		// この顧客の分は確定済み。リトライとみなして二重加算しない。
		return nil
	}

	//カウンタ加算（上限に達していたら0件更新）
	res := r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", couponID).
		Update("used_count", gorm.Expr("used_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrCouponExhausted
	}
	return nil
}
