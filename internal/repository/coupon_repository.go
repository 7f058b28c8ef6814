package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
)

// 利用回数の上限に達した
var ErrCouponExhausted = errors.New("coupon usage limit reached")

type CouponListQuery struct {
	Page  int
	Limit int
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	FindByID(ctx context.Context, couponID int64) (model.Coupon, error)
	List(ctx context.Context, q CouponListQuery) ([]model.Coupon, int64, error)

	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	Update(ctx context.Context, c model.Coupon) error
	Delete(ctx context.Context, couponID int64) error

	// この顧客が使用済みか（usedBy ∋ customer）
	HasRedemption(ctx context.Context, couponID int64, userID int64) (bool, error)

	// 利用確定。used_countは「上限未満のときだけ+1」のガード付きUPDATE、
	// 台帳行は(coupon,user)ユニークで冪等に挿入する。
	// 上限超過なら ErrCouponExhausted。
	Redeem(ctx context.Context, couponID int64, userID int64) error
}
