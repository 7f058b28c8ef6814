package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// CouponUsecase はクーポンの適用判定（副作用なし）と管理CRUD。
// 利用確定（used_count/台帳の更新）はここではなく注文確定時に行う。
// この分離があるので、顧客は何度でもコードを試せる。
type CouponUsecase struct {
	couponRepo repo.CouponRepository
	orderRepo  repo.OrderRepository
	clock      Clock
}

func NewCouponUsecase(
	couponRepo repo.CouponRepository,
	orderRepo repo.OrderRepository,
	clock Clock,
) *CouponUsecase {
	return &CouponUsecase{
		couponRepo: couponRepo,
		orderRepo:  orderRepo,
		clock:      clock,
	}
}

// プレビュー結果（クーポンのスナップショット＋割引額）
type DiscountPreview struct {
	Code           string `json:"code"`
	DiscountType   string `json:"discount_type"`
	DiscountValue  int64  `json:"discount_value"`
	DiscountAmount int64  `json:"discount_amount"`
	IsNewUserOnly  bool   `json:"is_new_user_only"`
}

type DiscountPreviewResponse struct {
	Coupon DiscountPreview `json:"coupon"`
}

// PreviewDiscount は適用可否の判定と割引額の計算だけを行う。
// 何度呼んでもクーポンは変化しない。
func (u *CouponUsecase) PreviewDiscount(ctx context.Context, userID int64, code string, totalPrice int64) (DiscountPreviewResponse, error) {
	if userID <= 0 {
		return DiscountPreviewResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(code) == "" {
		return DiscountPreviewResponse{}, NewHTTPError(http.StatusBadRequest, "code required")
	}
	if totalPrice < 0 {
		return DiscountPreviewResponse{}, NewHTTPError(http.StatusBadRequest, "invalid total_price")
	}

	c, amount, err := validateCoupon(ctx, u.couponRepo, u.orderRepo, userID, strings.TrimSpace(code), totalPrice, u.clock.Now())
	if err != nil {
		return DiscountPreviewResponse{}, err
	}

	return DiscountPreviewResponse{
		Coupon: DiscountPreview{
			Code:           c.Code,
			DiscountType:   string(c.DiscountType),
			DiscountValue:  c.DiscountValue,
			DiscountAmount: amount,
			IsNewUserOnly:  c.IsNewUserOnly,
		},
	}, nil
}

// 適用判定の本体。プレビューと注文確定（トランザクション内のrepoを渡す）で共用する。
// 判定順は固定：不在/無効 → 期限 → 上限 → 使用済み → 新規限定 → 最低額。
func validateCoupon(
	ctx context.Context,
	coupons repo.CouponRepository,
	orders repo.OrderRepository,
	userID int64,
	code string,
	totalPrice int64,
	now time.Time,
) (model.Coupon, int64, error) {
	c, err := coupons.FindByCode(ctx, code)
	if err == repo.ErrNotFound {
		return model.Coupon{}, 0, NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if err != nil {
		return model.Coupon{}, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !c.IsActive {
		return model.Coupon{}, 0, NewHTTPError(http.StatusNotFound, "coupon not found")
	}

	if c.ExpiresAt.Before(now) {
		return model.Coupon{}, 0, NewHTTPError(http.StatusGone, "coupon expired")
	}

	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return model.Coupon{}, 0, NewHTTPError(http.StatusConflict, "coupon usage limit reached")
	}

	used, err := coupons.HasRedemption(ctx, c.ID, userID)
	if err != nil {
		return model.Coupon{}, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if used {
		return model.Coupon{}, 0, NewHTTPError(http.StatusConflict, "coupon already used")
	}

	if c.IsNewUserOnly {
		n, err := orders.CountByUserID(ctx, userID)
		if err != nil {
			return model.Coupon{}, 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if n > 0 {
			return model.Coupon{}, 0, NewHTTPError(http.StatusBadRequest, "coupon is for new users only")
		}
	}

	if totalPrice < c.MinOrderAmount {
		return model.Coupon{}, 0, NewHTTPError(http.StatusBadRequest, "minimum order amount not met")
	}

	return c, computeDiscount(c, totalPrice), nil
}

// 割引額の計算。percentageはmax_discount_amountで頭打ち、
// いずれの場合も合計を超えない（合計が負にならない）。
func computeDiscount(c model.Coupon, totalPrice int64) int64 {
	var d int64
	switch c.DiscountType {
	case model.DiscountTypePercentage:
		d = totalPrice * c.DiscountValue / 100
		if c.MaxDiscountAmount != nil && d > *c.MaxDiscountAmount {
			d = *c.MaxDiscountAmount
		}
	case model.DiscountTypeFixed:
		d = c.DiscountValue
	}
	if d > totalPrice {
		d = totalPrice
	}
	if d < 0 {
		d = 0
	}
	return d
}
