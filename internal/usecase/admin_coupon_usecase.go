package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// クーポンのライフサイクルは管理者だけが触る。
// 使用状況（used_count/台帳）は注文確定のみが更新する。
type AdminCouponUsecase struct {
	couponRepo repo.CouponRepository
	auditRepo  repo.AuditLogRepository
	clock      Clock
}

func NewAdminCouponUsecase(
	couponRepo repo.CouponRepository,
	auditRepo repo.AuditLogRepository,
	clock Clock,
) *AdminCouponUsecase {
	return &AdminCouponUsecase{
		couponRepo: couponRepo,
		auditRepo:  auditRepo,
		clock:      clock,
	}
}

type CouponInput struct {
	Code              string
	DiscountType      string
	DiscountValue     int64
	MinOrderAmount    int64
	MaxDiscountAmount *int64
	ExpiresAt         time.Time
	UsageLimit        *int64
	IsActive          bool
	IsNewUserOnly     bool
}

func (in CouponInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return NewHTTPError(http.StatusBadRequest, "code required")
	}
	switch model.DiscountType(in.DiscountType) {
	case model.DiscountTypePercentage, model.DiscountTypeFixed:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid discount_type")
	}
	if in.DiscountValue < 0 {
		return NewHTTPError(http.StatusBadRequest, "discount_value must be >= 0")
	}
	if model.DiscountType(in.DiscountType) == model.DiscountTypePercentage && in.DiscountValue > 100 {
		return NewHTTPError(http.StatusBadRequest, "discount_value must be <= 100")
	}
	if in.MinOrderAmount < 0 {
		return NewHTTPError(http.StatusBadRequest, "min_order_amount must be >= 0")
	}
	if in.MaxDiscountAmount != nil && *in.MaxDiscountAmount < 0 {
		return NewHTTPError(http.StatusBadRequest, "max_discount_amount must be >= 0")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		return NewHTTPError(http.StatusBadRequest, "usage_limit must be >= 1")
	}
	if in.ExpiresAt.IsZero() {
		return NewHTTPError(http.StatusBadRequest, "expires_at required")
	}
	return nil
}

func (u *AdminCouponUsecase) Create(ctx context.Context, adminUserID int64, in CouponInput) (model.Coupon, error) {
	if adminUserID <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.Coupon{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))

	// コード重複チェック
	if _, err := u.couponRepo.FindByCode(ctx, code); err == nil {
		return model.Coupon{}, NewHTTPError(http.StatusConflict, "coupon code already exists")
	} else if err != repo.ErrNotFound {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := u.clock.Now()
	c, err := u.couponRepo.Create(ctx, model.Coupon{
		Code:              code,
		DiscountType:      model.DiscountType(in.DiscountType),
		DiscountValue:     in.DiscountValue,
		MinOrderAmount:    in.MinOrderAmount,
		MaxDiscountAmount: in.MaxDiscountAmount,
		ExpiresAt:         in.ExpiresAt,
		UsageLimit:        in.UsageLimit,
		UsedCount:         0,
		IsActive:          in.IsActive,
		IsNewUserOnly:     in.IsNewUserOnly,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit(ctx, adminUserID, model.AuditActionCreateCoupon, c.ID, "{}", fmt.Sprintf(`{"code":%q}`, c.Code))
	return c, nil
}

func (u *AdminCouponUsecase) Update(ctx context.Context, adminUserID int64, couponID int64, in CouponInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	before, err := u.couponRepo.FindByID(ctx, couponID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.couponRepo.Update(ctx, model.Coupon{
		ID:                couponID,
		DiscountType:      model.DiscountType(in.DiscountType),
		DiscountValue:     in.DiscountValue,
		MinOrderAmount:    in.MinOrderAmount,
		MaxDiscountAmount: in.MaxDiscountAmount,
		ExpiresAt:         in.ExpiresAt,
		UsageLimit:        in.UsageLimit,
		IsActive:          in.IsActive,
		IsNewUserOnly:     in.IsNewUserOnly,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit(ctx, adminUserID, model.AuditActionUpdateCoupon, couponID,
		fmt.Sprintf(`{"is_active":%t}`, before.IsActive),
		fmt.Sprintf(`{"is_active":%t}`, in.IsActive))
	return nil
}

func (u *AdminCouponUsecase) Delete(ctx context.Context, adminUserID int64, couponID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	before, err := u.couponRepo.FindByID(ctx, couponID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.couponRepo.Delete(ctx, couponID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit(ctx, adminUserID, model.AuditActionDeleteCoupon, couponID,
		fmt.Sprintf(`{"code":%q}`, before.Code), "{}")
	return nil
}

func (u *AdminCouponUsecase) List(ctx context.Context, page int, limit int) ([]model.Coupon, int64, error) {
	if page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.couponRepo.List(ctx, repo.CouponListQuery{Page: page, Limit: limit})
	if err != nil {
		return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, total, nil
}

func (u *AdminCouponUsecase) audit(ctx context.Context, actorID int64, action model.AuditAction, couponID int64, before string, after string) {
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   couponID,
		BeforeJSON:   before,
		AfterJSON:    after,
		CreatedAt:    u.clock.Now(),
	})
}
