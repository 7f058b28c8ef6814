package model

import "time"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// クーポン本体。used_countは冗長カウンタで、
// 常に coupon_redemptions の件数と一致させる（加算は必ずガード付きUPDATE）。
type Coupon struct {
	ID                int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Code              string       `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	DiscountType      DiscountType `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue     int64        `gorm:"not null" json:"discount_value"`
	MinOrderAmount    int64        `gorm:"not null;default:0" json:"min_order_amount"`
	MaxDiscountAmount *int64       `json:"max_discount_amount"`
	ExpiresAt         time.Time    `gorm:"not null" json:"expires_at"`
	UsageLimit        *int64       `json:"usage_limit"`
	UsedCount         int64        `gorm:"not null;default:0" json:"used_count"`
	IsActive          bool         `gorm:"not null;default:true" json:"is_active"`
	IsNewUserOnly     bool         `gorm:"not null;default:false" json:"is_new_user_only"`
	CreatedAt         time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 顧客ごとの利用台帳（1顧客1回をユニーク制約で保証）
type CouponRedemption struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID int64     `gorm:"not null;index;uniqueIndex:idx_coupon_user" json:"coupon_id"`
	UserID   int64     `gorm:"not null;index;uniqueIndex:idx_coupon_user" json:"user_id"`
	UsedAt   time.Time `gorm:"not null" json:"used_at"`
}
