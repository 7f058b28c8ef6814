package model

import "time"

// 出店者ごとに1ストア
type Store struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VendorUserID int64     `gorm:"not null;uniqueIndex" json:"vendor_user_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
