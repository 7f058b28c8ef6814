package model

import (
	"time"

	"gorm.io/gorm"
)

// 価格は最小通貨単位のint64で持つ
type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID     int64          `gorm:"not null;index" json:"store_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Image       string         `gorm:"type:varchar(512)" json:"image"`
	Price       int64          `gorm:"not null" json:"price"`
	Unit        string         `gorm:"type:varchar(30);not null;default:'pc'" json:"unit"`
	Stock       int64          `gorm:"not null" json:"stock"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
