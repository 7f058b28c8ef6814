package model

import "time"

// カートの明細
// 追加時点の商品情報（名前・画像・価格・単位）を必ず保存。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID         int64     `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	NameSnapshot      string    `gorm:"type:varchar(255);not null" json:"name_snapshot"`
	ImageSnapshot     string    `gorm:"type:varchar(512)" json:"image_snapshot"`
	UnitSnapshot      string    `gorm:"type:varchar(30);not null" json:"unit_snapshot"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
