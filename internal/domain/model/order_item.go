package model

import "time"

// 注文明細。商品情報は確定時点のスナップショットで、
// その後の商品編集の影響を受けない。
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	ImageSnapshot       string    `gorm:"type:varchar(512)" json:"image_snapshot"`
	UnitSnapshot        string    `gorm:"type:varchar(30);not null" json:"unit_snapshot"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
