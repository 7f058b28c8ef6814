package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// (現在, 要求) の明示的な遷移表。
// 文字列比較を散らかさず、ここだけを見れば遷移の全体が分かるようにする。
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:    {OrderStatusProcessing: true, OrderStatusCancelled: true},
	OrderStatusProcessing: {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:    {OrderStatusDelivered: true, OrderStatusCancelled: true},
	OrderStatusDelivered:  {OrderStatusRefunded: true},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// 遷移表で許可されているかだけを返す（権限は見ない）。
func CanTransition(from OrderStatus, to OrderStatus) bool {
	return orderTransitions[from][to]
}

// 有効なステータス値か
func IsValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentMethodUPI            PaymentMethod = "UPI"
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodUPI, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// 注文に埋め込む配送先（注文はスナップショットなので住所テーブルを参照しない）
type ShippingAddress struct {
	HouseNo  string `gorm:"type:varchar(255)" json:"house_no"`
	Landmark string `gorm:"type:varchar(255)" json:"landmark"`
	City     string `gorm:"type:varchar(100)" json:"city"`
	State    string `gorm:"type:varchar(100)" json:"state"`
	PinCode  string `gorm:"type:varchar(20)" json:"pin_code"`
}

// 注文は確定時点のスナップショット。
// 明細はちょうど1ストアの商品だけを参照する（複数ストア混在は作成時に拒否）。
// 削除はしない（監査のため残す）。
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	StoreID         int64           `gorm:"not null;index" json:"store_id"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	// COD以外のみ。CODでは空。
	TransactionID string      `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`
	TotalPrice    int64       `gorm:"not null" json:"total_price"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	// 配達確認用の6桁コード。確認成功で空にする（再利用不可）。
	DeliveryCode string     `gorm:"type:varchar(6)" json:"delivery_code,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
