package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page    int
	Limit   int
	Status  string
	UserID  *int64
	StoreID *int64
	From    *time.Time
	To      *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	ListByStoreID(ctx context.Context, storeID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 新規顧客判定（isNewUserOnlyクーポン用）
	CountByUserID(ctx context.Context, userID int64) (int64, error)

	// 手動でDELIVEREDにする（delivery_codeは消さない）
	MarkDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) error

	// OTP照合つきの配達確定。コードが一致した場合だけ
	// status=DELIVERED / delivered_at / delivery_code='' を1回のUPDATEで行い、
	// 一致しなければ false を返す（照合と消込を分けない）。
	ConfirmDelivery(ctx context.Context, orderID int64, code string, deliveredAt time.Time) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
