package model

// Actorはリクエストごとに1回だけ計算する権限オブジェクト。
// handler/usecaseの各所でロール文字列を見比べる代わりにこれを使う。
// StoreIDはVENDORのときだけ自ストアのIDが入る（それ以外は0）。
type Actor struct {
	UserID  int64
	Role    Role
	StoreID int64
}

// 対象の注文を操作できるか（管理者は全注文、出店者は自ストアの注文のみ）。
// 顧客に直接の更新権限はない。
func (a Actor) CanManageOrder(o Order) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleVendor:
		return a.StoreID != 0 && a.StoreID == o.StoreID
	}
	return false
}

// 状態遷移の可否（権限 AND 遷移表）。
func (a Actor) CanTransition(o Order, to OrderStatus) bool {
	return a.CanManageOrder(o) && CanTransition(o.Status, to)
}

// 配達確認（OTP照合）は受け渡しの当事者である出店者だけに許す。
// 管理者が手で届けたことにしたい場合はステータス更新を使う。
func (a Actor) CanConfirmDelivery(o Order) bool {
	return a.Role == RoleVendor && a.StoreID != 0 && a.StoreID == o.StoreID
}
