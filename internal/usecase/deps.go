package usecase

import "time"

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束（決済トランザクションID用）
type IDGenerator interface {
	NewID() string
}

// 配達確認用の6桁コードを作る約束。
// テストで固定値を返す実装に差し替える。
type DeliveryCodeGenerator interface {
	NewCode() (string, error)
}
