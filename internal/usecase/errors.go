package usecase

import (
	"errors"
	"fmt"
)

// usecaseの失敗はすべてHTTPステータス付きでhandlerへ返す。
// 400 入力不正 / 403 権限・所有 / 404 不在 / 409 競合（在庫不足・上限・コード不一致など） / 410 期限切れ
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
