package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークンの保存・取得・更新・削除
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	MarkUsed(ctx context.Context, tokenID string) error
	Revoke(ctx context.Context, tokenID string) error
	DeleteAllByUserID(ctx context.Context, userID int64) error
	DeleteByID(ctx context.Context, tokenID string) error
}
