package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	Clear(ctx context.Context, cartID int64) error
}
