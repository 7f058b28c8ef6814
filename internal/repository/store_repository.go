package repository

import (
	"context"

	"marketplace/internal/domain/model"
)

type StoreRepository interface {
	FindByID(ctx context.Context, storeID int64) (model.Store, error)
	// 出店者（VENDOR）の自ストアを取得
	FindByVendorUserID(ctx context.Context, vendorUserID int64) (model.Store, error)
	Create(ctx context.Context, s model.Store) (model.Store, error)
	Update(ctx context.Context, s model.Store) error
}
