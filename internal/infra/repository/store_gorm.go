package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type StoreGormRepository struct {
	db *gorm.DB
}

// DI
func NewStoreGormRepository(db *gorm.DB) *StoreGormRepository {
	return &StoreGormRepository{db: db}
}

func (r *StoreGormRepository) FindByID(ctx context.Context, storeID int64) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

// 出店者の自ストア（vendor_user_idはユニーク）
func (r *StoreGormRepository) FindByVendorUserID(ctx context.Context, vendorUserID int64) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).
		Where("vendor_user_id = ?", vendorUserID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

func (r *StoreGormRepository) Create(ctx context.Context, s model.Store) (model.Store, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.Store{}, err
	}
	return s, nil
}

func (r *StoreGormRepository) Update(ctx context.Context, s model.Store) error {
	res := r.db.WithContext(ctx).Model(&model.Store{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"name":        s.Name,
		"description": s.Description,
		"is_active":   s.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
