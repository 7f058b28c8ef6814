package usecase

import (
	"context"
	"net/http"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 出店者の自ストア管理。1出店者につき1ストア。
type StoreUsecase struct {
	storeRepo repo.StoreRepository
	clock     Clock
}

func NewStoreUsecase(storeRepo repo.StoreRepository, clock Clock) *StoreUsecase {
	return &StoreUsecase{storeRepo: storeRepo, clock: clock}
}

type StoreInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (u *StoreUsecase) CreateStore(ctx context.Context, vendorUserID int64, in StoreInput) (model.Store, error) {
	if vendorUserID <= 0 {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	// 2つ目は作らせない
	if _, err := u.storeRepo.FindByVendorUserID(ctx, vendorUserID); err == nil {
		return model.Store{}, NewHTTPError(http.StatusConflict, "store already exists")
	} else if err != repo.ErrNotFound {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := u.clock.Now()
	s, err := u.storeRepo.Create(ctx, model.Store{
		VendorUserID: vendorUserID,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

func (u *StoreUsecase) GetMyStore(ctx context.Context, vendorUserID int64) (model.Store, error) {
	if vendorUserID <= 0 {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	s, err := u.storeRepo.FindByVendorUserID(ctx, vendorUserID)
	if err == repo.ErrNotFound {
		return model.Store{}, NewHTTPError(http.StatusNotFound, "store not registered")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

func (u *StoreUsecase) UpdateMyStore(ctx context.Context, vendorUserID int64, in StoreInput) (model.Store, error) {
	s, err := u.GetMyStore(ctx, vendorUserID)
	if err != nil {
		return model.Store{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	s.Name = strings.TrimSpace(in.Name)
	s.Description = in.Description
	s.UpdatedAt = u.clock.Now()
	if err := u.storeRepo.Update(ctx, s); err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}
