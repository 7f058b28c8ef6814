package usecase

import (
	"context"
	"net/http"
	"testing"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newStoreUC(stores *StoreRepoMock) *StoreUsecase {
	return NewStoreUsecase(stores, fixedClock{t: testNow})
}

func TestCreateStore_Success(t *testing.T) {
	stores := new(StoreRepoMock)
	stores.On("FindByVendorUserID", mock.Anything, int64(2)).Return(model.Store{}, repo.ErrNotFound)
	stores.On("Create", mock.Anything, mock.MatchedBy(func(s model.Store) bool {
		return s.VendorUserID == 2 && s.Name == "Kalimba Coffee" && s.IsActive && s.CreatedAt.Equal(testNow)
	})).Return(model.Store{ID: 10, VendorUserID: 2, Name: "Kalimba Coffee", IsActive: true}, nil)

	uc := newStoreUC(stores)

	s, err := uc.CreateStore(context.Background(), 2, StoreInput{Name: " Kalimba Coffee "})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), s.ID)

	stores.AssertExpectations(t)
}

// 1出店者1ストア
func TestCreateStore_RejectsSecondStore(t *testing.T) {
	stores := new(StoreRepoMock)
	stores.On("FindByVendorUserID", mock.Anything, int64(2)).Return(
		model.Store{ID: 10, VendorUserID: 2}, nil)

	uc := newStoreUC(stores)

	_, err := uc.CreateStore(context.Background(), 2, StoreInput{Name: "Second Shop"})
	assertHTTPError(t, err, http.StatusConflict, "store already exists")

	stores.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetMyStore_NotRegistered(t *testing.T) {
	stores := new(StoreRepoMock)
	stores.On("FindByVendorUserID", mock.Anything, int64(2)).Return(model.Store{}, repo.ErrNotFound)

	uc := newStoreUC(stores)

	_, err := uc.GetMyStore(context.Background(), 2)
	assertHTTPError(t, err, http.StatusNotFound, "store not registered")
}

func TestUpdateMyStore_Success(t *testing.T) {
	stores := new(StoreRepoMock)
	stores.On("FindByVendorUserID", mock.Anything, int64(2)).Return(
		model.Store{ID: 10, VendorUserID: 2, Name: "Kalimba Coffee", IsActive: true}, nil)
	stores.On("Update", mock.Anything, mock.MatchedBy(func(s model.Store) bool {
		return s.ID == 10 && s.Name == "Kalimba Roastery" && s.Description == "beans and gear" &&
			s.UpdatedAt.Equal(testNow)
	})).Return(nil)

	uc := newStoreUC(stores)

	s, err := uc.UpdateMyStore(context.Background(), 2, StoreInput{Name: "Kalimba Roastery", Description: "beans and gear"})
	assert.NoError(t, err)
	assert.Equal(t, "Kalimba Roastery", s.Name)

	stores.AssertExpectations(t)
}
