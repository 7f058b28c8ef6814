package usecase

import (
	"context"
	"net/http"
	"testing"

	"marketplace/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newDeliveryUC(tx *fakeTxManager) *DeliveryUsecase {
	return NewDeliveryUsecase(tx, fixedClock{t: testNow})
}

func shippedOrder() model.Order {
	return model.Order{ID: 55, UserID: 7, StoreID: 10, Status: model.OrderStatusShipped, DeliveryCode: "042137"}
}

func TestConfirmDelivery_RejectsMalformedCode(t *testing.T) {
	uc := newDeliveryUC(newFakeTxManager())

	for _, code := range []string{"", "123", "1234567"} {
		_, err := uc.ConfirmDelivery(context.Background(), vendorActor(10), 55, ConfirmDeliveryInput{DeliveryCode: code})
		assertHTTPError(t, err, http.StatusBadRequest, "delivery_code must be 6 digits")
	}
}

// 顧客・管理者は確認できない。出店者専用。
func TestConfirmDelivery_VendorOnly(t *testing.T) {
	for _, actor := range []model.Actor{
		{UserID: 7, Role: model.RoleCustomer},
		{UserID: 1, Role: model.RoleAdmin},
		vendorActor(20), // 他ストア
	} {
		tx := newFakeTxManager()
		tx.repos.orders.On("FindByID", mock.Anything, int64(55)).Return(shippedOrder(), nil)

		uc := newDeliveryUC(tx)

		_, err := uc.ConfirmDelivery(context.Background(), actor, 55, ConfirmDeliveryInput{DeliveryCode: "042137"})
		assertHTTPError(t, err, http.StatusForbidden, "forbidden")

		tx.repos.orders.AssertNotCalled(t, "ConfirmDelivery", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestConfirmDelivery_NotShippedYet(t *testing.T) {
	tx := newFakeTxManager()
	o := shippedOrder()
	o.Status = model.OrderStatusPending
	tx.repos.orders.On("FindByID", mock.Anything, int64(55)).Return(o, nil)

	uc := newDeliveryUC(tx)

	_, err := uc.ConfirmDelivery(context.Background(), vendorActor(10), 55, ConfirmDeliveryInput{DeliveryCode: "042137"})
	assertHTTPError(t, err, http.StatusConflict, "order is not ready for delivery confirmation")
}

// 照合と消込が単一UPDATEで行われるので、不一致・再提示はok=falseで返る
func TestConfirmDelivery_WrongCode(t *testing.T) {
	tx := newFakeTxManager()
	tx.repos.orders.On("FindByID", mock.Anything, int64(55)).Return(shippedOrder(), nil)
	tx.repos.orders.On("ConfirmDelivery", mock.Anything, int64(55), "000000", testNow).Return(false, nil)

	uc := newDeliveryUC(tx)

	_, err := uc.ConfirmDelivery(context.Background(), vendorActor(10), 55, ConfirmDeliveryInput{DeliveryCode: "000000"})
	assertHTTPError(t, err, http.StatusConflict, "invalid delivery code")

	tx.repos.auditLogs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirmDelivery_Success(t *testing.T) {
	tx := newFakeTxManager()
	tx.repos.orders.On("FindByID", mock.Anything, int64(55)).Return(shippedOrder(), nil).Once()
	tx.repos.orders.On("ConfirmDelivery", mock.Anything, int64(55), "042137", testNow).Return(true, nil)
	tx.repos.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionConfirmDelivery &&
			l.ResourceID == 55 &&
			l.BeforeJSON == `{"status":"SHIPPED"}` &&
			l.AfterJSON == `{"status":"DELIVERED"}`
	})).Return(nil)

	delivered := shippedOrder()
	delivered.Status = model.OrderStatusDelivered
	delivered.DeliveryCode = ""
	tx.repos.orders.On("FindByID", mock.Anything, int64(55)).Return(delivered, nil)
	tx.repos.orderItems.On("ListByOrderID", mock.Anything, int64(55)).Return([]model.OrderItem{}, nil)

	uc := newDeliveryUC(tx)

	out, err := uc.ConfirmDelivery(context.Background(), vendorActor(10), 55, ConfirmDeliveryInput{DeliveryCode: "042137"})
	assert.NoError(t, err)
	assert.Equal(t, "DELIVERED", out.Status)

	tx.repos.auditLogs.AssertExpectations(t)
}

// コードは正規化しない。空白混じりはそのまま不一致として弾く。
func TestConfirmDelivery_DoesNotNormalizeCode(t *testing.T) {
	tx := newFakeTxManager()

	uc := newDeliveryUC(tx)

	_, err := uc.ConfirmDelivery(context.Background(), vendorActor(10), 55, ConfirmDeliveryInput{DeliveryCode: " 042137 "})
	assertHTTPError(t, err, http.StatusBadRequest, "delivery_code must be 6 digits")

	tx.repos.orders.AssertNotCalled(t, "ConfirmDelivery", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
