package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(ctx context.Context, userID int64, order model.Order, items []model.OrderItem) error {
	return nil
}

func newOrderUC(tx *fakeTxManager) *OrderUsecase {
	return NewOrderUsecase(
		tx,
		fixedIDGen{id: "txn-0001"},
		fixedCodeGen{code: "042137"},
		fixedClock{t: testNow},
		noopNotifier{},
	)
}

func validAddress() ShippingAddressInput {
	return ShippingAddressInput{
		HouseNo: "12-3",
		City:    "Shibuya",
		State:   "Tokyo",
		PinCode: "150-0002",
	}
}

func seedCart(tx *fakeTxManager, items []model.CartItem) {
	tx.repos.carts.On("FindByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 3, UserID: 7}, nil)
	tx.repos.cartItems.On("ListByCartID", mock.Anything, int64(3)).Return(items, nil)
}

func TestPlaceOrder_InvalidPaymentMethod(t *testing.T) {
	uc := newOrderUC(newFakeTxManager())

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "BARTER",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid payment_method")
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{})

	uc := newOrderUC(tx)

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "CASH_ON_DELIVERY",
	})
	assertHTTPError(t, err, http.StatusBadRequest, "cart is empty")
}

// 別ストアの商品が混ざっていたら、どの在庫にも触れる前に409
func TestPlaceOrder_RejectsMixedStores(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{
		{CartID: 3, ProductID: 1, Quantity: 1, UnitPriceSnapshot: 100},
		{CartID: 3, ProductID: 2, Quantity: 1, UnitPriceSnapshot: 200},
	})
	tx.repos.products.On("FindByID", mock.Anything, int64(1)).Return(
		model.Product{ID: 1, StoreID: 10, Stock: 5, IsActive: true}, nil)
	tx.repos.products.On("FindByID", mock.Anything, int64(2)).Return(
		model.Product{ID: 2, StoreID: 20, Stock: 5, IsActive: true}, nil)

	uc := newOrderUC(tx)

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "UPI",
	})
	assertHTTPError(t, err, http.StatusConflict, "single store")

	tx.repos.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	tx.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 事前チェック時点で在庫不足なら商品名と現在庫を伝えて409
func TestPlaceOrder_InsufficientStockOnPrecheck(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{
		{CartID: 3, ProductID: 1, Quantity: 3, UnitPriceSnapshot: 100},
	})
	tx.repos.products.On("FindByID", mock.Anything, int64(1)).Return(
		model.Product{ID: 1, Name: "Arabica Beans", StoreID: 10, Stock: 2, IsActive: true}, nil)

	uc := newOrderUC(tx)

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "UPI",
	})
	assertHTTPError(t, err, http.StatusConflict, "insufficient stock for Arabica Beans: 2 available")
}

// 条件付きUPDATEで負けたら（同時注文に先を越されたら）409で全体が失敗する
func TestPlaceOrder_InsufficientStockOnDecrement(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{
		{CartID: 3, ProductID: 1, Quantity: 2, UnitPriceSnapshot: 100},
	})
	tx.repos.products.On("FindByID", mock.Anything, int64(1)).Return(
		model.Product{ID: 1, Name: "Arabica Beans", StoreID: 10, Stock: 2, IsActive: true}, nil)
	tx.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(false, nil)

	uc := newOrderUC(tx)

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "UPI",
	})
	assertHTTPError(t, err, http.StatusConflict, "insufficient stock")

	tx.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_Success_COD(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{
		{CartID: 3, ProductID: 1, Quantity: 2, NameSnapshot: "Arabica Beans", UnitSnapshot: "kg", UnitPriceSnapshot: 1200},
		{CartID: 3, ProductID: 2, Quantity: 1, NameSnapshot: "Grinder", UnitSnapshot: "pc", UnitPriceSnapshot: 4500},
	})
	tx.repos.products.On("FindByID", mock.Anything, int64(1)).Return(
		model.Product{ID: 1, Name: "Arabica Beans", StoreID: 10, Price: 1200, Unit: "kg", Stock: 5, IsActive: true}, nil)
	tx.repos.products.On("FindByID", mock.Anything, int64(2)).Return(
		model.Product{ID: 2, Name: "Grinder", StoreID: 10, Price: 4500, Unit: "pc", Stock: 2, IsActive: true}, nil)

	tx.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	tx.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(2), int64(1)).Return(true, nil)

	tx.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		// CODなのでtransaction_idは空、配達コードは6桁
		return o.UserID == 7 &&
			o.StoreID == 10 &&
			o.Status == model.OrderStatusPending &&
			o.PaymentMethod == model.PaymentMethodCashOnDelivery &&
			o.TransactionID == "" &&
			o.DeliveryCode == "042137" &&
			o.TotalPrice == 2*1200+4500
	})).Return(int64(555), nil)

	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(555), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].ProductNameSnapshot == "Arabica Beans" &&
			items[0].UnitPriceSnapshot == 1200 &&
			items[1].Quantity == 1
	})).Return(nil)

	tx.repos.carts.On("Clear", mock.Anything, int64(3)).Return(nil)

	uc := newOrderUC(tx)

	out, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "CASH_ON_DELIVERY",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(555), out.ID)
	assert.Equal(t, "PENDING", out.Status)
	assert.Equal(t, int64(6900), out.TotalPrice)
	assert.Empty(t, out.TransactionID)
	assert.Len(t, out.Items, 2)

	tx.repos.orders.AssertExpectations(t)
	tx.repos.orderItems.AssertExpectations(t)
	tx.repos.carts.AssertExpectations(t)
}

// 明細と合計は確定時点の商品値を使う。カート追加後に出店者が
// 価格や名前を変えていても、注文は現在の値で切り直される。
func TestPlaceOrder_SnapshotsCurrentProductValues(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{
		{CartID: 3, ProductID: 1, Quantity: 1, NameSnapshot: "Old Beans", UnitSnapshot: "pc", UnitPriceSnapshot: 100},
	})
	tx.repos.products.On("FindByID", mock.Anything, int64(1)).Return(
		model.Product{ID: 1, Name: "Arabica Beans", Image: "beans.jpg", StoreID: 10, Price: 999, Unit: "kg", Stock: 5, IsActive: true}, nil)

	tx.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)

	tx.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalPrice == 999
	})).Return(int64(558), nil)

	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(558), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 &&
			items[0].ProductNameSnapshot == "Arabica Beans" &&
			items[0].ImageSnapshot == "beans.jpg" &&
			items[0].UnitSnapshot == "kg" &&
			items[0].UnitPriceSnapshot == 999
	})).Return(nil)

	tx.repos.carts.On("Clear", mock.Anything, int64(3)).Return(nil)

	uc := newOrderUC(tx)

	out, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "CASH_ON_DELIVERY",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(999), out.TotalPrice)
	assert.Equal(t, "Arabica Beans", out.Items[0].Name)
	assert.Equal(t, int64(999), out.Items[0].Price)

	tx.repos.orders.AssertExpectations(t)
	tx.repos.orderItems.AssertExpectations(t)
}

// クーポン付き注文：割引後の合計で作成し、Redeemまで行う
func TestPlaceOrder_WithCoupon(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{
		{CartID: 3, ProductID: 1, Quantity: 1, NameSnapshot: "Grinder", UnitPriceSnapshot: 10000},
	})
	tx.repos.products.On("FindByID", mock.Anything, int64(1)).Return(
		model.Product{ID: 1, Name: "Grinder", StoreID: 10, Price: 10000, Stock: 5, IsActive: true}, nil)

	cap := int64(100)
	tx.repos.coupons.On("FindByCode", mock.Anything, "SAVE20").Return(model.Coupon{
		ID:                9,
		Code:              "SAVE20",
		DiscountType:      model.DiscountTypePercentage,
		DiscountValue:     20,
		MaxDiscountAmount: &cap,
		ExpiresAt:         testNow.Add(time.Hour),
		IsActive:          true,
	}, nil)
	tx.repos.coupons.On("HasRedemption", mock.Anything, int64(9), int64(7)).Return(false, nil)

	tx.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)

	tx.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		// 10000 - min(2000, 100) = 9900。COD以外はtransaction_idが入る。
		return o.TotalPrice == 9900 && o.TransactionID == "txn-0001"
	})).Return(int64(556), nil)
	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(556), mock.Anything).Return(nil)
	tx.repos.carts.On("Clear", mock.Anything, int64(3)).Return(nil)
	tx.repos.coupons.On("Redeem", mock.Anything, int64(9), int64(7)).Return(nil)

	uc := newOrderUC(tx)

	out, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "CREDIT_CARD",
		CouponCode:      "SAVE20",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(9900), out.TotalPrice)

	tx.repos.coupons.AssertExpectations(t)
}

// Redeemで上限競合に負けたら注文ごと失敗（カートも在庫も巻き戻る想定）
func TestPlaceOrder_CouponExhaustedAtCommit(t *testing.T) {
	tx := newFakeTxManager()
	seedCart(tx, []model.CartItem{
		{CartID: 3, ProductID: 1, Quantity: 1, UnitPriceSnapshot: 10000},
	})
	tx.repos.products.On("FindByID", mock.Anything, int64(1)).Return(
		model.Product{ID: 1, StoreID: 10, Price: 10000, Stock: 5, IsActive: true}, nil)

	limit := int64(1)
	tx.repos.coupons.On("FindByCode", mock.Anything, "LAST1").Return(model.Coupon{
		ID:            9,
		Code:          "LAST1",
		DiscountType:  model.DiscountTypeFixed,
		DiscountValue: 500,
		UsageLimit:    &limit,
		UsedCount:     0,
		ExpiresAt:     testNow.Add(time.Hour),
		IsActive:      true,
	}, nil)
	tx.repos.coupons.On("HasRedemption", mock.Anything, int64(9), int64(7)).Return(false, nil)

	tx.repos.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)
	tx.repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(557), nil)
	tx.repos.orderItems.On("CreateBulk", mock.Anything, int64(557), mock.Anything).Return(nil)
	tx.repos.carts.On("Clear", mock.Anything, int64(3)).Return(nil)

	// 同時に使われて上限に達していた
	tx.repos.coupons.On("Redeem", mock.Anything, int64(9), int64(7)).Return(repo.ErrCouponExhausted)

	uc := newOrderUC(tx)

	_, err := uc.PlaceOrder(context.Background(), 7, PlaceOrderInput{
		ShippingAddress: validAddress(),
		PaymentMethod:   "UPI",
		CouponCode:      "LAST1",
	})
	assertHTTPError(t, err, http.StatusConflict, "usage limit")
}

func TestGetMyOrderDetail_OthersOrderLooksLikeNotFound(t *testing.T) {
	tx := newFakeTxManager()
	tx.repos.orders.On("FindByID", mock.Anything, int64(55)).Return(model.Order{ID: 55, UserID: 99}, nil)

	uc := newOrderUC(tx)

	_, err := uc.GetMyOrderDetail(context.Background(), 7, 55)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
}
