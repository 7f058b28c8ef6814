package usecase

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// 共有テスト部品
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDGen struct{ id string }

func (g fixedIDGen) NewID() string { return g.id }

type fixedCodeGen struct {
	code string
	err  error
}

func (g fixedCodeGen) NewCode() (string, error) { return g.code, g.err }

// HTTPErrorのstatusとメッセージを確認する
func assertHTTPError(t *testing.T, err error, status int, contains string) {
	t.Helper()
	if assert.Error(t, err) {
		he, ok := AsHTTPError(err)
		if assert.True(t, ok, "expected HTTPError, got %v", err) {
			assert.Equal(t, status, he.Status)
			assert.Contains(t, he.Message, contains)
		}
	}
}

// =====================
// repository mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) ListByStoreID(ctx context.Context, storeID int64) ([]model.Product, error) {
	args := m.Called(ctx, storeID)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type StoreRepoMock struct{ mock.Mock }

func (m *StoreRepoMock) FindByID(ctx context.Context, storeID int64) (model.Store, error) {
	args := m.Called(ctx, storeID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *StoreRepoMock) FindByVendorUserID(ctx context.Context, vendorUserID int64) (model.Store, error) {
	args := m.Called(ctx, vendorUserID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *StoreRepoMock) Create(ctx context.Context, s model.Store) (model.Store, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(model.Store)
	return created, args.Error(1)
}

func (m *StoreRepoMock) Update(ctx context.Context, s model.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, productID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpsertAdd(ctx context.Context, cartID int64, productID int64, addQty int64, snap repo.CartItemSnapshot) error {
	args := m.Called(ctx, cartID, productID, addQty, snap)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantityByProduct(ctx context.Context, cartID int64, productID int64, qty int64) error {
	args := m.Called(ctx, cartID, productID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByProduct(ctx context.Context, cartID int64, productID int64) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

type CouponRepoMock struct{ mock.Mock }

func (m *CouponRepoMock) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CouponRepoMock) FindByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	args := m.Called(ctx, couponID)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CouponRepoMock) List(ctx context.Context, q repo.CouponListQuery) ([]model.Coupon, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Coupon)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *CouponRepoMock) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Coupon)
	return created, args.Error(1)
}

func (m *CouponRepoMock) Update(ctx context.Context, c model.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CouponRepoMock) Delete(ctx context.Context, couponID int64) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

func (m *CouponRepoMock) HasRedemption(ctx context.Context, couponID int64, userID int64) (bool, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CouponRepoMock) Redeem(ctx context.Context, couponID int64, userID int64) error {
	args := m.Called(ctx, couponID, userID)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListByStoreID(ctx context.Context, storeID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, storeID, page, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) MarkDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) error {
	args := m.Called(ctx, orderID, deliveredAt)
	return args.Error(0)
}

func (m *OrderRepoMock) ConfirmDelivery(ctx context.Context, orderID int64, code string, deliveredAt time.Time) (bool, error) {
	args := m.Called(ctx, orderID, code, deliveredAt)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

// =====================
// TransactionManager の偽物。
// fnにmock repo一式をそのまま渡す（begin/commitはしない）。
// =====================

type fakeTxRepos struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	cartItems  *CartItemRepoMock
	inventory  *InventoryRepoMock
	products   *ProductRepoMock
	coupons    *CouponRepoMock
	stores     *StoreRepoMock
	auditLogs  *AuditRepoMock
}

func newFakeTxRepos() *fakeTxRepos {
	return &fakeTxRepos{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		cartItems:  new(CartItemRepoMock),
		inventory:  new(InventoryRepoMock),
		products:   new(ProductRepoMock),
		coupons:    new(CouponRepoMock),
		stores:     new(StoreRepoMock),
		auditLogs:  new(AuditRepoMock),
	}
}

func (f *fakeTxRepos) Orders() repo.OrderRepository         { return f.orders }
func (f *fakeTxRepos) OrderItems() repo.OrderItemRepository { return f.orderItems }
func (f *fakeTxRepos) Carts() repo.CartRepository           { return f.carts }
func (f *fakeTxRepos) CartItems() repo.CartItemRepository   { return f.cartItems }
func (f *fakeTxRepos) Inventory() repo.InventoryRepository  { return f.inventory }
func (f *fakeTxRepos) Products() repo.ProductRepository     { return f.products }
func (f *fakeTxRepos) Coupons() repo.CouponRepository       { return f.coupons }
func (f *fakeTxRepos) Stores() repo.StoreRepository         { return f.stores }
func (f *fakeTxRepos) AuditLogs() repo.AuditLogRepository   { return f.auditLogs }

type fakeTxManager struct {
	repos *fakeTxRepos
}

func newFakeTxManager() *fakeTxManager {
	return &fakeTxManager{repos: newFakeTxRepos()}
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}
