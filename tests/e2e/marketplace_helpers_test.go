package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"
)

// =====================
// DTO（レスポンス確認用）
// =====================

type ProductDTO struct {
	ID       int64  `json:"id"`
	StoreID  int64  `json:"store_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Unit     string `json:"unit"`
	Stock    int64  `json:"stock"`
	IsActive bool   `json:"is_active"`
}

type ProductListResponse struct {
	Items []ProductDTO `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type StoreDTO struct {
	ID           int64  `json:"id"`
	VendorUserID int64  `json:"vendor_user_id"`
	Name         string `json:"name"`
	IsActive     bool   `json:"is_active"`
}

type CartItemDTO struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartDTO struct {
	Items []CartItemDTO `json:"items"`
	Total int64         `json:"total"`
}

type OrderItemDTO struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderDTO struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"user_id"`
	StoreID       int64          `json:"store_id"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"payment_method"`
	TransactionID string         `json:"transaction_id"`
	TotalPrice    int64          `json:"total_price"`
	DeliveryCode  string         `json:"delivery_code"`
	Items         []OrderItemDTO `json:"items"`
}

type ShippingAddressReq struct {
	HouseNo  string `json:"house_no"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	State    string `json:"state"`
	PinCode  string `json:"pin_code"`
}

type OrderCreateReq struct {
	ShippingAddress ShippingAddressReq `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	CouponCode      string             `json:"coupon_code"`
}

type CartAddReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type CartPatchReq struct {
	Quantity int64 `json:"quantity"`
}

type ProductCreateReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Unit        string `json:"unit"`
	Stock       int64  `json:"stock"`
	IsActive    bool   `json:"is_active"`
}

type StoreReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type InventoryUpdateReq struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

type StatusUpdateReq struct {
	Status string `json:"status"`
}

type ConfirmDeliveryReq struct {
	DeliveryCode string `json:"delivery_code"`
}

type RegisterReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// =====================
// decode helpers
// =====================

func mustDecodeProductList(t *testing.T, body []byte) ProductListResponse {
	t.Helper()
	var v ProductListResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ProductListResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeProduct(t *testing.T, body []byte) ProductDTO {
	t.Helper()
	var v ProductDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ProductDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeCart(t *testing.T, body []byte) CartDTO {
	t.Helper()
	var v CartDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(CartDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeOrder(t *testing.T, body []byte) OrderDTO {
	t.Helper()
	var v OrderDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(OrderDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

// =====================
// actor helpers
// =====================

// ユニークなメールでユーザーを作ってログインし、access tokenを返す
func registerAndLogin(t *testing.T, c *TestClient, ctx context.Context, prefix string, role string) string {
	t.Helper()

	email := prefix + "_" + time.Now().Format("20060102_150405.000000000") + "@test.com"
	pass := "CorrectPW123!"

	reg := RegisterReq{Email: email, Password: pass, Role: role}
	regJSON, err := json.Marshal(reg)
	if err != nil {
		t.Fatalf("json.Marshal(RegisterReq) failed: %v", err)
	}
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", regJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	loginReq := LoginRequest{Email: email, Password: pass}
	loginJSON, _ := json.Marshal(loginReq)
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", loginJSON)
	requireStatus(t, resp, http.StatusOK, body)

	login := mustDecodeLogin(t, body)
	if strings.TrimSpace(login.Token.AccessToken) == "" {
		t.Fatalf("access token empty: body=%s", string(body))
	}
	return login.Token.AccessToken
}

// 出店者を作り、ストアと商品を1つ用意する。vendorのtokenとproduct_idを返す
func setupVendorWithProduct(t *testing.T, c *TestClient, ctx context.Context, productName string, price int64, stock int64) (string, int64) {
	t.Helper()

	vendorAccess := registerAndLogin(t, c, ctx, "e2e_vendor", "VENDOR")

	storeReq := StoreReq{Name: "E2E Store " + time.Now().Format("150405.000000000"), Description: "e2e"}
	storeJSON, _ := json.Marshal(storeReq)
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/vendor/store", vendorAccess, storeJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	create := ProductCreateReq{
		Name:        productName,
		Description: "e2e product",
		Price:       price,
		Unit:        "pc",
		Stock:       stock,
		IsActive:    true,
	}
	createJSON, _ := json.Marshal(create)
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/vendor/products", vendorAccess, createJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	p := mustDecodeProduct(t, body)
	if p.ID <= 0 {
		t.Fatalf("product id should be > 0: body=%s", string(body))
	}
	return vendorAccess, p.ID
}

func addToCart(t *testing.T, c *TestClient, ctx context.Context, access string, productID int64, qty int64) CartDTO {
	t.Helper()

	req := CartAddReq{ProductID: productID, Quantity: qty}
	reqJSON, _ := json.Marshal(req)
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/cart/items", access, reqJSON)
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecodeCart(t, body)
}

func getCart(t *testing.T, c *TestClient, ctx context.Context, access string) CartDTO {
	t.Helper()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/cart", access, nil)
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecodeCart(t, body)
}

func defaultShippingAddress() ShippingAddressReq {
	return ShippingAddressReq{
		HouseNo: "12-3",
		City:    "Shibuya",
		State:   "Tokyo",
		PinCode: "150-0001",
	}
}

func placeOrder(t *testing.T, c *TestClient, ctx context.Context, access string, couponCode string) OrderDTO {
	t.Helper()

	req := OrderCreateReq{
		ShippingAddress: defaultShippingAddress(),
		PaymentMethod:   "CASH_ON_DELIVERY",
		CouponCode:      couponCode,
	}
	reqJSON, _ := json.Marshal(req)
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/orders", access, reqJSON)
	requireStatus(t, resp, http.StatusCreated, body)
	return mustDecodeOrder(t, body)
}
