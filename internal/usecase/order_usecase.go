package usecase

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 注文確定の通知（メール等）。失敗しても注文は巻き戻さない。
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, userID int64, order model.Order, items []model.OrderItem) error
}

// OrderUsecaseはカートを不変の注文スナップショットへ確定させる。
// 在庫減算・クーポン確定・カートクリアは1つのトランザクションで行い、
// どこかで失敗したら全部巻き戻す。
type OrderUsecase struct {
	tx       repo.TransactionManager
	idGen    IDGenerator
	codeGen  DeliveryCodeGenerator
	clock    Clock
	notifier OrderNotifier
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	idGen IDGenerator,
	codeGen DeliveryCodeGenerator,
	clock Clock,
	notifier OrderNotifier,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		idGen:    idGen,
		codeGen:  codeGen,
		clock:    clock,
		notifier: notifier,
	}
}

type ShippingAddressInput struct {
	HouseNo  string `json:"house_no"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	State    string `json:"state"`
	PinCode  string `json:"pin_code"`
}

type PlaceOrderInput struct {
	ShippingAddress ShippingAddressInput
	PaymentMethod   string
	CouponCode      string
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Unit      string `json:"unit"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID              int64                 `json:"id"`
	UserID          int64                 `json:"user_id"`
	StoreID         int64                 `json:"store_id"`
	Status          string                `json:"status"`
	PaymentMethod   string                `json:"payment_method"`
	TransactionID   string                `json:"transaction_id,omitempty"`
	TotalPrice      int64                 `json:"total_price"`
	DeliveryCode    string                `json:"delivery_code,omitempty"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	ShippingAddress model.ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time             `json:"created_at"`
	Items           []OrderItemOutput     `json:"items"`
}

func (in ShippingAddressInput) validate() error {
	if strings.TrimSpace(in.HouseNo) == "" {
		return NewHTTPError(http.StatusBadRequest, "house_no required")
	}
	if strings.TrimSpace(in.City) == "" {
		return NewHTTPError(http.StatusBadRequest, "city required")
	}
	if strings.TrimSpace(in.State) == "" {
		return NewHTTPError(http.StatusBadRequest, "state required")
	}
	if strings.TrimSpace(in.PinCode) == "" {
		return NewHTTPError(http.StatusBadRequest, "pin_code required")
	}
	return nil
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.ShippingAddress.validate(); err != nil {
		return OrderOutput{}, err
	}
	method := model.PaymentMethod(in.PaymentMethod)
	if !model.IsValidPaymentMethod(method) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	var out OrderOutput
	var created model.Order
	var createdItems []model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カート取得
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		//現在の商品を読み直してチェック（カートに入れた時点の値は信用しない）
		products := make(map[int64]model.Product, len(cartItems))
		storeID := int64(0)
		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("product %s is no longer available", p.Name))
			}
			if p.Stock < ci.Quantity {
				return NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient stock for %s: %d available", p.Name, p.Stock))
			}

			//1注文1ストア。混在はどの在庫も減らす前に拒否する。
			if storeID == 0 {
				storeID = p.StoreID
			} else if storeID != p.StoreID {
				return NewHTTPError(http.StatusConflict, "order items must belong to a single store")
			}

			products[ci.ProductID] = p
		}

		//合計は確定時点の商品価格で計算する。カート追加時の価格は参考値でしかない。
		var total int64 = 0
		for _, ci := range cartItems {
			total += products[ci.ProductID].Price * ci.Quantity
		}

		//クーポンは確定時の合計でもう一度判定する
		var coupon *model.Coupon
		if strings.TrimSpace(in.CouponCode) != "" {
			c, amount, err := validateCoupon(ctx, r.Coupons(), r.Orders(), userID, strings.TrimSpace(in.CouponCode), total, u.clock.Now())
			if err != nil {
				return err
			}
			total -= amount
			coupon = &c
		}

		//在庫減算。条件付きUPDATEなので競合しても売り越さない。
		//途中で失敗したらトランザクションごと巻き戻る。
		for _, ci := range cartItems {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				p := products[ci.ProductID]
				return NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient stock for %s: %d available", p.Name, p.Stock))
			}
		}

		//配達確認コード（6桁・ゼロ埋め）
		code, err := u.codeGen.NewCode()
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		//COD以外は決済トランザクションIDを払い出す（決済処理自体は外部）
		txnID := ""
		if method != model.PaymentMethodCashOnDelivery {
			txnID = u.idGen.NewID()
		}

		now := u.clock.Now()
		order := model.Order{
			UserID:  userID,
			StoreID: storeID,
			ShippingAddress: model.ShippingAddress{
				HouseNo:  strings.TrimSpace(in.ShippingAddress.HouseNo),
				Landmark: strings.TrimSpace(in.ShippingAddress.Landmark),
				City:     strings.TrimSpace(in.ShippingAddress.City),
				State:    strings.TrimSpace(in.ShippingAddress.State),
				PinCode:  strings.TrimSpace(in.ShippingAddress.PinCode),
			},
			PaymentMethod: method,
			TransactionID: txnID,
			TotalPrice:    total,
			Status:        model.OrderStatusPending,
			DeliveryCode:  code,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.ID = orderID

		//明細は確定時点の商品からスナップショットを切る。以後の商品編集の影響を受けない。
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			p := products[ci.ProductID]
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				ImageSnapshot:       p.Image,
				UnitSnapshot:        p.Unit,
				UnitPriceSnapshot:   p.Price,
				Quantity:            ci.Quantity,
				CreatedAt:           now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートをクリア
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//クーポンの利用確定。上限競合で負けたらここで注文ごと失敗させる。
		if coupon != nil {
			if err := r.Coupons().Redeem(ctx, coupon.ID, userID); err != nil {
				if err == repo.ErrCouponExhausted {
					return NewHTTPError(http.StatusConflict, "coupon usage limit reached")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		created = order
		createdItems = orderItems
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//確定後の通知は投げっぱなし。失敗はログだけ残す。
	go func(o model.Order, items []model.OrderItem) {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := u.notifier.OrderPlaced(nctx, o.UserID, o, items); err != nil {
			log.Printf("order notification failed for order %d: %v", o.ID, err)
		}
	}(created, createdItems)

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Image:     it.ImageSnapshot,
			Price:     it.UnitPriceSnapshot,
			Unit:      it.UnitSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		StoreID:         o.StoreID,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		TransactionID:   o.TransactionID,
		TotalPrice:      o.TotalPrice,
		DeliveryCode:    o.DeliveryCode,
		DeliveredAt:     o.DeliveredAt,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
