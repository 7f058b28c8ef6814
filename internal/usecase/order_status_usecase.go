package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// OrderStatusUsecaseは出店者・管理者による注文ステータス更新を扱う。
// 遷移の可否は遷移表、操作の可否はActorに集約し、ここでは組み立てだけ行う。
type OrderStatusUsecase struct {
	tx        repo.TransactionManager
	storeRepo repo.StoreRepository
	clock     Clock
}

func NewOrderStatusUsecase(tx repo.TransactionManager, storeRepo repo.StoreRepository, clock Clock) *OrderStatusUsecase {
	return &OrderStatusUsecase{tx: tx, storeRepo: storeRepo, clock: clock}
}

// リクエストのユーザーからActorを作る。
// VENDORなのにストア未作成の場合はStoreID=0のままにして権限判定で落とす。
func (u *OrderStatusUsecase) ResolveActor(ctx context.Context, userID int64, role model.Role) (model.Actor, error) {
	a := model.Actor{UserID: userID, Role: role}
	if role != model.RoleVendor {
		return a, nil
	}

	s, err := u.storeRepo.FindByVendorUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return a, nil
	}
	if err != nil {
		return model.Actor{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	a.StoreID = s.ID
	return a, nil
}

type UpdateOrderStatusInput struct {
	Status string `json:"status"`
}

func (u *OrderStatusUsecase) UpdateStatus(ctx context.Context, actor model.Actor, orderID int64, in UpdateOrderStatusInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	next := model.OrderStatus(in.Status)
	if !model.IsValidOrderStatus(next) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !actor.CanManageOrder(o) {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if !model.CanTransition(o.Status, next) {
			return NewHTTPError(http.StatusConflict,
				fmt.Sprintf("cannot transition order from %s to %s", o.Status, next))
		}

		before := o.Status
		now := u.clock.Now()

		if next == model.OrderStatusDelivered {
			// 手動のDELIVERED。delivery_codeは消さない（OTP確認とは別経路）。
			if err := r.Orders().MarkDelivered(ctx, orderID, now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		// キャンセルは在庫を戻す
		if next == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		beforeJSON, _ := json.Marshal(map[string]string{"status": string(before)})
		afterJSON, _ := json.Marshal(map[string]string{"status": string(next)})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err = r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
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

// 出店者の自ストア注文一覧
func (u *OrderStatusUsecase) ListStoreOrders(ctx context.Context, actor model.Actor, page int, limit int) ([]OrderOutput, int64, error) {
	if actor.Role != model.RoleVendor || actor.StoreID == 0 {
		return nil, 0, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListByStoreID(ctx, actor.StoreID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = n

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
		return nil, 0, err
	}
	return outs, total, nil
}

// 管理者用の注文一覧（全ストア横断・絞り込みつき）
func (u *OrderStatusUsecase) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Status != "" && !model.IsValidOrderStatus(model.OrderStatus(f.Status)) {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		total = n

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
		return nil, 0, err
	}
	return outs, total, nil
}
