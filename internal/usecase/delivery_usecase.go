package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 配達確認（OTP照合）。顧客が受け取り時に提示する6桁コードを
// 出店者が入力し、一致した場合だけDELIVEREDへ進める。
type DeliveryUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewDeliveryUsecase(tx repo.TransactionManager, clock Clock) *DeliveryUsecase {
	return &DeliveryUsecase{tx: tx, clock: clock}
}

type ConfirmDeliveryInput struct {
	DeliveryCode string `json:"delivery_code"`
}

func (u *DeliveryUsecase) ConfirmDelivery(ctx context.Context, actor model.Actor, orderID int64, in ConfirmDeliveryInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	//コードは一切正規化しない。空白などが混じっていればそのまま不一致になる。
	code := in.DeliveryCode
	if len(code) != 6 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "delivery_code must be 6 digits")
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

		if !actor.CanConfirmDelivery(o) {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if !model.CanTransition(o.Status, model.OrderStatusDelivered) {
			return NewHTTPError(http.StatusConflict, "order is not ready for delivery confirmation")
		}

		now := u.clock.Now()

		// 照合と消込を1回のUPDATEで行う。
		// 一度成功するとコードが空になるので、同じコードの再提示は必ず失敗する。
		ok, err := r.Orders().ConfirmDelivery(ctx, orderID, code, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "invalid delivery code")
		}

		beforeJSON, _ := json.Marshal(map[string]string{"status": string(o.Status)})
		afterJSON, _ := json.Marshal(map[string]string{"status": string(model.OrderStatusDelivered)})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionConfirmDelivery,
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
