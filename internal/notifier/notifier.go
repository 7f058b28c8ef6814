package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"marketplace/internal/domain/model"
)

// 注文確定通知の送信先。WebhookURLが空ならログ出力のみ。
type OrderNotifier struct {
	webhookURL string
	client     *http.Client
}

func New(webhookURL string) *OrderNotifier {
	return &OrderNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type orderPlacedPayload struct {
	Event      string    `json:"event"`
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	StoreID    int64     `json:"store_id"`
	TotalPrice int64     `json:"total_price"`
	ItemCount  int       `json:"item_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func (n *OrderNotifier) OrderPlaced(ctx context.Context, userID int64, order model.Order, items []model.OrderItem) error {
	payload := orderPlacedPayload{
		Event:      "order.placed",
		OrderID:    order.ID,
		UserID:     userID,
		StoreID:    order.StoreID,
		TotalPrice: order.TotalPrice,
		ItemCount:  len(items),
		CreatedAt:  order.CreatedAt,
	}

	if n.webhookURL == "" {
		log.Printf("order placed: order=%d user=%d store=%d total=%d items=%d",
			order.ID, userID, order.StoreID, order.TotalPrice, len(items))
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
