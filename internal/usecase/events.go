package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 注文のドメインイベント
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderOrphanDeleted = "order.orphan_deleted"
)

type OrderEvent struct {
	Type           string          `json:"type"`
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Status         string          `json:"status,omitempty"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	TableNumber    string          `json:"table_number,omitempty"`
	ItemCount      int             `json:"item_count,omitempty"`
	ActorID        string          `json:"actor_id,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// Kafkaなどへ送る約束（keyは注文ID）
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// 送り先が無い時
type NopEventPublisher struct{}

func (NopEventPublisher) PublishEvent(context.Context, string, interface{}) error { return nil }
