package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

// 選択できるステータスの一覧（画面の選択肢と同じ）。
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusNew,
		OrderStatusProcessing,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// ParseOrderStatusは4つの値のどれかだけを受け付ける。
// 遷移元のチェックはしない。
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.TrimSpace(s)); st {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return st, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// 表示用。終端でも再変更はできる。
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// 注文ヘッダ。
// total_priceは注文時に計算した値で、後から明細で再計算しない。
type Order struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	TableNumber string          `gorm:"type:varchar(100);column:table_number" json:"table_number"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
}
