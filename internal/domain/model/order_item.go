package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。作成後は変更・削除しない。
// unit_priceは注文時点の価格。
type OrderItem struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string          `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID string          `gorm:"type:uuid;not null;index;column:coffee_id" json:"coffee_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

// 明細＋商品名（詳細表示用）。
type OrderItemDetail struct {
	OrderItem
	ProductName string `json:"product_name"`
}
