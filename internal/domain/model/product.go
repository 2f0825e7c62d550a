package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// メニューの商品。
// is_availableは客側の表示だけを制御する（過去の注文には影響しない）。
type Product struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Category    *string         `gorm:"type:varchar(100)" json:"category"`
	ImageURL    *string         `gorm:"type:text;column:image_url" json:"image_url"`
	IsAvailable bool            `gorm:"not null;default:true;index" json:"is_available"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
}

func (Product) TableName() string { return "coffee_products" }
