package repository

import (
	"context"

	"cafe/internal/domain/model"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

// 1回のINSERTでまとめて書く
func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]model.OrderItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].OrderID = orderID
		if rows[i].ID == "" {
			rows[i].ID = newID()
		}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// 商品が削除済みでも明細は出す（名前は空）
func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItemDetail, error) {
	var items []model.OrderItemDetail
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.*, COALESCE(coffee_products.name, '') AS product_name").
		Joins("LEFT JOIN coffee_products ON coffee_products.id = order_items.coffee_id").
		Where("order_items.order_id = ?", orderID).
		Order("order_items.created_at asc").
		Scan(&items).Error
	if err != nil {
		return []model.OrderItemDetail{}, err
	}
	if items == nil {
		items = []model.OrderItemDetail{}
	}
	return items, nil
}
