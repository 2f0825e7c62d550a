package repository

import (
	"context"

	"cafe/internal/domain/model"
)

// 明細は作成と参照だけ（更新・削除は無い）。
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItemDetail, error)
}
