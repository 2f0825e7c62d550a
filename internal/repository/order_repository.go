package repository

import (
	"context"
	"time"

	"cafe/internal/domain/model"
)

// 管理画面の一覧用（プロフィール名つき）
type OrderWithProfile struct {
	model.Order
	ProfileName *string `json:"profile_name"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	// 本人の注文、新しい順
	ListByUserID(ctx context.Context, userID string) ([]model.Order, error)
	// 管理者用の注文一覧、新しい順
	ListAll(ctx context.Context) ([]OrderWithProfile, error)
	Create(ctx context.Context, order model.Order) (string, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error

	// 明細が1件もないヘッダ（createdBeforeより前のもの）
	ListWithoutItems(ctx context.Context, createdBefore time.Time) ([]model.Order, error)
	// ヘッダ削除（明細が無いものだけ）
	DeleteIfNoItems(ctx context.Context, orderID string) (bool, error)
}
