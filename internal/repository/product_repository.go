package repository

import (
	"cafe/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反（名前の重複など）
var ErrDuplicate = errors.New("duplicate")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 客向け：is_available=trueだけ、新しい順
	ListAvailable(ctx context.Context) ([]model.Product, error)
	// 管理向け：全件、新しい順
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
}
