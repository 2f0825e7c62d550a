package repository

import (
	"cafe/internal/domain/model"
	"context"
)

// 席の保存・取得。削除は物理削除。
type TableRepository interface {
	//有効な席だけ、名前順
	ListActive(ctx context.Context) ([]model.CafeTable, error)
	//全件、古い順
	ListAll(ctx context.Context) ([]model.CafeTable, error)
	FindActiveByID(ctx context.Context, id string) (model.CafeTable, error)
	Create(ctx context.Context, t model.CafeTable) (model.CafeTable, error)
	Delete(ctx context.Context, id string) error
}
