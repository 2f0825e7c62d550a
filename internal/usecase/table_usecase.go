package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/invalidation"
	repo "cafe/internal/repository"
)

// 管理者の席管理
type TableUsecase struct {
	tables repo.TableRepository
	bus    invalidation.Publisher
}

func NewTableUsecase(tables repo.TableRepository, bus invalidation.Publisher) *TableUsecase {
	if bus == nil {
		bus = invalidation.Nop{}
	}
	return &TableUsecase{tables: tables, bus: bus}
}

// 古い順
func (u *TableUsecase) AdminList(ctx context.Context) ([]model.CafeTable, error) {
	ts, err := u.tables.ListAll(ctx)
	if err != nil {
		return []model.CafeTable{}, wrapError(ErrInternal, "db error", err)
	}
	return ts, nil
}

func (u *TableUsecase) AdminCreate(ctx context.Context, name string) (model.CafeTable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.CafeTable{}, newError(ErrValidation, "name required")
	}
	t, err := u.tables.Create(ctx, model.CafeTable{Name: name, IsActive: true, CreatedAt: time.Now()})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.CafeTable{}, newError(ErrConflict, "table name already exists")
	}
	if err != nil {
		return model.CafeTable{}, wrapError(ErrInternal, "db error", err)
	}
	u.bus.Publish(ctx, invalidation.KeyCafeTables, invalidation.KeyActiveCafeTables)
	return t, nil
}

func (u *TableUsecase) AdminDelete(ctx context.Context, tableID string) error {
	if strings.TrimSpace(tableID) == "" {
		return newError(ErrValidation, "invalid id")
	}
	if err := u.tables.Delete(ctx, tableID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		return wrapError(ErrInternal, "db error", err)
	}
	u.bus.Publish(ctx, invalidation.KeyCafeTables, invalidation.KeyActiveCafeTables)
	return nil
}
