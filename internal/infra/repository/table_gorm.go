package repository

import (
	"context"
	"errors"

	"cafe/internal/domain/model"
	repo "cafe/internal/repository"

	"gorm.io/gorm"
)

type TableGormRepository struct {
	db *gorm.DB
}

func NewTableGormRepository(db *gorm.DB) *TableGormRepository {
	return &TableGormRepository{db: db}
}

func (r *TableGormRepository) ListActive(ctx context.Context) ([]model.CafeTable, error) {
	var tables []model.CafeTable
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&tables).Error
	if err != nil {
		return []model.CafeTable{}, err
	}
	return tables, nil
}

func (r *TableGormRepository) ListAll(ctx context.Context) ([]model.CafeTable, error) {
	var tables []model.CafeTable
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&tables).Error; err != nil {
		return []model.CafeTable{}, err
	}
	return tables, nil
}

func (r *TableGormRepository) FindActiveByID(ctx context.Context, id string) (model.CafeTable, error) {
	var t model.CafeTable
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CafeTable{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CafeTable{}, err
	}
	return t, nil
}

func (r *TableGormRepository) Create(ctx context.Context, t model.CafeTable) (model.CafeTable, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if err := r.db.WithContext(ctx).Select("*").Create(&t).Error; err != nil {
		if isDuplicate(err) {
			return model.CafeTable{}, repo.ErrDuplicate
		}
		return model.CafeTable{}, err
	}
	return t, nil
}

// 物理削除（注文側は名前のコピーなので影響しない）
func (r *TableGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CafeTable{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
