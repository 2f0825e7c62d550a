package repository

import (
	"context"
	"errors"

	"cafe/internal/domain/model"
	domainrepo "cafe/internal/repository"

	"gorm.io/gorm"
)

type profileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) domainrepo.ProfileRepository {
	return &profileGormRepository{db: db}
}

func (r *profileGormRepository) FindByID(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Profile{}, domainrepo.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

func (r *profileGormRepository) List(ctx context.Context) ([]model.Profile, error) {
	var ps []model.Profile
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&ps).Error; err != nil {
		return []model.Profile{}, err
	}
	return ps, nil
}

func (r *profileGormRepository) UpdateRole(ctx context.Context, id string, role model.Role) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrNotFound
	}
	return nil
}
