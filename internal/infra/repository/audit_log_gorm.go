package repository

import (
	"context"

	"cafe/internal/domain/model"
	repo "cafe/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

// 新しい順。limitは1〜200（0なら50）
func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	eq := map[string]*string{
		"actor_user_id": f.ActorUserID,
		"resource_id":   f.ResourceID,
	}
	for col, v := range eq {
		if v != nil {
			q = q.Where(col+" = ?", *v)
		}
	}
	if f.Action != nil {
		q = q.Where("action = ?", string(*f.Action))
	}
	if f.ResourceType != nil {
		q = q.Where("resource_type = ?", string(*f.ResourceType))
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	logs := []model.AuditLog{}
	err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, err
}
