package repository

import (
	"context"
	"errors"
	"time"

	"cafe/internal/domain/model"
	repo "cafe/internal/repository"

	"gorm.io/gorm"
)

// 明細が1件もない
const noItemsCond = "NOT EXISTS (SELECT 1 FROM order_items WHERE order_items.order_id = orders.id)"

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

// プロフィールが無い注文も出す（LEFT JOIN）
func (r *OrderGormRepository) ListAll(ctx context.Context) ([]repo.OrderWithProfile, error) {
	var rows []repo.OrderWithProfile
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.*, profiles.name AS profile_name").
		Joins("LEFT JOIN profiles ON profiles.id = orders.user_id").
		Order("orders.created_at desc").
		Scan(&rows).Error
	if err != nil {
		return []repo.OrderWithProfile{}, err
	}
	return rows, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (string, error) {
	if order.ID == "" {
		order.ID = newID()
	}
	if order.Status == "" {
		order.Status = model.OrderStatusNew
	}
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return "", err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListWithoutItems(ctx context.Context, createdBefore time.Time) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("created_at < ?", createdBefore).
		Where(noItemsCond).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

// 削除した時だけtrue（間に明細が入った場合は消さない）
func (r *OrderGormRepository) DeleteIfNoItems(ctx context.Context, orderID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		Where(noItemsCond).
		Delete(&model.Order{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
