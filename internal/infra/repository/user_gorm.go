package repository

import (
	"context"
	"errors"

	"cafe/internal/domain/model"
	domainrepo "cafe/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// ユーザーとプロフィールを同じTxで作る
func (r *userGormRepository) CreateWithProfile(ctx context.Context, user *model.User, profile *model.Profile) error {
	if user.ID == "" {
		user.ID = newID()
	}
	profile.ID = user.ID
	if profile.Role == "" {
		profile.Role = model.RoleUser
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	})
	if isDuplicate(err) {
		return domainrepo.ErrDuplicate
	}
	return err
}

// emailでユーザーを1件取得
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// token_versionを+1して新しい値を返す
func (r *userGormRepository) IncrementTokenVersion(ctx context.Context, id string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ?", id).
			UpdateColumn("token_version", gorm.Expr("token_version + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		// 0件更新は「対象がない」
		if res.RowsAffected == 0 {
			return domainrepo.ErrUserNotFound
		}
		var u model.User
		if err := tx.Select("token_version").Where("id = ?", id).First(&u).Error; err != nil {
			return err
		}
		next = u.TokenVersion
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
