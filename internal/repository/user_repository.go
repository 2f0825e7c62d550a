package repository

import (
	"cafe/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 資格情報の保存・取得を約束
type UserRepository interface {
	// ユーザーとプロフィールを同時に作成（登録後の副作用）
	CreateWithProfile(ctx context.Context, user *model.User, profile *model.Profile) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//トークンのバージョンを＋１（サインアウト）
	IncrementTokenVersion(ctx context.Context, userID string) (int, error)
}

// プロフィール（ロール）の保存・取得
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (model.Profile, error)
	// 新しい順
	List(ctx context.Context) ([]model.Profile, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
}
