package usecase

import (
	"context"
	"errors"

	"cafe/internal/domain/model"
	"cafe/internal/logging"
	repo "cafe/internal/repository"

	"go.uber.org/zap"
)

// プロフィールのroleから管理者かどうかを決める
type RoleResolver struct {
	profiles repo.ProfileRepository
}

func NewRoleResolver(profiles repo.ProfileRepository) *RoleResolver {
	return &RoleResolver{profiles: profiles}
}

// 失敗は全部NotAdmin（エラーは返さない、ログだけ）
func (r *RoleResolver) Resolve(ctx context.Context, userID string) model.RoleState {
	if userID == "" {
		return model.RoleStateNotAdmin
	}
	p, err := r.profiles.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.RoleStateNotAdmin
	}
	if err != nil {
		logging.FromContext(ctx).Warn("role resolution failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return model.RoleStateNotAdmin
	}
	return model.RoleStateOf(p.Role)
}
