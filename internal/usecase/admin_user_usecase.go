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

// ロール変更後にセッションのロール判定をやり直す
type RoleRefresher interface {
	RefreshRole(userID string)
}

type AdminUserUsecase struct {
	profiles repo.ProfileRepository
	tx       repo.TransactionManager
	bus      invalidation.Publisher
	roles    RoleRefresher
	now      func() time.Time
}

// ロール変更以外の依存（nilなら何もしない）
type AdminUserOptions struct {
	Bus   invalidation.Publisher
	Roles RoleRefresher
	Clock func() time.Time
}

func NewAdminUserUsecase(
	profiles repo.ProfileRepository,
	tx repo.TransactionManager,
	opts AdminUserOptions,
) *AdminUserUsecase {
	u := &AdminUserUsecase{
		profiles: profiles,
		tx:       tx,
		bus:      opts.Bus,
		roles:    opts.Roles,
		now:      opts.Clock,
	}
	if u.bus == nil {
		u.bus = invalidation.Nop{}
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}

// 新しい順
func (u *AdminUserUsecase) List(ctx context.Context) ([]model.Profile, error) {
	ps, err := u.profiles.List(ctx)
	if err != nil {
		return []model.Profile{}, wrapError(ErrInternal, "db error", err)
	}
	return ps, nil
}

// admin以外の値はすべてuserになる
func (u *AdminUserUsecase) UpdateRole(ctx context.Context, actorID string, userID string, role string) (model.Profile, error) {
	if actorID == "" {
		return model.Profile{}, newError(ErrUnauthenticated, "unauthorized")
	}
	if strings.TrimSpace(userID) == "" {
		return model.Profile{}, newError(ErrValidation, "invalid id")
	}
	next := model.ParseRole(role)

	var p model.Profile
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cur, err := r.Profiles().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return newError(ErrNotFound, "not found")
		}
		if err != nil {
			return wrapError(ErrInternal, "db error", err)
		}
		p = cur

		if err := r.Profiles().UpdateRole(ctx, userID, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return newError(ErrNotFound, "not found")
			}
			return wrapError(ErrInternal, "db error", err)
		}

		// 監査ログ（UPDATE_USER_ROLE）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionUpdateUserRole,
			ResourceType: model.AuditResourceUser,
			ResourceID:   userID,
			BeforeJSON:   `{"role":"` + string(cur.Role) + `"}`,
			AfterJSON:    `{"role":"` + string(next) + `"}`,
			CreatedAt:    u.now(),
		}); err != nil {
			return wrapError(ErrInternal, "db error", err)
		}
		return nil
	})
	if err != nil {
		return model.Profile{}, err
	}

	u.bus.Publish(ctx, invalidation.KeyProfiles)
	if u.roles != nil {
		u.roles.RefreshRole(userID)
	}

	p.Role = next
	return p, nil
}
