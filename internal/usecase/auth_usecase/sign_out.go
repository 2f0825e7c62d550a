package auth

import (
	"context"

	"cafe/internal/repository"
)

// サインアウト時にサーバー側のセッション（カート）を捨てる
type SessionEnder interface {
	End(userID string)
}

type SignOutOutput struct {
	TokenVersion int `json:"token_version"`
}

type SignOutUsecase struct {
	userRepo repository.UserRepository
	sessions SessionEnder
}

func NewSignOutUsecase(userRepo repository.UserRepository, sessions SessionEnder) *SignOutUsecase {
	return &SignOutUsecase{userRepo: userRepo, sessions: sessions}
}

// token_versionを上げて既存トークンを無効にする
func (u *SignOutUsecase) Execute(ctx context.Context, userID string) (SignOutOutput, error) {
	tv, err := u.userRepo.IncrementTokenVersion(ctx, userID)
	if err != nil {
		return SignOutOutput{}, err
	}
	if u.sessions != nil {
		u.sessions.End(userID)
	}
	return SignOutOutput{TokenVersion: tv}, nil
}
