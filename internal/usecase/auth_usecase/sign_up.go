package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"cafe/internal/domain/model"
	"cafe/internal/repository"
)

// サインアップの入力
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

type SignUpOutput struct {
	User UserDTO `json:"user"`
}

// パスワード最低文字数
const minPasswordLen = 8

// SignUpUsecaseは資格情報とプロフィール（role=user）を作る。
type SignUpUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewSignUpUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *SignUpUsecase {
	return &SignUpUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
	}
}

func (u *SignUpUsecase) Execute(ctx context.Context, in SignUpInput) (SignUpOutput, error) {
	var out SignUpOutput

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !isValidEmailFormat(email) {
		return out, ErrInvalidEmailFormat
	}
	if len(in.Password) < minPasswordLen {
		return out, ErrPasswordTooShort
	}
	if isWeakPassword(in.Password) {
		return out, ErrWeakPassword
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return out, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        email,
		PasswordHash: hashed,
		TokenVersion: 0,
		CreatedAt:    now,
	}
	profile := &model.Profile{
		Role:      model.RoleUser,
		CreatedAt: now,
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		profile.Name = &name
	}

	// 同時登録の競合は一意制約で弾く
	if err := u.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	out.User = UserDTO{ID: user.ID, Email: user.Email}
	return out, nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// よくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":    {},
		"password123": {},
		"12345678":    {},
		"123456789":   {},
		"1234567890":  {},
		"qwertyuiop":  {},
		"letmein123":  {},
		"coffee123":   {},
	}

	_, ok := weak[normalized]
	return ok
}
