package auth

import (
	"context"
	"errors"
	"strings"

	"cafe/internal/repository"
)

type SignInInput struct {
	Email    string
	Password string
}

type SignInOutput struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type SignInUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewSignInUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *SignInUsecase {
	return &SignInUsecase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// サインインしてセッショントークンを返す
func (u *SignInUsecase) Execute(ctx context.Context, in SignInInput) (SignInOutput, error) {
	var out SignInOutput

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return out, ErrInvalidCredentials
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrInvalidCredentials
		}
		return out, err
	}

	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, ErrInvalidCredentials
	}

	now := u.clock.Now()
	token, exp, err := u.issuer.Issue(user.ID, user.Email, user.TokenVersion, now)
	if err != nil {
		return out, err
	}

	out.User = UserDTO{ID: user.ID, Email: user.Email}
	out.Token = JwtAccessToken{
		AccessToken:  token,
		ExpiresIn:    int(exp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	return out, nil
}
