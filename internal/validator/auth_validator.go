package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// idがUUIDでない
	ErrInvalidID = errors.New("invalid id")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// サインインの入力を検証（DBに行く前の形式チェックだけ）
func ValidateSignIn(email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return ErrInvalidInput
	}
	return nil
}

// パスパラメータのIDを検証（postgresのuuid列にそのまま渡すため）
func ValidateID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return ErrInvalidID
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
