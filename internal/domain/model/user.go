package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRoleは文字列からRoleへ変換する。
// admin以外はすべてuser扱い（権限は最小側に倒す）。
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// ロール判定の状態。ゼロ値は「まだ判定中」。
type RoleState int

const (
	RoleStateUnresolved RoleState = iota
	RoleStateAdmin
	RoleStateNotAdmin
)

func (s RoleState) String() string {
	switch s {
	case RoleStateAdmin:
		return "admin"
	case RoleStateNotAdmin:
		return "not-admin"
	default:
		return "unresolved"
	}
}

// RoleStateOfはプロフィールのロールから判定結果を作る。
func RoleStateOf(r Role) RoleState {
	switch r {
	case RoleAdmin:
		return RoleStateAdmin
	case RoleUser:
		return RoleStateNotAdmin
	default:
		return RoleStateNotAdmin
	}
}

// 認証用の資格情報（IDプロバイダ側）。
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	TokenVersion int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

// ユーザーごとに1件。IDはUser.IDと同じ。
// roleが管理画面の唯一の認可シグナル。
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      *string   `gorm:"type:varchar(255)" json:"name"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
