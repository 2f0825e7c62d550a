// Package identity は認証済みユーザー（id＋email）を扱う。
package identity

import "context"

// 署名済みセッションから取り出した利用者。
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// Providerは現在のユーザーを返す。いなければfalse。
type Provider interface {
	CurrentUser(ctx context.Context) (Identity, bool)
}

type ctxKey struct{}

func IntoContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// ContextProviderはAuthJWTがcontextに入れたユーザーを返す。
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (Identity, bool) {
	return FromContext(ctx)
}
