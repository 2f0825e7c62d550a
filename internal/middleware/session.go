package middleware

import (
	"net/http"

	"cafe/internal/session"

	"github.com/labstack/echo/v4"
)

// サインイン済みユーザーのSessionをcontextに入れる（無ければ作る）
func AttachSession(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			c.Set(CtxSessionKey, store.Get(userID))
			return next(c)
		}
	}
}

// AttachSessionが入れたSession
func SessionFrom(c echo.Context) (*session.Session, bool) {
	s, ok := c.Get(CtxSessionKey).(*session.Session)
	return s, ok && s != nil
}
