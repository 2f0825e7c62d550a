package middleware

import (
	"context"
	"net/http"
	"time"

	"cafe/internal/domain/model"
	"cafe/internal/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Sessionのロール判定を待ってadminだけ通す。
// 判定が間に合わなければ503（まだ管理者とも一般とも言えない）。
func AdminRoleGuard(wait time.Duration) echo.MiddlewareFunc {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := SessionFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), wait)
			defer cancel()

			state, err := sess.AwaitRole(ctx)
			if err != nil {
				logging.FromContext(c.Request().Context()).Warn("role check timed out",
					zap.String("user_id", sess.UserID()),
				)
				return c.JSON(http.StatusServiceUnavailable, errorJSON("role check in progress"))
			}

			//adminだけ許可
			if state != model.RoleStateAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
