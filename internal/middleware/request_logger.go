package middleware

import (
	"time"

	"cafe/internal/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// リクエストごとのロガーをcontextに入れて、終了時に1行出す
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)

			l := base.With(
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.String("url", req.URL.Path),
				zap.String("remote_ip", c.RealIP()),
			)
			if rid != "" {
				l = l.With(zap.String("request_id", rid))
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			dur := time.Since(start)

			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status

			fields := []zap.Field{
				zap.Int("status", status),
				zap.Int64("duration_ms", dur.Milliseconds()),
			}
			switch {
			case err != nil || status >= 500:
				l.Error("request completed", append(fields, zap.Error(err))...)
			case status >= 400:
				l.Warn("request completed", fields...)
			default:
				l.Info("request completed", append(fields, zap.Int64("bytes", c.Response().Size))...)
			}
			return nil
		}
	}
}
