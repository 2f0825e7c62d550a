package server

import (
	"net/http"
	"time"

	"cafe/internal/config"
	"cafe/internal/handler"
	"cafe/internal/metrics"
	"cafe/internal/middleware"
	"cafe/internal/repository"
	"cafe/internal/session"

	"github.com/labstack/echo/v4"
)

type handlers struct {
	auth         *handler.AuthHandler
	product      *handler.ProductHandler
	cart         *handler.CartHandler
	order        *handler.OrderHandler
	events       *handler.EventsHandler
	adminOrder   *handler.AdminOrderHandler
	adminProduct *handler.AdminProductHandler
	adminUser    *handler.AdminUserHandler
	auditLog     *handler.AuditLogHandler
}

type routeDeps struct {
	cfg      config.Config
	userRepo repository.UserRepository
	sessions *session.Store
	metrics  *metrics.Metrics
	handlers handlers
}

// 管理画面はロール判定をこれだけ待つ
const adminRoleWait = 3 * time.Second

func registerRoutes(e *echo.Echo, d routeDeps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.metrics.Handler()))
	}

	//JWT → token_version → Session
	authed := []echo.MiddlewareFunc{
		middleware.AuthJWT(d.cfg.JWTSecret),
		middleware.TokenVersionGuard(d.userRepo),
		middleware.AttachSession(d.sessions),
	}
	admin := append(append([]echo.MiddlewareFunc{}, authed...), middleware.AdminRoleGuard(adminRoleWait))

	h := d.handlers
	h.auth.RegisterRoutes(e, authed...)
	h.product.RegisterRoutes(e, authed...)
	h.cart.RegisterRoutes(e, authed...)
	h.order.RegisterRoutes(e, authed...)
	h.events.RegisterRoutes(e, authed...)

	h.adminOrder.RegisterRoutes(e, admin...)
	h.adminProduct.RegisterRoutes(e, admin...)
	h.adminUser.RegisterRoutes(e, admin...)
	h.auditLog.RegisterRoutes(e, admin...)
}
