package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cafe/internal/config"
	"cafe/internal/handler"
	"cafe/internal/identity"
	infraRepo "cafe/internal/infra/repository"
	"cafe/internal/invalidation"
	"cafe/internal/metrics"
	"cafe/internal/middleware"
	"cafe/internal/session"
	"cafe/internal/usecase"
	auth "cafe/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// 外から渡す部品（main/テストで差し替える）
type Deps struct {
	Config  config.Config
	DB      *gorm.DB
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Bus     invalidation.Bus
	Events  usecase.EventPublisher
	Clock   func() time.Time

	BcryptCost int // 0ならbcryptのデフォルト（12）
}

type Server struct {
	cfg        config.Config
	e          *echo.Echo
	log        *zap.Logger
	sessions   *session.Store
	reconciler *usecase.OrphanReconciler
}

// New は Repository → Usecase → Handler を組み立ててルートを登録する
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Bus == nil {
		d.Bus = invalidation.NewHub()
	}
	if d.BcryptCost == 0 {
		d.BcryptCost = 12
	}

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(d.DB)
	profileRepo := infraRepo.NewProfileGormRepository(d.DB)
	productRepo := infraRepo.NewProductGormRepository(d.DB)
	tableRepo := infraRepo.NewTableGormRepository(d.DB)
	orderRepo := infraRepo.NewOrderGormRepository(d.DB)
	itemRepo := infraRepo.NewOrderItemGormRepository(d.DB)
	auditRepo := infraRepo.NewAuditLogGormRepository(d.DB)
	txm := infraRepo.NewTxManagerGorm(d.DB)

	//Session（ロール判定は裏で）
	roles := usecase.NewRoleResolver(profileRepo)
	sessions := session.NewStore(roles.Resolve, 5*time.Second)

	opts := usecase.OrderOptions{
		Mode:    submitMode(d.Config.OrderSubmitMode),
		Bus:     d.Bus,
		Events:  d.Events,
		Metrics: d.Metrics,
		Clock:   d.Clock,
	}

	//Usecase
	catalogUC := usecase.NewCatalogUsecase(productRepo, tableRepo)
	productUC := usecase.NewProductUsecase(productRepo, d.Bus)
	tableUC := usecase.NewTableUsecase(tableRepo, d.Bus)
	cartUC := usecase.NewCartUsecase(productRepo, tableRepo)
	orderUC := usecase.NewOrderUsecase(identity.ContextProvider{}, orderRepo, itemRepo, txm, opts)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, itemRepo, txm, opts)
	adminUserUC := usecase.NewAdminUserUsecase(profileRepo, txm, usecase.AdminUserOptions{Bus: d.Bus, Roles: sessions, Clock: d.Clock})
	reconciler := usecase.NewOrphanReconciler(orderRepo, auditRepo, d.Config.OrphanGracePeriod, opts)

	signUpUC := auth.NewSignUpUsecase(userRepo, auth.NewBcryptPasswordHasher(d.BcryptCost), auth.UUIDGenerator{}, auth.SystemClock{})
	signInUC := auth.NewSignInUsecase(userRepo, auth.NewBcryptPasswordVerifier(), auth.NewJWTIssuer(d.Config.JWTSecret, d.Config.AccessTokenTTL), auth.SystemClock{})
	signOutUC := auth.NewSignOutUsecase(userRepo, sessions)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}

	registerRoutes(e, routeDeps{
		cfg:      d.Config,
		userRepo: userRepo,
		sessions: sessions,
		metrics:  d.Metrics,
		handlers: handlers{
			auth:         handler.NewAuthHandler(signUpUC, signInUC, signOutUC),
			product:      handler.NewProductHandler(catalogUC),
			cart:         handler.NewCartHandler(cartUC),
			order:        handler.NewOrderHandler(orderUC),
			events:       handler.NewEventsHandler(d.Bus),
			adminOrder:   handler.NewAdminOrderHandler(adminOrderUC, reconciler),
			adminProduct: handler.NewAdminProductHandler(productUC, tableUC),
			adminUser:    handler.NewAdminUserHandler(adminUserUC),
			auditLog:     handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(auditRepo)),
		},
	})

	return &Server{
		cfg:        d.Config,
		e:          e,
		log:        d.Logger,
		sessions:   sessions,
		reconciler: reconciler,
	}
}

func submitMode(s string) usecase.SubmitMode {
	if s == config.SubmitModeAtomic {
		return usecase.SubmitAtomic
	}
	return usecase.SubmitTwoStep
}

// テスト用
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Sessions() *session.Store { return s.sessions }

// Startはctxが終わるまでHTTPを受け付ける。終了時はgraceful shutdown。
func (s *Server) Start(ctx context.Context) error {
	s.reconciler.Start(ctx, s.cfg.OrphanReconcileInterval)
	s.sessions.StartSweeper(ctx, s.cfg.SessionIdleTimeout)

	addr := s.cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server started", zap.String("addr", addr))
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("http server shutting down")
	return s.e.Shutdown(shutdownCtx)
}
