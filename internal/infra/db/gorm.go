package db

import (
	"fmt"
	"time"

	"cafe/internal/config"
	"cafe/internal/domain/model"
	"cafe/internal/logging"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logging.NewGormLogger(logger.Warn, 200*time.Millisecond),
	}

	switch cfg.DBDriver {
	case config.DBDriverSQLite:
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	case config.DBDriverPostgres:
		return gorm.Open(postgres.Open(postgresDSN(cfg)), gcfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// DATABASE_URL があれば最優先で使う
func postgresDSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
}

// テーブルを作成・更新する
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Product{},
		&model.CafeTable{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
