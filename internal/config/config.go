package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// 注文送信のモード
const (
	SubmitModeTwoStep = "two_step" // ヘッダ→明細の2回書き込み（デフォルト）
	SubmitModeAtomic  = "atomic"   // 2回の書き込みを1つのTxで
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DBDriver    string // postgres / sqlite
	DatabaseURL string // あればPOSTGRES_*より優先
	SQLitePath  string // DB_DRIVER=sqliteのとき

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // セッショントークンの有効期限

	LogLevel string // debug/info/warn/error

	OrderSubmitMode         string
	OrphanReconcileInterval time.Duration // 0なら定期実行しない
	OrphanGracePeriod       time.Duration // これより古い明細なし注文だけ消す

	KafkaBrokers    []string // 空ならイベントは送らない
	KafkaOrderTopic string

	RedisAddr string // 空ならプロセス内の通知だけ

	SessionIdleTimeout time.Duration // 0ならSessionを捨てない
}

// .envがあれば読み込んでからLoadする
func LoadWithDotenv(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Load()
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("ACCESS_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	interval, err := durationDefault("ORPHAN_RECONCILE_INTERVAL", 0)
	if err != nil {
		return Config{}, err
	}
	grace, err := durationDefault("ORPHAN_GRACE_PERIOD", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}
	idle, err := durationDefault("SESSION_IDLE_TIMEOUT", 2*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getenv("PORT", "8080"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DBDriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "cafe.db"),

		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "cafe"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: ttl,

		LogLevel: getenv("LOG_LEVEL", "info"),

		OrderSubmitMode:         strings.ToLower(getenv("ORDER_SUBMIT_MODE", SubmitModeTwoStep)),
		OrphanReconcileInterval: interval,
		OrphanGracePeriod:       grace,

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "cafe.orders"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		SessionIdleTimeout: idle,
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite: %q", cfg.DBDriver)
	}
	switch cfg.OrderSubmitMode {
	case SubmitModeTwoStep, SubmitModeAtomic:
	default:
		return Config{}, fmt.Errorf("ORDER_SUBMIT_MODE must be two_step or atomic: %q", cfg.OrderSubmitMode)
	}
	if cfg.SessionIdleTimeout < 0 {
		return Config{}, fmt.Errorf("SESSION_IDLE_TIMEOUT must not be negative")
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

// カンマ区切り
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
