package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cafe/internal/config"
	"cafe/internal/infra/db"
	"cafe/internal/infra/kafka"
	"cafe/internal/invalidation"
	"cafe/internal/logging"
	"cafe/internal/metrics"
	"cafe/internal/server"
	"cafe/internal/usecase"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	//設定（.envがあれば読む）
	cfg, err := config.LoadWithDotenv(".env", "../.env")
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, log)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}

	//注文イベント（KAFKA_BROKERSが無ければ送らない）
	var events usecase.EventPublisher = usecase.NopEventPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, log)
		defer func() { _ = producer.Close() }()
		events = producer
		log.Info("kafka producer enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}

	//再取得通知（REDIS_ADDRが無ければプロセス内だけ）
	var bus invalidation.Bus = invalidation.NewHub()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = client.Close() }()
		rb := invalidation.NewRedisBus(client, invalidation.DefaultChannel, log)
		go func() {
			if err := rb.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("redis invalidation subscriber stopped", zap.Error(err))
			}
		}()
		bus = rb
		log.Info("redis invalidation enabled", zap.String("addr", cfg.RedisAddr))
	}

	srv := server.New(server.Deps{
		Config:  cfg,
		DB:      gormDB,
		Logger:  log,
		Metrics: metrics.New(),
		Bus:     bus,
		Events:  events,
	})

	if err := srv.Start(ctx); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
