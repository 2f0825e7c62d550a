package invalidation

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "cafe:invalidation"

const (
	defaultRetryMin = 500 * time.Millisecond
	defaultRetryMax = 30 * time.Second
)

var errChannelClosed = errors.New("invalidation channel closed")

// RedisBusは複数インスタンス間で通知を共有する。
// PublishはRedisへ送り、Runで受け取ったものをローカルのHubへ配る。
type RedisBus struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger

	// Runの購読が確認できている間だけtrue
	subscribed atomic.Bool

	retryMin time.Duration
	retryMax time.Duration
}

func NewRedisBus(client *redis.Client, channel string, log *zap.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBus{
		client:   client,
		channel:  channel,
		hub:      NewHub(),
		log:      log,
		retryMin: defaultRetryMin,
		retryMax: defaultRetryMax,
	}
}

// 購読中でなければRedisに送れてもこのプロセスには戻ってこないので、ローカルにも配る
func (b *RedisBus) Publish(ctx context.Context, keys ...string) {
	now := time.Now()
	for _, k := range keys {
		ev := Event{Key: k, At: now}
		payload, err := json.Marshal(ev)
		if err == nil {
			err = b.client.Publish(ctx, b.channel, payload).Err()
		}
		if err != nil {
			b.log.Warn("invalidation publish failed", zap.String("key", k), zap.Error(err))
			b.hub.deliver(ev)
			continue
		}
		if !b.subscribed.Load() {
			b.hub.deliver(ev)
		}
	}
}

func (b *RedisBus) Subscribe() *Subscription {
	return b.hub.Subscribe()
}

func (b *RedisBus) Subscribed() bool {
	return b.subscribed.Load()
}

// ctxが終わるまで購読を続ける。切れたらbackoffしてつなぎ直す。
func (b *RedisBus) Run(ctx context.Context) error {
	wait := b.retryMin
	for {
		confirmed, err := b.subscribeOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if confirmed {
			wait = b.retryMin
		}
		b.log.Warn("invalidation subscriber disconnected",
			zap.String("channel", b.channel),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}

		wait *= 2
		if wait > b.retryMax {
			wait = b.retryMax
		}
	}
}

// 1回分の購読。confirmedは購読が確立したかどうか。
func (b *RedisBus) subscribeOnce(ctx context.Context) (confirmed bool, err error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return false, err
	}
	b.subscribed.Store(true)
	defer b.subscribed.Store(false)
	b.log.Info("invalidation subscriber connected", zap.String("channel", b.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errChannelClosed
			}
			b.handleMessage(msg.Payload)
		}
	}
}

func (b *RedisBus) handleMessage(payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		b.log.Warn("invalidation message dropped", zap.Error(err))
		return
	}
	b.hub.deliver(ev)
}
